// Package graph mirrors a mind map as an undirected gonum graph so that
// graph algorithms (connectivity, force-directed layout) can run over it.
package graph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/concept-mapper/pkg/model"
)

// MapGraph represents the concept tree as an undirected graph
type MapGraph struct {
	graph *simple.UndirectedGraph
	ids   map[string]int64 // Map from node id to graph ID
	names []string         // Graph ID -> node id
	edges int
}

// NewMapGraph creates an empty graph
func NewMapGraph() *MapGraph {
	return &MapGraph{
		graph: simple.NewUndirectedGraph(),
		ids:   make(map[string]int64),
	}
}

// FromMap builds the graph for a map. Nodes are added in the map's stable
// order, so graph IDs are the same for equal maps.
func FromMap(m *model.Map) (*MapGraph, error) {
	g := NewMapGraph()
	for _, n := range m.OrderedNodes() {
		g.AddNode(n.ID)
	}
	for _, e := range m.Edges {
		if err := g.AddEdge(e.SourceID, e.TargetID); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddNode adds a node to the graph
func (g *MapGraph) AddNode(name string) {
	if _, exists := g.ids[name]; exists {
		return
	}

	id := int64(len(g.names))
	g.ids[name] = id
	g.names = append(g.names, name)
	g.graph.AddNode(simple.Node(id))
}

// AddEdge links two existing nodes.
// Unknown endpoints, self links and repeated links are rejected.
func (g *MapGraph) AddEdge(source, target string) error {
	sourceID, ok := g.ids[source]
	if !ok {
		return fmt.Errorf("%w: edge source %q is not a node", model.ErrBuildFailed, source)
	}
	targetID, ok := g.ids[target]
	if !ok {
		return fmt.Errorf("%w: edge target %q is not a node", model.ErrBuildFailed, target)
	}
	if sourceID == targetID {
		return fmt.Errorf("%w: self link on %q", model.ErrBuildFailed, source)
	}
	if g.graph.HasEdgeBetween(sourceID, targetID) {
		return fmt.Errorf("%w: repeated link %q - %q", model.ErrBuildFailed, source, target)
	}

	g.graph.SetEdge(g.graph.NewEdge(g.graph.Node(sourceID), g.graph.Node(targetID)))
	g.edges++
	return nil
}

// Graph returns the underlying undirected graph
func (g *MapGraph) Graph() *simple.UndirectedGraph {
	return g.graph
}

// ID returns the graph ID of a node
func (g *MapGraph) ID(name string) (int64, bool) {
	id, ok := g.ids[name]
	return id, ok
}

// Name returns the node id for a graph ID, or "" if unknown
func (g *MapGraph) Name(id int64) string {
	if id < 0 || id >= int64(len(g.names)) {
		return ""
	}
	return g.names[id]
}

// Names returns node ids in graph ID order
func (g *MapGraph) Names() []string {
	return append([]string(nil), g.names...)
}

// NodeCount returns the number of nodes
func (g *MapGraph) NodeCount() int {
	return len(g.names)
}

// EdgeCount returns the number of links
func (g *MapGraph) EdgeCount() int {
	return g.edges
}

// Components returns the connected components, each sorted by id, ordered by
// their first member
func (g *MapGraph) Components() [][]string {
	var comps [][]string
	for _, cc := range topo.ConnectedComponents(g.graph) {
		names := make([]string, len(cc))
		for i, n := range cc {
			names[i] = g.names[n.ID()]
		}
		sort.Strings(names)
		comps = append(comps, names)
	}
	sort.Slice(comps, func(i, j int) bool {
		return comps[i][0] < comps[j][0]
	})
	return comps
}

// IsTree reports whether the graph is non-empty, connected and acyclic
func (g *MapGraph) IsTree() bool {
	n := g.NodeCount()
	if n == 0 || g.edges != n-1 {
		return false
	}
	return len(topo.ConnectedComponents(g.graph)) == 1
}
