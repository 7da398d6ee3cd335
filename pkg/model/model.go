package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Layout selects the placement strategy used by the force-directed renderer.
type Layout string

const (
	LayoutSpring       Layout = "spring"
	LayoutCircular     Layout = "circular"
	LayoutHierarchical Layout = "hierarchical"
)

// Layouts lists every supported layout in display order.
var Layouts = []Layout{LayoutSpring, LayoutCircular, LayoutHierarchical}

// ParseLayout converts a layout name into a Layout.
// An empty name yields the default spring layout.
func ParseLayout(name string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(name))) {
	case "", LayoutSpring:
		return LayoutSpring, nil
	case LayoutCircular:
		return LayoutCircular, nil
	case LayoutHierarchical:
		return LayoutHierarchical, nil
	}
	return "", fmt.Errorf("%w: unknown layout %q (supported: %s)", ErrInvalidArgument, name, joinLayouts())
}

func joinLayouts() string {
	names := make([]string, len(Layouts))
	for i, l := range Layouts {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// Default canvas dimensions
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// Node ids assigned by the builder
const (
	CenterID = "center"
)

// MainID returns the id of the i-th main branch.
func MainID(i int) string {
	return "main_" + strconv.Itoa(i)
}

// SubID returns the id of the j-th subconcept under the i-th main branch.
func SubID(i, j int) string {
	return "sub_" + strconv.Itoa(i) + "_" + strconv.Itoa(j)
}

// Map is a complete mind map: a tree of nodes rooted at CenterNode.
// A Map is immutable once built; renderers only read it.
type Map struct {
	Title      string           `json:"title"`
	CenterNode *Node            `json:"centerNode"`
	Nodes      map[string]*Node `json:"nodes"` // includes the center
	Edges      []Edge           `json:"edges"`
	Layout     Layout           `json:"layout"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
}

// NewMap creates a map holding only its center node.
func NewMap(title string, center *Node, layout Layout) *Map {
	if center.ChildrenIDs == nil {
		center.ChildrenIDs = make([]string, 0)
	}
	return &Map{
		Title:      title,
		CenterNode: center,
		Nodes:      map[string]*Node{center.ID: center},
		Edges:      make([]Edge, 0),
		Layout:     layout,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
	}
}

// AddChild attaches child under the parent with the given id and records the
// connecting edge. It is only used while a map is being built.
func (m *Map) AddChild(parentID string, child *Node, edge Edge) error {
	parent, ok := m.Nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: parent %q does not exist", ErrBuildFailed, parentID)
	}
	if _, exists := m.Nodes[child.ID]; exists {
		return fmt.Errorf("%w: duplicate node id %q", ErrBuildFailed, child.ID)
	}
	if child.ChildrenIDs == nil {
		child.ChildrenIDs = make([]string, 0)
	}
	child.ParentID = parentID
	m.Nodes[child.ID] = child
	parent.ChildrenIDs = append(parent.ChildrenIDs, child.ID)
	m.Edges = append(m.Edges, edge)
	return nil
}

// Children returns the children of a node in insertion order.
func (m *Map) Children(id string) []*Node {
	parent, ok := m.Nodes[id]
	if !ok {
		return nil
	}
	children := make([]*Node, 0, len(parent.ChildrenIDs))
	for _, childID := range parent.ChildrenIDs {
		if child, ok := m.Nodes[childID]; ok {
			children = append(children, child)
		}
	}
	return children
}

// NodesByLevel returns the nodes at a level in stable id order, comparing the
// numeric parts of builder ids numerically (main_2 before main_10).
func (m *Map) NodesByLevel(level int) []*Node {
	var nodes []*Node
	for _, n := range m.Nodes {
		if n.Level == level {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		return lessID(nodes[i].ID, nodes[j].ID)
	})
	return nodes
}

// OrderedNodes returns every node: the center first, then by level and id.
func (m *Map) OrderedNodes() []*Node {
	nodes := make([]*Node, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Level != nodes[j].Level {
			return nodes[i].Level < nodes[j].Level
		}
		return lessID(nodes[i].ID, nodes[j].ID)
	})
	return nodes
}

// Clone returns a deep copy of the map. Empty and nil slices are kept as
// they are, so a clone compares equal to its source with reflect.DeepEqual.
func (m *Map) Clone() *Map {
	c := &Map{
		Title:  m.Title,
		Nodes:  make(map[string]*Node, len(m.Nodes)),
		Layout: m.Layout,
		Width:  m.Width,
		Height: m.Height,
	}
	if m.Edges != nil {
		c.Edges = append(make([]Edge, 0, len(m.Edges)), m.Edges...)
	}
	for id, n := range m.Nodes {
		c.Nodes[id] = n.clone()
	}
	if m.CenterNode != nil {
		if center, ok := c.Nodes[m.CenterNode.ID]; ok {
			c.CenterNode = center
		} else {
			c.CenterNode = m.CenterNode.clone()
		}
	}
	return c
}

// lessID orders ids by their underscore-separated parts, comparing numeric
// parts as numbers.
func lessID(a, b string) bool {
	pa := strings.Split(a, "_")
	pb := strings.Split(b, "_")
	for k := 0; k < len(pa) && k < len(pb); k++ {
		if pa[k] == pb[k] {
			continue
		}
		na, errA := strconv.Atoi(pa[k])
		nb, errB := strconv.Atoi(pb[k])
		if errA == nil && errB == nil {
			return na < nb
		}
		return pa[k] < pb[k]
	}
	return len(pa) < len(pb)
}
