package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ritzau/concept-mapper/pkg/model"
)

// Export is the structured snapshot of a map. Node positions are not part of
// it.
type Export struct {
	Title      string       `json:"title" yaml:"title"`
	Layout     model.Layout `json:"layout" yaml:"layout"`
	Dimensions Dimensions   `json:"dimensions" yaml:"dimensions"`
	CenterNode ExportCenter `json:"center_node" yaml:"center_node"`
	Nodes      []ExportNode `json:"nodes" yaml:"nodes"`
	Edges      []ExportEdge `json:"edges" yaml:"edges"`
}

// Dimensions is the canvas size.
type Dimensions struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ExportCenter identifies the center node.
type ExportCenter struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

// ExportNode is one node. ParentID is nil for the center.
type ExportNode struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"label" yaml:"label"`
	Level    int     `json:"level" yaml:"level"`
	ParentID *string `json:"parent_id" yaml:"parent_id"`
	Color    string  `json:"color" yaml:"color"`
	Size     int     `json:"size" yaml:"size"`
}

// ExportEdge is one parent -> child link.
type ExportEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Color  string `json:"color" yaml:"color"`
	Width  int    `json:"width" yaml:"width"`
}

// NewExport snapshots a map. Nodes are listed center first, then by level and
// id; edges keep their map order.
func NewExport(m *model.Map) *Export {
	e := &Export{
		Title:      m.Title,
		Layout:     m.Layout,
		Dimensions: Dimensions{Width: m.Width, Height: m.Height},
		CenterNode: ExportCenter{
			ID:    m.CenterNode.ID,
			Label: m.CenterNode.Label,
			Color: m.CenterNode.Color,
		},
		Nodes: make([]ExportNode, 0, len(m.Nodes)),
		Edges: make([]ExportEdge, 0, len(m.Edges)),
	}
	for _, n := range m.OrderedNodes() {
		node := ExportNode{
			ID:    n.ID,
			Label: n.Label,
			Level: n.Level,
			Color: n.Color,
			Size:  n.Size,
		}
		if n.ParentID != "" {
			parent := n.ParentID
			node.ParentID = &parent
		}
		e.Nodes = append(e.Nodes, node)
	}
	for _, edge := range m.Edges {
		e.Edges = append(e.Edges, ExportEdge{
			Source: edge.SourceID,
			Target: edge.TargetID,
			Color:  edge.Color,
			Width:  edge.Width,
		})
	}
	return e
}

// FromExport rebuilds a map from a snapshot. Children are attached in edge
// order, so a snapshot taken from a map restores the same map. The result is
// validated; a snapshot that does not describe a tree fails with
// model.ErrBuildFailed.
func FromExport(e *Export) (*model.Map, error) {
	layout, err := model.ParseLayout(string(e.Layout))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]ExportNode, len(e.Nodes))
	for _, n := range e.Nodes {
		if _, dup := byID[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node %q in export", model.ErrBuildFailed, n.ID)
		}
		byID[n.ID] = n
	}

	c, ok := byID[e.CenterNode.ID]
	if !ok {
		return nil, fmt.Errorf("%w: center %q missing from export nodes", model.ErrBuildFailed, e.CenterNode.ID)
	}
	center := &model.Node{ID: c.ID, Label: c.Label, Level: c.Level, Color: c.Color, Size: c.Size}
	m := model.NewMap(e.Title, center, layout)
	m.Width, m.Height = e.Dimensions.Width, e.Dimensions.Height

	for _, edge := range e.Edges {
		n, ok := byID[edge.Target]
		if !ok {
			return nil, fmt.Errorf("%w: edge target %q missing from export nodes", model.ErrBuildFailed, edge.Target)
		}
		if n.ParentID == nil || *n.ParentID != edge.Source {
			return nil, fmt.Errorf("%w: edge %s -> %s does not match the node's parent", model.ErrBuildFailed, edge.Source, edge.Target)
		}
		child := &model.Node{ID: n.ID, Label: n.Label, Level: n.Level, Color: n.Color, Size: n.Size}
		if err := m.AddChild(edge.Source, child, model.NewEdge(edge.Source, edge.Target, edge.Color, edge.Width)); err != nil {
			return nil, err
		}
	}

	if len(m.Nodes) != len(byID) {
		return nil, fmt.Errorf("%w: %d export nodes are not reachable by edges", model.ErrBuildFailed, len(byID)-len(m.Nodes))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Codec names for EncodeExport and DecodeExport
const (
	CodecJSON = "json"
	CodecYAML = "yaml"
)

// EncodeExport writes a snapshot as indented JSON or YAML.
func EncodeExport(w io.Writer, e *Export, codec string) error {
	switch strings.ToLower(codec) {
	case CodecJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	case CodecYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: unknown codec %q (supported: json, yaml)", model.ErrInvalidArgument, codec)
}

// DecodeExport reads a snapshot written by EncodeExport.
func DecodeExport(r io.Reader, codec string) (*Export, error) {
	var e Export
	switch strings.ToLower(codec) {
	case CodecJSON, "":
		if err := json.NewDecoder(r).Decode(&e); err != nil {
			return nil, fmt.Errorf("%w: decoding json export: %v", model.ErrInvalidArgument, err)
		}
	case CodecYAML, "yml":
		if err := yaml.NewDecoder(r).Decode(&e); err != nil {
			return nil, fmt.Errorf("%w: decoding yaml export: %v", model.ErrInvalidArgument, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown codec %q (supported: json, yaml)", model.ErrInvalidArgument, codec)
	}
	return &e, nil
}
