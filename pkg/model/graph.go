package model

// Point is a 2-D canvas position. It is a runtime-only cache filled in by
// renderers and never exported.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents a concept in the mind map tree.
// Level 0 is the center, level 1 a main branch, level 2 a subconcept.
type Node struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Level       int      `json:"level"`
	ParentID    string   `json:"parentId,omitempty"` // empty for the center node
	ChildrenIDs []string `json:"childrenIds"`
	Color       string   `json:"color"` // #rrggbb
	Size        int      `json:"size"`
	Position    *Point   `json:"-"`
}

// Edge represents a parent -> child link in the tree.
type Edge struct {
	SourceID string  `json:"source"`
	TargetID string  `json:"target"`
	Weight   float64 `json:"weight"`
	Color    string  `json:"color"`
	Width    int     `json:"width"`
}

// DefaultEdgeWeight is the weight given to every tree edge.
const DefaultEdgeWeight = 1.0

// NewEdge creates a parent -> child edge with the default weight.
func NewEdge(source, target, color string, width int) Edge {
	return Edge{
		SourceID: source,
		TargetID: target,
		Weight:   DefaultEdgeWeight,
		Color:    color,
		Width:    width,
	}
}

// IsCenter reports whether the node is the root of the tree.
func (n *Node) IsCenter() bool {
	return n.Level == 0 && n.ParentID == ""
}

// clone returns a copy that shares no slices with n.
func (n *Node) clone() *Node {
	c := *n
	if n.ChildrenIDs != nil {
		c.ChildrenIDs = append(make([]string, 0, len(n.ChildrenIDs)), n.ChildrenIDs...)
	}
	if n.Position != nil {
		p := *n.Position
		c.Position = &p
	}
	return &c
}
