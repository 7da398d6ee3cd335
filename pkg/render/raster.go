package render

import (
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/ritzau/concept-mapper/pkg/model"
	"github.com/ritzau/concept-mapper/pkg/palette"
)

// Scene is a fully laid out map in canvas coordinates, ready to be drawn.
type Scene struct {
	Title  string
	Width  int
	Height int
	Edges  []SceneEdge
	Nodes  []SceneNode
}

// SceneNode is a filled circle with a centred label.
type SceneNode struct {
	Label  string
	X, Y   float64
	Radius float64
	Color  string
}

// SceneEdge is a straight line between two node centres.
type SceneEdge struct {
	X1, Y1 float64
	X2, Y2 float64
	Width  float64
	Color  string
}

// Rasterizer draws a scene as a PNG image.
type Rasterizer interface {
	Rasterize(w io.Writer, s Scene) error
}

// Scene layout constants
const (
	sceneMargin   = 60.0
	sceneTitleGap = 30.0
	radiusPerSize = 1.6
)

// newScene places every node and edge of m at the given canvas positions.
// Nodes are listed in stable order, edges in map order.
func newScene(m *model.Map, pos map[string]model.Point) Scene {
	s := Scene{Title: m.Title, Width: m.Width, Height: m.Height}
	for _, e := range m.Edges {
		a, b := pos[e.SourceID], pos[e.TargetID]
		s.Edges = append(s.Edges, SceneEdge{
			X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
			Width: float64(e.Width),
			Color: e.Color,
		})
	}
	for _, n := range m.OrderedNodes() {
		p := pos[n.ID]
		s.Nodes = append(s.Nodes, SceneNode{
			Label:  n.Label,
			X:      p.X,
			Y:      p.Y,
			Radius: float64(n.Size) * radiusPerSize,
			Color:  n.Color,
		})
	}
	return s
}

// GGRasterizer draws scenes with fogleman/gg.
type GGRasterizer struct {
	Face font.Face
}

// NewGGRasterizer creates a rasterizer using the built-in bitmap font.
func NewGGRasterizer() *GGRasterizer {
	return &GGRasterizer{Face: basicfont.Face7x13}
}

// Rasterize implements Rasterizer.
func (r *GGRasterizer) Rasterize(w io.Writer, s Scene) error {
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(r.Face)

	for _, e := range s.Edges {
		dc.SetColor(withAlpha(e.Color, 0.7))
		dc.SetLineWidth(e.Width)
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}

	for _, n := range s.Nodes {
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.SetColor(withAlpha(n.Color, 0.9))
		dc.Fill()
	}

	dc.SetColor(color.Black)
	for _, n := range s.Nodes {
		dc.DrawStringAnchored(n.Label, n.X, n.Y, 0.5, 0.5)
	}
	dc.DrawStringAnchored(s.Title, float64(s.Width)/2, sceneMargin/2, 0.5, 0.5)

	return dc.EncodePNG(w)
}

// withAlpha parses a #rrggbb colour, falling back to light grey.
func withAlpha(hex string, alpha float64) color.Color {
	c, ok := palette.Parse(hex)
	if !ok {
		c, _ = palette.Parse(palette.Fallback)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha * 255)}
}
