// Package builder assembles extracted concepts into a validated mind map
// tree: the topic at the center, main concepts as branches and their
// subconcepts as leaves.
package builder

import (
	"fmt"

	"github.com/ritzau/concept-mapper/pkg/concepts"
	"github.com/ritzau/concept-mapper/pkg/graph"
	"github.com/ritzau/concept-mapper/pkg/logging"
	"github.com/ritzau/concept-mapper/pkg/model"
	"github.com/ritzau/concept-mapper/pkg/palette"
)

// Node sizes and edge widths per tree level
const (
	CenterSize = 20
	MainSize   = 15
	SubSize    = 10

	MainEdgeWidth = 3
	SubEdgeWidth  = 2
)

// Builder turns text into maps.
type Builder struct {
	extractor     *concepts.Extractor
	width, height int
}

// New creates a builder around an extractor. A nil extractor uses the
// default options.
func New(extractor *concepts.Extractor) *Builder {
	if extractor == nil {
		extractor = concepts.NewExtractor(concepts.DefaultOptions())
	}
	return &Builder{extractor: extractor, width: model.DefaultWidth, height: model.DefaultHeight}
}

// WithCanvas sets the canvas size given to new maps. Non-positive values
// keep the current size.
func (b *Builder) WithCanvas(width, height int) *Builder {
	if width > 0 {
		b.width = width
	}
	if height > 0 {
		b.height = height
	}
	return b
}

// Build extracts concepts from text and builds the map. Unknown layout or
// scheme names fail with model.ErrInvalidArgument; a tree that does not
// validate fails with model.ErrBuildFailed.
func (b *Builder) Build(text, title, layoutName, schemeName string) (*model.Map, error) {
	layout, err := model.ParseLayout(layoutName)
	if err != nil {
		return nil, err
	}
	scheme, err := palette.Lookup(schemeName)
	if err != nil {
		return nil, err
	}

	m, err := FromResult(b.extractor.Extract(text, title), layout, scheme)
	if err != nil {
		return nil, err
	}
	m.Width, m.Height = b.width, b.height
	return m, nil
}

// FromResult builds the map for an extraction result.
func FromResult(res concepts.Result, layout model.Layout, scheme palette.Scheme) (*model.Map, error) {
	if len(scheme.Colors) == 0 {
		return nil, fmt.Errorf("%w: color scheme %q has no colors", model.ErrInvalidArgument, scheme.Name)
	}

	center := &model.Node{
		ID:    model.CenterID,
		Label: res.Topic,
		Level: 0,
		Color: scheme.Center(),
		Size:  CenterSize,
	}
	m := model.NewMap(res.Topic, center, layout)

	for i, concept := range res.Concepts {
		mainID := model.MainID(i)
		mainColor := scheme.Branch(i)
		main := &model.Node{
			ID:    mainID,
			Label: concept,
			Level: 1,
			Color: mainColor,
			Size:  MainSize,
		}
		if err := m.AddChild(model.CenterID, main, model.NewEdge(model.CenterID, mainID, mainColor, MainEdgeWidth)); err != nil {
			return nil, err
		}

		subColor := palette.Lighten(mainColor, palette.DefaultLightenFactor)
		for j, label := range res.Lookup(concept) {
			subID := model.SubID(i, j)
			sub := &model.Node{
				ID:    subID,
				Label: label,
				Level: 2,
				Color: subColor,
				Size:  SubSize,
			}
			if err := m.AddChild(mainID, sub, model.NewEdge(mainID, subID, mainColor, SubEdgeWidth)); err != nil {
				return nil, err
			}
		}
	}

	if err := check(m); err != nil {
		return nil, err
	}

	logging.Debug("built map",
		"title", m.Title,
		"layout", string(m.Layout),
		"scheme", scheme.Name,
		"nodes", len(m.Nodes),
		"edges", len(m.Edges))
	return m, nil
}

// check runs the structural validation and confirms the result is a tree
// when viewed as an undirected graph.
func check(m *model.Map) error {
	if err := m.Validate(); err != nil {
		return err
	}
	g, err := graph.FromMap(m)
	if err != nil {
		return err
	}
	if !g.IsTree() {
		return fmt.Errorf("%w: %d nodes and %d links in %d components",
			model.ErrBuildFailed, g.NodeCount(), g.EdgeCount(), len(g.Components()))
	}
	return nil
}
