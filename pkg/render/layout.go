package render

import (
	"context"
	"math"

	"gonum.org/v1/gonum/graph/layout"

	"github.com/ritzau/concept-mapper/pkg/graph"
	"github.com/ritzau/concept-mapper/pkg/logging"
	"github.com/ritzau/concept-mapper/pkg/model"
)

// DefaultSpringIterations is the number of force-directed updates.
const DefaultSpringIterations = 50

// Positions computes raw (unnormalised) coordinates for every node using the
// map's layout. The map is not modified.
func Positions(ctx context.Context, m *model.Map, iterations int) (map[string]model.Point, error) {
	switch m.Layout {
	case model.LayoutCircular:
		return circularPositions(m), nil
	case model.LayoutHierarchical:
		return hierarchicalPositions(m), nil
	}
	return springPositions(ctx, m, iterations)
}

// circularPositions spaces nodes evenly on the unit circle in stable order.
func circularPositions(m *model.Map) map[string]model.Point {
	nodes := m.OrderedNodes()
	pos := make(map[string]model.Point, len(nodes))
	if len(nodes) == 1 {
		pos[nodes[0].ID] = model.Point{}
		return pos
	}
	step := 2 * math.Pi / float64(len(nodes))
	for i, n := range nodes {
		a := float64(i) * step
		pos[n.ID] = model.Point{X: math.Cos(a), Y: math.Sin(a)}
	}
	return pos
}

// hierarchicalPositions places one row per level, top down. Each row follows
// the order of the row above so that siblings stay together.
func hierarchicalPositions(m *model.Map) map[string]model.Point {
	pos := make(map[string]model.Point, len(m.Nodes))
	row := []*model.Node{m.CenterNode}
	for level := 0; len(row) > 0; level++ {
		var next []*model.Node
		for k, n := range row {
			pos[n.ID] = model.Point{
				X: (float64(k) + 0.5) / float64(len(row)),
				Y: float64(level),
			}
			next = append(next, m.Children(n.ID)...)
		}
		row = next
	}
	return pos
}

// springPositions runs the Eades force-directed optimiser over the tree.
func springPositions(ctx context.Context, m *model.Map, iterations int) (map[string]model.Point, error) {
	if iterations <= 0 {
		iterations = DefaultSpringIterations
	}
	g, err := graph.FromMap(m)
	if err != nil {
		return nil, err
	}

	pos := make(map[string]model.Point, g.NodeCount())
	if g.NodeCount() == 1 {
		pos[g.Name(0)] = model.Point{}
		return pos, nil
	}

	eades := &layout.EadesR2{
		Updates:   iterations,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
	}
	opt := layout.NewOptimizerR2(g.Graph(), eades.Update)
	for i := 0; opt.Update(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logging.Trace("spring layout update", "iteration", i)
	}

	for _, name := range g.Names() {
		id, _ := g.ID(name)
		v := opt.Coord2(id)
		pos[name] = model.Point{X: v.X, Y: v.Y}
	}
	return pos, nil
}

// fit scales raw positions into a width x height canvas, keeping margin
// pixels clear on every side and top pixels for the title. A degenerate
// extent is centred.
func fit(pos map[string]model.Point, width, height int, margin, top float64) map[string]model.Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	left, right := margin, float64(width)-margin
	upper, lower := margin+top, float64(height)-margin
	scale := func(v, lo, hi, a, b float64) float64 {
		if hi-lo < 1e-9 || math.IsNaN(v) {
			return (a + b) / 2
		}
		return a + (v-lo)/(hi-lo)*(b-a)
	}

	out := make(map[string]model.Point, len(pos))
	for id, p := range pos {
		out[id] = model.Point{
			X: scale(p.X, minX, maxX, left, right),
			Y: scale(p.Y, minY, maxY, upper, lower),
		}
	}
	return out
}
