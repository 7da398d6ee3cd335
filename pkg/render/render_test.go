package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ritzau/concept-mapper/pkg/builder"
	"github.com/ritzau/concept-mapper/pkg/concepts"
	"github.com/ritzau/concept-mapper/pkg/model"
	"github.com/ritzau/concept-mapper/pkg/palette"
)

func sampleMap(t *testing.T, layout model.Layout) *model.Map {
	t.Helper()
	scheme, _ := palette.Lookup("default")
	res := concepts.Result{
		Topic:    "Energy & <Power>",
		Concepts: []string{"Solar Radiation Capture", "Wind"},
		Subconcepts: map[string][]string{
			"Solar Radiation Capture": {"Photovoltaics", "Cells"},
			"Wind":                    {"Turbines"},
		},
	}
	m, err := builder.FromResult(res, layout, scheme)
	if err != nil {
		t.Fatalf("FromResult() error = %v", err)
	}
	return m
}

func centerOnly(t *testing.T) *model.Map {
	t.Helper()
	m, err := builder.New(nil).Build("", "", "", "")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

// recordingRasterizer keeps the last scene instead of drawing it.
type recordingRasterizer struct {
	scene Scene
	calls int
}

func (r *recordingRasterizer) Rasterize(w io.Writer, s Scene) error {
	r.scene = s
	r.calls++
	_, err := w.Write([]byte("image"))
	return err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"graph-image", FormatGraphImage},
		{"matplotlib", FormatGraphImage},
		{"PNG", FormatGraphImage},
		{"radial", FormatRadial},
		{"html", FormatRadial},
		{"svg", FormatRadial},
		{"data", FormatData},
		{" json ", FormatData},
	}
	for _, tt := range tests {
		f, err := ParseFormat(tt.name)
		if err != nil {
			t.Errorf("ParseFormat(%q) error = %v", tt.name, err)
			continue
		}
		if f.Name() != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.name, f.Name(), tt.want)
		}
	}

	_, err := ParseFormat("pdf")
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("ParseFormat(pdf) error = %v, want ErrInvalidArgument", err)
	}
	if !strings.Contains(err.Error(), "pdf") || !strings.Contains(err.Error(), "graph-image, radial, data") {
		t.Errorf("Expected error to name the value and the supported set, got %q", err)
	}
}

func TestCircularPositions(t *testing.T) {
	m := sampleMap(t, model.LayoutCircular)
	pos := circularPositions(m)
	if len(pos) != len(m.Nodes) {
		t.Fatalf("Expected %d positions, got %d", len(m.Nodes), len(pos))
	}
	for id, p := range pos {
		if r := math.Hypot(p.X, p.Y); math.Abs(r-1) > 1e-9 {
			t.Errorf("%s not on the unit circle: %v", id, p)
		}
	}
	if c := pos[model.CenterID]; math.Abs(c.X-1) > 1e-9 || math.Abs(c.Y) > 1e-9 {
		t.Errorf("Expected center at angle 0, got %v", c)
	}
}

func TestHierarchicalPositions(t *testing.T) {
	m := sampleMap(t, model.LayoutHierarchical)
	pos := hierarchicalPositions(m)

	for id, n := range m.Nodes {
		if pos[id].Y != float64(n.Level) {
			t.Errorf("%s at row %v, want %d", id, pos[id].Y, n.Level)
		}
	}
	if pos["main_0"].X >= pos["main_1"].X {
		t.Error("Expected main_0 left of main_1")
	}
	if !(pos["sub_0_0"].X < pos["sub_0_1"].X && pos["sub_0_1"].X < pos["sub_1_0"].X) {
		t.Errorf("Expected siblings grouped in order, got %v %v %v", pos["sub_0_0"], pos["sub_0_1"], pos["sub_1_0"])
	}
}

func TestFitKeepsInsideCanvas(t *testing.T) {
	raw := map[string]model.Point{"a": {X: -3, Y: 2}, "b": {X: 5, Y: -1}, "c": {X: 0, Y: 0}}
	out := fit(raw, 400, 300, 20, 10)
	for id, p := range out {
		if p.X < 20 || p.X > 380 || p.Y < 30 || p.Y > 280 {
			t.Errorf("%s outside the canvas: %v", id, p)
		}
	}
	if out["a"].X != 20 || out["b"].X != 380 {
		t.Errorf("Expected extremes on the margins, got %v %v", out["a"], out["b"])
	}

	single := fit(map[string]model.Point{"x": {X: 7, Y: 7}}, 400, 300, 20, 10)
	if single["x"].X != 200 || single["x"].Y != 155 {
		t.Errorf("Expected a lone node in the middle, got %v", single["x"])
	}
}

func TestSpringPositions(t *testing.T) {
	m := sampleMap(t, model.LayoutSpring)
	pos, err := springPositions(context.Background(), m, 20)
	if err != nil {
		t.Fatalf("springPositions() error = %v", err)
	}
	if len(pos) != len(m.Nodes) {
		t.Errorf("Expected %d positions, got %d", len(m.Nodes), len(pos))
	}
	for id, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Errorf("%s has NaN position", id)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := springPositions(ctx, m, 20); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRenderGraphImageUnavailable(t *testing.T) {
	r := NewRenderer(nil, Options{})
	if r.Available() {
		t.Fatal("Expected renderer without rasterizer to be unavailable")
	}

	out, err := r.Render(context.Background(), sampleMap(t, model.LayoutSpring), GraphImage{Writer: io.Discard})
	if !errors.Is(err, model.ErrRenderUnavailable) {
		t.Errorf("Expected ErrRenderUnavailable, got %v", err)
	}
	if out.OK {
		t.Error("Expected OK=false")
	}

	// The other formats do not need a rasterizer
	if _, err := r.Render(context.Background(), sampleMap(t, model.LayoutSpring), Data{}); err != nil {
		t.Errorf("data render error = %v", err)
	}
}

func TestRenderGraphImageScene(t *testing.T) {
	rec := &recordingRasterizer{}
	r := NewRenderer(rec, Options{})
	m := sampleMap(t, model.LayoutCircular)
	before := m.Clone()

	var buf bytes.Buffer
	out, err := r.Render(context.Background(), m, GraphImage{Writer: &buf})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !out.OK || buf.String() != "image" {
		t.Errorf("Expected image written, got OK=%v %q", out.OK, buf.String())
	}

	s := rec.scene
	if len(s.Nodes) != len(m.Nodes) || len(s.Edges) != len(m.Edges) {
		t.Errorf("Scene has %d nodes %d edges, want %d and %d", len(s.Nodes), len(s.Edges), len(m.Nodes), len(m.Edges))
	}
	if s.Nodes[0].Label != m.CenterNode.Label || s.Nodes[0].Radius != float64(builder.CenterSize)*radiusPerSize {
		t.Errorf("Unexpected first scene node %+v", s.Nodes[0])
	}
	if s.Edges[0].Width != builder.MainEdgeWidth {
		t.Errorf("Expected first edge width %d, got %v", builder.MainEdgeWidth, s.Edges[0].Width)
	}
	if !reflect.DeepEqual(before, m) {
		t.Error("Render modified the map")
	}
}

func TestRenderGraphImageNeedsDestination(t *testing.T) {
	r := NewRenderer(&recordingRasterizer{}, Options{})
	_, err := r.Render(context.Background(), sampleMap(t, model.LayoutCircular), GraphImage{})
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestRenderNilFormatListsSupported(t *testing.T) {
	r := NewRenderer(nil, Options{})
	_, err := r.Render(context.Background(), sampleMap(t, model.LayoutSpring), nil)
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "graph-image, radial, data") {
		t.Errorf("Expected the supported formats in %q", err)
	}
}

func TestGGRasterizerWritesPNG(t *testing.T) {
	r := NewRenderer(NewGGRasterizer(), Options{SpringIterations: 10})
	path := filepath.Join(t.TempDir(), "map.png")

	for _, layout := range model.Layouts {
		m := sampleMap(t, layout)
		out, err := r.Render(context.Background(), m, GraphImage{SavePath: path})
		if err != nil {
			t.Fatalf("Render(%s) error = %v", layout, err)
		}
		if !out.OK {
			t.Fatalf("Render(%s) OK=false", layout)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
			t.Errorf("Render(%s) did not write a PNG", layout)
		}
	}

	var buf bytes.Buffer
	if _, err := r.Render(context.Background(), centerOnly(t), GraphImage{Writer: &buf}); err != nil {
		t.Fatalf("center-only render error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Expected PNG bytes for the center-only map")
	}
}

func TestRadialHTML(t *testing.T) {
	m := sampleMap(t, model.LayoutSpring)
	out, err := NewRenderer(nil, Options{}).Render(context.Background(), m, Radial{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := out.HTML

	if !strings.HasPrefix(html, `<div class="mind-map"`) {
		t.Errorf("Expected a div wrapper, got %q", html[:40])
	}
	if strings.Contains(html, "<?xml") {
		t.Error("XML prolog leaked into the HTML fragment")
	}
	if !strings.Contains(html, "Energy &amp; &lt;Power&gt;") {
		t.Error("Expected the title to be escaped")
	}
	if !strings.Contains(html, `<svg width="1200" height="800"`) {
		t.Error("Expected an inline svg sized to the map")
	}
	if got := strings.Count(html, "<circle"); got != len(m.Nodes) {
		t.Errorf("Expected %d circles, got %d", len(m.Nodes), got)
	}
	if got := strings.Count(html, "<line"); got != len(m.Edges) {
		t.Errorf("Expected %d lines, got %d", len(m.Edges), got)
	}
	if !strings.Contains(html, ">Solar Radi<") {
		t.Error("Expected main label truncated to 10 runes")
	}
	if !strings.Contains(html, ">Photovol<") {
		t.Error("Expected sub label truncated to 8 runes")
	}
	// main_0 sits at angle 0, 150px right of the center
	if !strings.Contains(html, `cx="750" cy="400" r="25"`) {
		t.Error("Expected main_0 at (750, 400)")
	}
}

func TestRadialHTMLZeroBranches(t *testing.T) {
	m := centerOnly(t)
	html := RadialHTML(m)
	if got := strings.Count(html, "<circle"); got != 1 {
		t.Errorf("Expected only the center circle, got %d", got)
	}
	if strings.Contains(html, "<line") {
		t.Error("Expected no lines for a center-only map")
	}
	if !strings.Contains(html, `cx="600" cy="400" r="40"`) {
		t.Error("Expected the center at the canvas middle")
	}
}

func TestRadialSubAnglesCentred(t *testing.T) {
	// A single subconcept sits straight behind its main concept
	m := sampleMap(t, model.LayoutSpring)
	html := RadialHTML(m)
	// main_1 at angle pi: (450, 400); its only sub 80px further out
	if !strings.Contains(html, `cx="370" cy="400" r="15"`) {
		t.Errorf("Expected sub_1_0 at (370, 400) in %s", html)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Ünïcødé Label", 7); got != "Ünïcødé" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
}
