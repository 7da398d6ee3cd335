package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ritzau/concept-mapper/pkg/model"
)

func treeMap(t *testing.T) *model.Map {
	t.Helper()
	m := model.NewMap("T", &model.Node{ID: model.CenterID, Label: "T"}, model.LayoutSpring)
	add := func(parent, id string, level int) {
		if err := m.AddChild(parent, &model.Node{ID: id, Label: id, Level: level}, model.NewEdge(parent, id, "#000000", 1)); err != nil {
			t.Fatalf("AddChild(%s, %s) error = %v", parent, id, err)
		}
	}
	add(model.CenterID, "main_0", 1)
	add(model.CenterID, "main_1", 1)
	add("main_0", "sub_0_0", 2)
	add("main_0", "sub_0_1", 2)
	return m
}

func TestNewMapGraph(t *testing.T) {
	g := NewMapGraph()
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("New graph should be empty, got %d nodes %d edges", g.NodeCount(), g.EdgeCount())
	}
	if g.IsTree() {
		t.Error("Empty graph should not be a tree")
	}
}

func TestFromMap(t *testing.T) {
	g, err := FromMap(treeMap(t))
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}

	if g.NodeCount() != 5 || g.EdgeCount() != 4 {
		t.Errorf("Expected 5 nodes and 4 edges, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
	if !g.IsTree() {
		t.Error("Expected the map graph to be a tree")
	}

	id, ok := g.ID(model.CenterID)
	if !ok || id != 0 {
		t.Errorf("Expected center at graph ID 0, got %d (%v)", id, ok)
	}
	if g.Name(id) != model.CenterID {
		t.Errorf("Name(%d) = %q", id, g.Name(id))
	}
	if g.Name(99) != "" {
		t.Error("Expected empty name for unknown ID")
	}

	main, _ := g.ID("main_0")
	if n := g.Graph().From(main).Len(); n != 3 {
		t.Errorf("Expected main_0 linked to center and two subs, got %d links", n)
	}
}

func TestFromMapStableIDs(t *testing.T) {
	a, _ := FromMap(treeMap(t))
	b, _ := FromMap(treeMap(t))
	if !reflect.DeepEqual(a.Names(), b.Names()) {
		t.Errorf("Graph IDs differ between equal maps: %v vs %v", a.Names(), b.Names())
	}
}

func TestAddEdgeRejects(t *testing.T) {
	g := NewMapGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("a") // no-op

	if g.NodeCount() != 2 {
		t.Fatalf("Expected 2 nodes, got %d", g.NodeCount())
	}
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}

	tests := []struct {
		name   string
		source string
		target string
	}{
		{"unknown source", "x", "b"},
		{"unknown target", "a", "x"},
		{"self link", "a", "a"},
		{"repeated", "b", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.source, tt.target); !errors.Is(err, model.ErrBuildFailed) {
				t.Errorf("AddEdge(%s, %s) error = %v, want ErrBuildFailed", tt.source, tt.target, err)
			}
		})
	}
}

func TestIsTreeDetectsForest(t *testing.T) {
	g := NewMapGraph()
	for _, n := range []string{"a", "b", "c", "d"} {
		g.AddNode(n)
	}
	g.AddEdge("a", "b")
	g.AddEdge("c", "d")
	g.AddEdge("a", "c")
	if !g.IsTree() {
		t.Fatal("Expected a tree")
	}

	h := NewMapGraph()
	for _, n := range []string{"a", "b", "c", "d"} {
		h.AddNode(n)
	}
	h.AddEdge("a", "b")
	h.AddEdge("b", "c")
	h.AddEdge("c", "a")
	if h.IsTree() {
		t.Error("A cycle plus an isolated node must not be a tree")
	}

	want := [][]string{{"a", "b", "c"}, {"d"}}
	if got := h.Components(); !reflect.DeepEqual(got, want) {
		t.Errorf("Components() = %v, want %v", got, want)
	}
}
