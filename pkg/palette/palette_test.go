package palette

import (
	"errors"
	"math"
	"testing"

	"github.com/ritzau/concept-mapper/pkg/model"
)

func TestLightenIdentities(t *testing.T) {
	for _, name := range Names() {
		scheme, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", name, err)
		}
		for _, c := range scheme.Colors {
			if got := Lighten(c, 0); got != c {
				t.Errorf("Lighten(%s, 0) = %s, want unchanged", c, got)
			}
			if got := Lighten(c, 1); got != "#ffffff" {
				t.Errorf("Lighten(%s, 1) = %s, want #ffffff", c, got)
			}
		}
	}
}

func TestLightenBlend(t *testing.T) {
	tests := []struct {
		in   string
		f    float64
		want string
	}{
		{"#4a90e2", 0.3, "#80b1ea"},
		{"4A90E2", 0.3, "#80b1ea"},
		{"#000000", 0.5, "#7f7f7f"},
		{"#ffffff", 0.3, "#ffffff"},
		{"#102030", 2, "#ffffff"},
		{"#102030", -5, "#000000"},
		{"#ffffff", math.Inf(1), "#ffffff"},
		{"#ff0000", math.Inf(1), "#ffffff"},
		{"#ff8040", math.Inf(-1), "#ff0000"},
	}
	for _, tt := range tests {
		if got := Lighten(tt.in, tt.f); got != tt.want {
			t.Errorf("Lighten(%q, %v) = %s, want %s", tt.in, tt.f, got, tt.want)
		}
	}
}

func TestLightenMalformedFallsBack(t *testing.T) {
	inputs := []string{"", "#", "#abc", "#12345g", "not a color", "#1234567", "##123456"}
	for _, in := range inputs {
		if got := Lighten(in, DefaultLightenFactor); got != Fallback {
			t.Errorf("Lighten(%q) = %s, want fallback %s", in, got, Fallback)
		}
	}
	if got := Lighten("#123456", math.NaN()); got != Fallback {
		t.Errorf("Lighten with NaN factor = %s, want fallback", got)
	}
}

func TestLookup(t *testing.T) {
	def, err := Lookup("")
	if err != nil {
		t.Fatalf("Lookup(\"\") error = %v", err)
	}
	if def.Name != DefaultScheme || len(def.Colors) != 8 {
		t.Errorf("Expected default scheme with 8 colors, got %s with %d", def.Name, len(def.Colors))
	}

	blue, err := Lookup("Blue")
	if err != nil {
		t.Fatalf("Lookup(Blue) error = %v", err)
	}
	if blue.Center() != "#1e3a8a" {
		t.Errorf("Expected blue center #1e3a8a, got %s", blue.Center())
	}

	if _, err := Lookup("neon"); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("Lookup(neon) error = %v, want ErrInvalidArgument", err)
	}
}

func TestBranchWraps(t *testing.T) {
	nature, err := Lookup("nature")
	if err != nil {
		t.Fatal(err)
	}
	if got := nature.Branch(0); got != nature.Colors[1] {
		t.Errorf("Branch(0) = %s, want %s", got, nature.Colors[1])
	}
	// 6 colours: branch 5 wraps to index 0, the center colour
	if got := nature.Branch(5); got != nature.Colors[0] {
		t.Errorf("Branch(5) = %s, want %s", got, nature.Colors[0])
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	s, _ := Lookup("default")
	s.Colors[0] = "#000000"
	again, _ := Lookup("default")
	if again.Colors[0] == "#000000" {
		t.Error("Lookup exposes the shared palette slice")
	}
}
