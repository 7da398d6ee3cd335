// Package palette holds the named colour schemes used for node colours and
// the lightening applied to subconcept nodes.
package palette

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ritzau/concept-mapper/pkg/model"
)

// DefaultScheme is used when no scheme name is given.
const DefaultScheme = "default"

// Fallback is returned by Lighten for colours it cannot parse.
const Fallback = "#e0e0e0"

// DefaultLightenFactor is the blend factor used for subconcept nodes.
const DefaultLightenFactor = 0.3

var schemes = map[string][]string{
	"default": {"#4a90e2", "#50c878", "#ffb347", "#dda0dd", "#f0e68c", "#98fb98", "#f5a9a9", "#87ceeb"},
	"blue":    {"#1e3a8a", "#3b82f6", "#60a5fa", "#93c5fd", "#bfdbfe", "#dbeafe", "#eff6ff"},
	"nature":  {"#22543d", "#38a169", "#68d391", "#9ae6b4", "#c6f6d5", "#f0fff4"},
}

// Scheme is an ordered palette of canonical lower-case #rrggbb colours.
// Index 0 colours the center node.
type Scheme struct {
	Name   string
	Colors []string
}

// Lookup returns the scheme with the given name. An empty name selects the
// default scheme.
func Lookup(name string) (Scheme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultScheme
	}
	colors, ok := schemes[key]
	if !ok {
		return Scheme{}, fmt.Errorf("%w: unknown color scheme %q (supported: %s)",
			model.ErrInvalidArgument, name, strings.Join(Names(), ", "))
	}
	return Scheme{Name: key, Colors: append([]string(nil), colors...)}, nil
}

// Names returns the scheme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Center returns the colour of the center node.
func (s Scheme) Center() string {
	return s.Colors[0]
}

// Branch returns the colour of the i-th main branch (0-based). Branch 0 takes
// the scheme's second colour and the sequence wraps around.
func (s Scheme) Branch(i int) string {
	return s.Colors[(i+1)%len(s.Colors)]
}

// Lighten blends a #rrggbb colour toward white by factor f. Each channel c
// becomes c + (255-c)*f, truncated and clamped to [0,255]. The leading '#' is
// optional. Input that does not parse yields Fallback.
func Lighten(hex string, f float64) string {
	c, ok := parseHex(hex)
	if !ok || math.IsNaN(f) {
		return Fallback
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("#%02x%02x%02x", blend(r, f), blend(g, f), blend(b, f))
}

func blend(c uint8, f float64) uint8 {
	// white channels stay white for every factor, including infinite ones
	if c == 255 {
		return c
	}
	v := float64(c) + (255-float64(c))*f
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Parse converts a #rrggbb string into a colour usable for drawing.
func Parse(hex string) (colorful.Color, bool) {
	return parseHex(hex)
}

func parseHex(hex string) (colorful.Color, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return colorful.Color{}, false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return colorful.Color{}, false
		}
	}
	c, err := colorful.Hex("#" + s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}
