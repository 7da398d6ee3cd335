package render

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/ritzau/concept-mapper/pkg/model"
)

// Radial geometry in pixels
const (
	radialCenterRadius = 40
	radialMainRadius   = 25
	radialSubRadius    = 15
	radialMainDistance = 150.0
	radialSubDistance  = 80.0
	radialSubSector    = math.Pi / 3

	mainLabelRunes = 10
	subLabelRunes  = 8
)

// RadialHTML renders the map as an HTML fragment: a titled div holding an
// inline SVG with the center in the middle, main concepts on a ring around it
// and subconcepts fanned out behind their main concept. The layout is fixed
// and does not depend on the map's Layout.
func RadialHTML(m *model.Map) string {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(m.Width, m.Height)

	cx, cy := m.Width/2, m.Height/2

	mains := m.NodesByLevel(1)
	var step float64
	if len(mains) > 0 {
		step = 2 * math.Pi / float64(len(mains))
	}

	for i, main := range mains {
		angle := float64(i) * step
		x := float64(cx) + radialMainDistance*math.Cos(angle)
		y := float64(cy) + radialMainDistance*math.Sin(angle)
		mx, my := round(x), round(y)

		canvas.Line(cx, cy, mx, my, stroke(main.Color, 3))

		subs := m.Children(main.ID)
		if len(subs) > 0 {
			subStep := radialSubSector / float64(len(subs))
			for j, sub := range subs {
				a := angle + (float64(j)-float64(len(subs)-1)/2)*subStep
				sx := round(x + radialSubDistance*math.Cos(a))
				sy := round(y + radialSubDistance*math.Sin(a))
				canvas.Line(mx, my, sx, sy, stroke(sub.Color, 2))
				canvas.Circle(sx, sy, radialSubRadius, fill(sub.Color, 1))
				canvas.Text(sx, sy, truncate(sub.Label, subLabelRunes), label(10, false))
			}
		}

		canvas.Circle(mx, my, radialMainRadius, fill(main.Color, 1))
		canvas.Text(mx, my, truncate(main.Label, mainLabelRunes), label(12, false))
	}

	canvas.Circle(cx, cy, radialCenterRadius, fill(m.CenterNode.Color, 2))
	canvas.Text(cx, cy, m.CenterNode.Label, label(14, true))
	canvas.End()

	var out strings.Builder
	fmt.Fprintf(&out, `<div class="mind-map" style="width: %dpx; height: %dpx; position: relative; border: 1px solid #ddd; background: #f9f9f9;">`, m.Width, m.Height)
	out.WriteString("\n")
	fmt.Fprintf(&out, `<h3 style="text-align: center; margin: 10px;">%s</h3>`, html.EscapeString(m.Title))
	out.WriteString("\n")
	out.WriteString(svgElement(buf.String()))
	out.WriteString("</div>\n")
	return out.String()
}

// svgElement drops the XML prolog svgo writes before the <svg> element,
// which is not valid inside HTML.
func svgElement(doc string) string {
	if i := strings.Index(doc, "<svg"); i >= 0 {
		return doc[i:]
	}
	return doc
}

func stroke(color string, width int) string {
	return fmt.Sprintf("stroke:%s;stroke-width:%d", color, width)
}

func fill(color string, strokeWidth int) string {
	return fmt.Sprintf("fill:%s;stroke:#333;stroke-width:%d", color, strokeWidth)
}

func label(size int, bold bool) string {
	s := fmt.Sprintf("text-anchor:middle;dominant-baseline:middle;fill:white;font-size:%dpx", size)
	if bold {
		s += ";font-weight:bold"
	}
	return s
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func round(v float64) int {
	return int(math.Round(v))
}
