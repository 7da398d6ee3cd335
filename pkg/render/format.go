package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ritzau/concept-mapper/pkg/model"
)

// Format names
const (
	FormatGraphImage = "graph-image"
	FormatRadial     = "radial"
	FormatData       = "data"
)

// Format selects one of the three renderings. The set is closed: only the
// types in this package implement it.
type Format interface {
	Name() string
	isFormat()
}

// GraphImage draws the map as a PNG with a force-directed, circular or
// hierarchical layout. The image goes to Writer when set, otherwise to the
// file at SavePath.
type GraphImage struct {
	SavePath string
	Writer   io.Writer
}

// Radial renders an HTML fragment holding an inline SVG radial tree.
type Radial struct{}

// Data produces the structured export snapshot.
type Data struct{}

func (GraphImage) Name() string { return FormatGraphImage }
func (Radial) Name() string     { return FormatRadial }
func (Data) Name() string       { return FormatData }

func (GraphImage) isFormat() {}
func (Radial) isFormat()     {}
func (Data) isFormat()       {}

var formatAliases = map[string]string{
	FormatGraphImage: FormatGraphImage,
	"matplotlib":     FormatGraphImage,
	"png":            FormatGraphImage,
	FormatRadial:     FormatRadial,
	"html":           FormatRadial,
	"svg":            FormatRadial,
	FormatData:       FormatData,
	"json":           FormatData,
}

// Formats lists the canonical format names.
var Formats = []string{FormatGraphImage, FormatRadial, FormatData}

// ParseFormat resolves a format name or alias. A GraphImage result has no
// destination set; callers fill in SavePath or Writer.
func ParseFormat(name string) (Format, error) {
	switch formatAliases[strings.ToLower(strings.TrimSpace(name))] {
	case FormatGraphImage:
		return GraphImage{}, nil
	case FormatRadial:
		return Radial{}, nil
	case FormatData:
		return Data{}, nil
	}
	return nil, fmt.Errorf("%w: unknown format %q (supported: %s)",
		model.ErrInvalidArgument, name, strings.Join(Formats, ", "))
}
