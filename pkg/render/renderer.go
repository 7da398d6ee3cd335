// Package render turns a mind map into one of three views: a PNG graph
// image, an HTML radial tree or a structured data export.
package render

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ritzau/concept-mapper/pkg/logging"
	"github.com/ritzau/concept-mapper/pkg/model"
)

// Options tunes the graph-image rendering.
type Options struct {
	SpringIterations int
}

// Output is the result of a render. Exactly one of the view fields is set,
// depending on the format.
type Output struct {
	Format string
	OK     bool    // graph-image: an image was written
	HTML   string  // radial
	Export *Export // data
}

// Renderer renders maps. It keeps no per-map state and never modifies the
// maps it renders, so one Renderer may serve concurrent calls.
type Renderer struct {
	raster Rasterizer
	opts   Options
}

// NewRenderer creates a renderer. A nil rasterizer disables graph-image
// output; the other formats keep working.
func NewRenderer(raster Rasterizer, opts Options) *Renderer {
	if opts.SpringIterations <= 0 {
		opts.SpringIterations = DefaultSpringIterations
	}
	return &Renderer{raster: raster, opts: opts}
}

// Available reports whether graph-image rendering is possible.
func (r *Renderer) Available() bool {
	return r.raster != nil
}

// Render produces the view of m selected by f.
func (r *Renderer) Render(ctx context.Context, m *model.Map, f Format) (Output, error) {
	switch f := f.(type) {
	case GraphImage:
		return r.graphImage(ctx, m, f)
	case Radial:
		return Output{Format: FormatRadial, HTML: RadialHTML(m)}, nil
	case Data:
		return Output{Format: FormatData, Export: NewExport(m)}, nil
	}
	return Output{}, fmt.Errorf("%w: unsupported format %T (supported: %s)",
		model.ErrInvalidArgument, f, strings.Join(Formats, ", "))
}

func (r *Renderer) graphImage(ctx context.Context, m *model.Map, f GraphImage) (Output, error) {
	out := Output{Format: FormatGraphImage}
	if r.raster == nil {
		logging.WarnContext(ctx, "graph image requested but no rasterizer is available", "title", m.Title)
		return out, fmt.Errorf("%w: no rasterizer configured, use the radial or data format", model.ErrRenderUnavailable)
	}
	if f.Writer == nil && f.SavePath == "" {
		return out, fmt.Errorf("%w: graph-image needs a save path or writer", model.ErrInvalidArgument)
	}

	start := time.Now()
	raw, err := Positions(ctx, m, r.opts.SpringIterations)
	if err != nil {
		return out, err
	}
	scene := newScene(m, fit(raw, m.Width, m.Height, sceneMargin, sceneTitleGap))

	if f.Writer != nil {
		err = r.raster.Rasterize(f.Writer, scene)
	} else {
		err = r.rasterizeToFile(f.SavePath, scene)
	}
	if err != nil {
		return out, fmt.Errorf("rasterizing %q: %w", m.Title, err)
	}

	logging.InfoContext(ctx, "rendered graph image",
		"title", m.Title,
		"layout", string(m.Layout),
		"path", f.SavePath,
		"durationMs", time.Since(start).Milliseconds())
	out.OK = true
	return out, nil
}

func (r *Renderer) rasterizeToFile(path string, scene Scene) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.raster.Rasterize(file, scene); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
