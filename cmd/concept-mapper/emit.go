package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/concept-mapper/pkg/logging"
	"github.com/ritzau/concept-mapper/pkg/render"
	"github.com/ritzau/concept-mapper/pkg/store"
)

// extensions used when several maps are written into an output directory
var extensions = map[string]string{
	render.FormatGraphImage: ".png",
	render.FormatRadial:     ".html",
	render.FormatData:       ".json",
}

// destination picks where the view of one map goes. An empty output means
// stdout; with several inputs the output is a directory.
func destination(output, id, format string, many bool) string {
	if output == "" || !many {
		return output
	}
	return filepath.Join(output, id+extensions[format])
}

// codecFor chooses the export codec from the file extension
func codecFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return render.CodecYAML
	}
	return render.CodecJSON
}

// isSnapshot reports whether path names a data export to re-render
func isSnapshot(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// importSnapshot decodes a data export and stores the map it describes
func importSnapshot(st *store.Store, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	export, err := render.DecodeExport(file, codecFor(path))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return st.Import(export)
}

// emit renders a stored map and writes it to path, or to stdout when path
// is empty.
func emit(ctx context.Context, st *store.Store, id string, format render.Format, path string, stdout io.Writer) error {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if _, ok := format.(render.GraphImage); ok {
		f := render.GraphImage{SavePath: path}
		if path == "" {
			f.Writer = stdout
		}
		if _, err := st.Render(ctx, id, f); err != nil {
			return err
		}
		logging.Debug("wrote graph image", "mapID", id, "path", path)
		return nil
	}

	out, err := st.Render(ctx, id, format)
	if err != nil {
		return err
	}

	if path == "" {
		return writeView(stdout, out, format, path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeView(file, out, format, path); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	logging.Debug("wrote map", "mapID", id, "format", format.Name(), "path", path)
	return nil
}

func writeView(w io.Writer, out render.Output, format render.Format, path string) error {
	var err error
	switch format.(type) {
	case render.Radial:
		_, err = io.WriteString(w, out.HTML)
	default:
		err = render.EncodeExport(w, out.Export, codecFor(path))
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", format.Name(), err)
	}
	return nil
}
