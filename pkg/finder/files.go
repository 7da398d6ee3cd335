package finder

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Input is one text document to map
type Input struct {
	Path  string
	Title string
	Text  string
}

// IsTextInput reports whether a path names a .txt or .md document
func IsTextInput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}

// TitleFromPath derives a map title from a file name: "climate_change.md"
// becomes "climate change".
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
}

// FindTextInputs walks a directory and returns all text documents in
// lexical order, skipping hidden directories.
func FindTextInputs(root string) ([]string, error) {
	var inputs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if IsTextInput(path) {
			inputs = append(inputs, path)
		}
		return nil
	})

	sort.Strings(inputs)
	return inputs, err
}

// ReadInputs loads the documents named by path. A file yields one input,
// a directory every text document below it, and "" or "-" reads stdin.
func ReadInputs(path string, stdin io.Reader) ([]Input, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return []Input{{Path: "-", Text: string(data)}}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	paths := []string{path}
	if info.IsDir() {
		if paths, err = FindTextInputs(path); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
	}

	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		in, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// ReadFile loads a single document
func ReadFile(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Input{Path: path, Title: TitleFromPath(path), Text: string(data)}, nil
}
