package finder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindTextInputs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.md"), "Beta")
	writeFile(t, filepath.Join(root, "a.txt"), "Alpha")
	writeFile(t, filepath.Join(root, "notes", "c.TXT"), "Gamma")
	writeFile(t, filepath.Join(root, "image.png"), "x")
	writeFile(t, filepath.Join(root, ".git", "d.txt"), "hidden")

	files, err := FindTextInputs(root)
	if err != nil {
		t.Fatalf("FindTextInputs() error = %v", err)
	}

	want := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.md"),
		filepath.Join(root, "notes", "c.TXT"),
	}
	if len(files) != len(want) {
		t.Fatalf("FindTextInputs() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := map[string]string{
		"/tmp/climate_change.md": "climate change",
		"solar-power.txt":        "solar power",
		"plain":                  "plain",
	}
	for in, want := range tests {
		if got := TitleFromPath(in); got != want {
			t.Errorf("TitleFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadInputs(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "energy_notes.txt")
	writeFile(t, file, "Solar power is renewable.")
	writeFile(t, filepath.Join(root, "other.md"), "Wind power too.")

	inputs, err := ReadInputs(file, nil)
	if err != nil {
		t.Fatalf("ReadInputs(file) error = %v", err)
	}
	if len(inputs) != 1 || inputs[0].Title != "energy notes" || inputs[0].Text != "Solar power is renewable." {
		t.Errorf("Unexpected input %+v", inputs)
	}

	inputs, err = ReadInputs(root, nil)
	if err != nil {
		t.Fatalf("ReadInputs(dir) error = %v", err)
	}
	if len(inputs) != 2 {
		t.Errorf("Expected 2 inputs from directory, got %d", len(inputs))
	}

	inputs, err = ReadInputs("-", strings.NewReader("from stdin"))
	if err != nil {
		t.Fatalf("ReadInputs(stdin) error = %v", err)
	}
	if len(inputs) != 1 || inputs[0].Text != "from stdin" || inputs[0].Title != "" {
		t.Errorf("Unexpected stdin input %+v", inputs)
	}

	if _, err := ReadInputs(filepath.Join(root, "missing.txt"), nil); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
