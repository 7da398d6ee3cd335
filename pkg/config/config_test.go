package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ritzau/concept-mapper/pkg/model"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return f
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(newFlags(t), filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Layout != "spring" || cfg.Scheme != "default" || cfg.Format != "data" {
		t.Errorf("Unexpected names %s/%s/%s", cfg.Layout, cfg.Scheme, cfg.Format)
	}
	if cfg.Port != 8080 || cfg.DebounceMs != 500 || cfg.Width != 1200 || cfg.Height != 800 {
		t.Errorf("Unexpected numbers %+v", cfg)
	}

	opts := cfg.ExtractOptions()
	if opts.MaxConcepts != 8 || opts.MaxSubconcepts != 5 || opts.SentenceWindow != 3 || opts.WordsPerSentence != 2 {
		t.Errorf("Unexpected extract options %+v", opts)
	}
	if cfg.RenderOptions().SpringIterations != 50 {
		t.Errorf("Unexpected spring iterations %d", cfg.RenderOptions().SpringIterations)
	}
}

func TestLoadPriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concept-mapper.toml")
	content := "layout = \"circular\"\nscheme = \"blue\"\nport = 9000\nmax-concepts = 4\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONCEPT_MAPPER_PORT", "9100")
	t.Setenv("CONCEPT_MAPPER_MAX_SUBCONCEPTS", "2")

	cfg, err := load(newFlags(t, "--scheme", "nature", "-vv"), path)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Layout != "circular" {
		t.Errorf("Expected layout from file, got %s", cfg.Layout)
	}
	if cfg.Scheme != "nature" {
		t.Errorf("Expected scheme from flags, got %s", cfg.Scheme)
	}
	if cfg.Port != 9100 {
		t.Errorf("Expected port from env, got %d", cfg.Port)
	}
	if cfg.MaxConcepts != 4 || cfg.MaxSubconcepts != 2 {
		t.Errorf("Expected max-concepts 4 and max-subconcepts 2, got %d and %d", cfg.MaxConcepts, cfg.MaxSubconcepts)
	}
	if cfg.VerboseCnt != 2 {
		t.Errorf("Expected verbose count 2, got %d", cfg.VerboseCnt)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")
	tests := [][]string{
		{"--layout", "spiral"},
		{"--scheme", "neon"},
		{"--format", "pdf"},
		{"--port", "70000"},
		{"--width", "0"},
	}
	for _, args := range tests {
		if _, err := load(newFlags(t, args...), missing); !errors.Is(err, model.ErrInvalidArgument) {
			t.Errorf("load(%v) error = %v, want ErrInvalidArgument", args, err)
		}
	}
}
