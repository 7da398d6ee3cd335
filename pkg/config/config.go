// Package config layers defaults, concept-mapper.toml, CONCEPT_MAPPER_*
// environment variables and command line flags into one Config.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/concept-mapper/pkg/concepts"
	"github.com/ritzau/concept-mapper/pkg/model"
	"github.com/ritzau/concept-mapper/pkg/palette"
	"github.com/ritzau/concept-mapper/pkg/render"
)

// FileName is the optional config file read from the working directory.
const FileName = "concept-mapper.toml"

// EnvPrefix prefixes environment overrides. Underscores after the prefix
// become dashes: CONCEPT_MAPPER_MAX_CONCEPTS sets max-concepts.
const EnvPrefix = "CONCEPT_MAPPER_"

// Config holds all configuration for the application
type Config struct {
	Input  string `koanf:"input"`
	Title  string `koanf:"title"`
	Layout string `koanf:"layout"`
	Scheme string `koanf:"scheme"`
	Format string `koanf:"format"`
	Output string `koanf:"output"`

	WebMode    bool `koanf:"web"`
	Port       int  `koanf:"port"`
	Watch      bool `koanf:"watch"`
	DebounceMs int  `koanf:"debounce"`

	MaxConcepts      int `koanf:"max-concepts"`
	MaxSubconcepts   int `koanf:"max-subconcepts"`
	SentenceWindow   int `koanf:"sentence-window"`
	WordsPerSentence int `koanf:"words-per-sentence"`

	SpringIterations int `koanf:"spring-iterations"`
	Width            int `koanf:"width"`
	Height           int `koanf:"height"`

	Verbosity  string `koanf:"verbosity"`
	VerboseCnt int    `koanf:"verbose"`
	JSONLogs   bool   `koanf:"json-logs"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	opts := concepts.DefaultOptions()
	return map[string]interface{}{
		"input":              "",
		"title":              "",
		"layout":             string(model.LayoutSpring),
		"scheme":             palette.DefaultScheme,
		"format":             render.FormatData,
		"output":             "",
		"web":                false,
		"port":               8080,
		"watch":              false,
		"debounce":           500,
		"max-concepts":       opts.MaxConcepts,
		"max-subconcepts":    opts.MaxSubconcepts,
		"sentence-window":    opts.SentenceWindow,
		"words-per-sentence": opts.WordsPerSentence,
		"spring-iterations":  render.DefaultSpringIterations,
		"width":              model.DefaultWidth,
		"height":             model.DefaultHeight,
		"verbosity":          "",
		"verbose":            0,
		"json-logs":          false,
	}
}

// RegisterFlags defines the command line flags. Flag names match the config
// keys, so a flag that is set overrides every other layer.
func RegisterFlags(f *pflag.FlagSet) {
	d := Defaults()
	f.StringP("input", "i", "", "Text file or directory of .txt/.md files (stdin when empty)")
	f.StringP("title", "t", "", "Map title (derived from the text when empty)")
	f.StringP("layout", "l", d["layout"].(string), "Layout: spring, circular or hierarchical")
	f.StringP("scheme", "s", d["scheme"].(string), "Color scheme: "+strings.Join(palette.Names(), ", "))
	f.StringP("format", "f", d["format"].(string), "Output format: "+strings.Join(render.Formats, ", "))
	f.StringP("output", "o", "", "Output file or directory (stdout when empty)")
	f.Bool("web", false, "Serve the HTTP API instead of rendering once")
	f.IntP("port", "p", d["port"].(int), "HTTP port for --web")
	f.BoolP("watch", "w", false, "Rebuild the map whenever the input file changes")
	f.Int("debounce", d["debounce"].(int), "Watch debounce in milliseconds")
	f.Int("max-concepts", d["max-concepts"].(int), "Maximum main concepts")
	f.Int("max-subconcepts", d["max-subconcepts"].(int), "Maximum subconcepts per main concept")
	f.Int("sentence-window", d["sentence-window"].(int), "Sentences scanned per main concept")
	f.Int("words-per-sentence", d["words-per-sentence"].(int), "Words taken from each scanned sentence")
	f.Int("spring-iterations", d["spring-iterations"].(int), "Force-directed layout updates")
	f.Int("width", d["width"].(int), "Canvas width in pixels")
	f.Int("height", d["height"].(int), "Canvas height in pixels")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	f.Bool("json-logs", false, "Log as JSON instead of compact text")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return load(f, FileName)
}

func load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider(path), toml.Parser())

	// 3. Environment Variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks names and numeric ranges. Errors wrap
// model.ErrInvalidArgument.
func (c *Config) Validate() error {
	if _, err := model.ParseLayout(c.Layout); err != nil {
		return err
	}
	if _, err := palette.Lookup(c.Scheme); err != nil {
		return err
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", model.ErrInvalidArgument, c.Port)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: canvas %dx%d must be positive", model.ErrInvalidArgument, c.Width, c.Height)
	}
	return nil
}

// ExtractOptions returns the extraction tuning.
func (c *Config) ExtractOptions() concepts.Options {
	return concepts.Options{
		MaxConcepts:      c.MaxConcepts,
		MaxSubconcepts:   c.MaxSubconcepts,
		SentenceWindow:   c.SentenceWindow,
		WordsPerSentence: c.WordsPerSentence,
	}
}

// RenderOptions returns the renderer tuning.
func (c *Config) RenderOptions() render.Options {
	return render.Options{SpringIterations: c.SpringIterations}
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
