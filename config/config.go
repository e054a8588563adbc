// Package config loads and validates strut configuration files. TOML and
// YAML are supported; the format follows the file extension.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/agiangrant/strut/render"
	"github.com/agiangrant/strut/solver"
)

// Config is the complete configuration.
type Config struct {
	Window WindowConfig `toml:"window" yaml:"window"`
	Render RenderConfig `toml:"render" yaml:"render"`
	Input  InputConfig  `toml:"input" yaml:"input"`
	Layout LayoutConfig `toml:"layout" yaml:"layout"`
	Loop   LoopConfig   `toml:"loop" yaml:"loop"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

type WindowConfig struct {
	Title            string  `toml:"title" yaml:"title"`
	Width            float32 `toml:"width" yaml:"width"`
	Height           float32 `toml:"height" yaml:"height"`
	DevicePixelRatio float32 `toml:"device_pixel_ratio" yaml:"device_pixel_ratio"`
}

type RenderConfig struct {
	// Background is a color name or #rrggbb[aa].
	Background string `toml:"background" yaml:"background"`
	// Debug lists rasterizer overlays: profiler, texture_cache,
	// render_targets, gpu_time.
	Debug []string `toml:"debug,omitempty" yaml:"debug,omitempty"`
}

type InputConfig struct {
	// Pixels scrolled per wheel line
	LineScrollPixels float32 `toml:"line_scroll_pixels" yaml:"line_scroll_pixels"`
}

type LayoutConfig struct {
	// EditStrength is weak, medium or strong.
	EditStrength string `toml:"edit_strength" yaml:"edit_strength"`
}

type LoopConfig struct {
	TargetFPS int `toml:"target_fps" yaml:"target_fps"`
	// MaxDrain caps events per tick; 0 drains everything queued at tick start.
	MaxDrain int `toml:"max_drain" yaml:"max_drain"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:            "strut",
			Width:            800,
			Height:           600,
			DevicePixelRatio: 1,
		},
		Render: RenderConfig{
			Background: "#ccccccff",
		},
		Input: InputConfig{
			LineScrollPixels: 13,
		},
		Layout: LayoutConfig{
			EditStrength: "strong",
		},
		Loop: LoopConfig{
			TargetFPS: 60,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ============================================================================
// Formats
// ============================================================================

// Format is a configuration file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
}

// Load reads, parses and validates a configuration file. Settings missing
// from the file keep their defaults.
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates configuration data.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document leaves the defaults
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", format)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration.
func (c Config) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(c)
	case FormatYAML:
		return yaml.Marshal(c)
	}
	return nil, fmt.Errorf("unsupported config format %q", format)
}

// Save writes the configuration in the format of the path's extension.
func (c Config) Save(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := c.Marshal(format)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// applyDefaults fills values a file set to zero explicitly.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Window.DevicePixelRatio == 0 {
		c.Window.DevicePixelRatio = def.Window.DevicePixelRatio
	}
	if c.Render.Background == "" {
		c.Render.Background = def.Render.Background
	}
	if c.Input.LineScrollPixels == 0 {
		c.Input.LineScrollPixels = def.Input.LineScrollPixels
	}
	if c.Layout.EditStrength == "" {
		c.Layout.EditStrength = def.Layout.EditStrength
	}
	if c.Loop.TargetFPS == 0 {
		c.Loop.TargetFPS = def.Loop.TargetFPS
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// ============================================================================
// Validation
// ============================================================================

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size %gx%g must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.DevicePixelRatio <= 0 {
		errs = append(errs, fmt.Errorf("window: device_pixel_ratio %g must be positive", c.Window.DevicePixelRatio))
	}
	if _, err := c.Render.BackgroundColor(); err != nil {
		errs = append(errs, fmt.Errorf("render: background: %w", err))
	}
	if _, err := c.Render.DebugFlags(); err != nil {
		errs = append(errs, fmt.Errorf("render: %w", err))
	}
	if c.Input.LineScrollPixels <= 0 {
		errs = append(errs, fmt.Errorf("input: line_scroll_pixels %g must be positive", c.Input.LineScrollPixels))
	}
	if _, err := c.Layout.Strength(); err != nil {
		errs = append(errs, fmt.Errorf("layout: %w", err))
	}
	if c.Loop.TargetFPS <= 0 || c.Loop.TargetFPS > 1000 {
		errs = append(errs, fmt.Errorf("loop: target_fps %d out of range 1..1000", c.Loop.TargetFPS))
	}
	if c.Loop.MaxDrain < 0 {
		errs = append(errs, fmt.Errorf("loop: max_drain %d must not be negative", c.Loop.MaxDrain))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// BackgroundColor parses the background setting.
func (r RenderConfig) BackgroundColor() (render.Color, error) {
	return render.ParseColor(r.Background)
}

var debugFlags = map[string]render.DebugFlags{
	"profiler":       render.DebugProfiler,
	"texture_cache":  render.DebugTextureCache,
	"render_targets": render.DebugRenderTargets,
	"gpu_time":       render.DebugGPUTime,
}

// DebugFlags combines the named overlays.
func (r RenderConfig) DebugFlags() (render.DebugFlags, error) {
	var flags render.DebugFlags
	for _, name := range r.Debug {
		f, ok := debugFlags[name]
		if !ok {
			return 0, fmt.Errorf("unknown debug flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}

// Strength parses the edit strength. Required is rejected because an edit
// variable must be able to yield.
func (l LayoutConfig) Strength() (solver.Strength, error) {
	s, err := solver.ParseStrength(l.EditStrength)
	if err != nil {
		return 0, err
	}
	if s == solver.Required {
		return 0, fmt.Errorf("edit_strength must be weaker than required")
	}
	return s, nil
}

// SlogLevel parses the log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}
