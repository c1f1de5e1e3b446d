// Package config loads application settings from TOML or YAML files and converts them into
// window and renderer options.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/framebuffer_pool"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for configuration files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// AppConfig is the root of a configuration file.
type AppConfig struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
}

// WindowConfig configures the window. Zero sizes keep the window defaults.
type WindowConfig struct {
	Title     string `toml:"title" yaml:"title"`
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	MinWidth  int    `toml:"min_width" yaml:"min_width"`
	MinHeight int    `toml:"min_height" yaml:"min_height"`
	MaxWidth  int    `toml:"max_width" yaml:"max_width"`
	MaxHeight int    `toml:"max_height" yaml:"max_height"`
	Resizable bool   `toml:"resizable" yaml:"resizable"`
}

// RendererConfig configures the rendering context.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode" yaml:"present_mode"`
	// MSAA is the sample count of the screen target: 1, 4, 8 or 16.
	MSAA          int  `toml:"msaa" yaml:"msaa"`
	ForceSoftware bool `toml:"force_software" yaml:"force_software"`
	// ClearColor is "#RRGGBB" or "#RRGGBBAA".
	ClearColor string `toml:"clear_color" yaml:"clear_color"`
	// MaxIdleFrames is how many frames a pooled framebuffer survives unused.
	MaxIdleFrames int `toml:"max_idle_frames" yaml:"max_idle_frames"`
}

// EngineConfig configures the frame loop.
type EngineConfig struct {
	Profiling       bool     `toml:"profiling" yaml:"profiling"`
	ProfileInterval Duration `toml:"profile_interval" yaml:"profile_interval"`
	// FrameLimit caps the frame rate; 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit" yaml:"frame_limit"`
}

// Duration is a time.Duration written as a string such as "500ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
func Default() AppConfig {
	return AppConfig{
		Window: WindowConfig{
			Title:     "oxy2d",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 200,
			MaxWidth:  3840,
			MaxHeight: 2160,
			Resizable: true,
		},
		Renderer: RendererConfig{
			PresentMode:   "vsync",
			MSAA:          4,
			ClearColor:    "#000000FF",
			MaxIdleFrames: 1,
		},
		Engine: EngineConfig{
			ProfileInterval: Duration(time.Second),
		},
	}
}

// Decoder decodes a configuration document.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a strict Decoder reading from r.
type DecoderFunc func(r io.Reader) Decoder

// TOML decodes TOML documents, rejecting unknown keys.
func TOML(r io.Reader) Decoder {
	return toml.NewDecoder(r).DisallowUnknownFields()
}

// YAML decodes YAML documents, rejecting unknown keys.
func YAML(r io.Reader) Decoder {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	return d
}

var decoders = map[string]DecoderFunc{
	".toml": TOML,
	".yaml": YAML,
	".yml":  YAML,
}

// Load reads a configuration file, choosing the format by extension. Keys missing from
// the file keep their Default values.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - AppConfig: the validated configuration
//   - error: if the file cannot be read, decoded or validated
func Load(path string) (AppConfig, error) {
	f, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return AppConfig{}, fmt.Errorf("load %s: %w", path, ErrUnsupportedFormat)
	}
	fp, err := os.Open(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	defer fp.Close()

	cfg, err := Read(bufio.NewReader(fp), f)
	if err != nil {
		return AppConfig{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes a configuration over the defaults and validates it.
//
// Parameters:
//   - r: the document
//   - f: the format decoder, TOML or YAML
//
// Returns:
//   - AppConfig: the validated configuration
//   - error: if decoding or validation fails
func Read(r io.Reader, f DecoderFunc) (AppConfig, error) {
	cfg := Default()
	if err := f(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return AppConfig{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c AppConfig) Validate() error {
	var errs []error
	w := c.Window
	if w.Width < 0 || w.Height < 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d is negative", w.Width, w.Height))
	}
	if w.MaxWidth > 0 && w.MinWidth > w.MaxWidth {
		errs = append(errs, fmt.Errorf("window min_width %d exceeds max_width %d", w.MinWidth, w.MaxWidth))
	}
	if w.MaxHeight > 0 && w.MinHeight > w.MaxHeight {
		errs = append(errs, fmt.Errorf("window min_height %d exceeds max_height %d", w.MinHeight, w.MaxHeight))
	}
	if _, err := renderer.ParsePresentMode(c.Renderer.PresentMode); err != nil {
		errs = append(errs, fmt.Errorf("renderer present_mode: %w", err))
	}
	if c.Renderer.MSAA < 0 || !renderer.MSAASampleCount(c.Renderer.MSAA).Valid() {
		errs = append(errs, fmt.Errorf("renderer msaa %d is not one of 1, 4, 8, 16", c.Renderer.MSAA))
	}
	if _, err := ParseColor(c.Renderer.ClearColor); err != nil {
		errs = append(errs, err)
	}
	if c.Renderer.MaxIdleFrames < 1 {
		errs = append(errs, fmt.Errorf("renderer max_idle_frames %d is less than 1", c.Renderer.MaxIdleFrames))
	}
	if c.Engine.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("engine frame_limit %g is negative", c.Engine.FrameLimit))
	}
	return errors.Join(errs...)
}

// WindowOptions converts the window section into window options.
func (c AppConfig) WindowOptions() []window.WindowBuilderOption {
	w := c.Window
	opts := []window.WindowBuilderOption{window.WithResizable(w.Resizable)}
	if w.Title != "" {
		opts = append(opts, window.WithTitle(w.Title))
	}
	opts = append(opts,
		window.WithSize(w.Width, w.Height),
		window.WithSizeLimits(w.MinWidth, w.MinHeight, w.MaxWidth, w.MaxHeight),
	)
	return opts
}

// RendererOptions converts the renderer section into renderer options. Invalid values are
// skipped; Load rejects them.
func (c AppConfig) RendererOptions() []renderer.RendererBuilderOption {
	r := c.Renderer
	opts := []renderer.RendererBuilderOption{
		renderer.WithForceSoftwareRenderer(r.ForceSoftware),
		renderer.WithMSAA(renderer.MSAASampleCount(max(r.MSAA, 1))),
	}
	if mode, err := renderer.ParsePresentMode(r.PresentMode); err == nil {
		opts = append(opts, renderer.WithPresentMode(mode))
	}
	if color, err := ParseColor(r.ClearColor); err == nil {
		opts = append(opts, renderer.WithClearColor(color))
	}
	if r.MaxIdleFrames > 0 {
		opts = append(opts, renderer.WithFramebufferPool(framebuffer_pool.WithMaxIdleFrames(r.MaxIdleFrames)))
	}
	return opts
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional and an empty
// string is opaque black.
//
// Parameters:
//   - s: the hex color
//
// Returns:
//   - common.Color: the parsed color
//   - error: if s is not a hex color
func ParseColor(s string) (common.Color, error) {
	if s == "" {
		return common.ColorBlack, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return 0, fmt.Errorf("color %q is not #RRGGBB or #RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return common.NewColor(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), nil
}
