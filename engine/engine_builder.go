package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy2d/engine/config"
	"github.com/Carmen-Shannon/oxy2d/engine/profiler"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerOptions configures the profiler, e.g. its logging interval.
//
// Parameters:
//   - options: the profiler options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerOptions(options ...profiler.ProfilerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.profilerOptions = append(e.profilerOptions, options...)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally. The engine does not close a window it did not create.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions configures the window the engine creates. Ignored when WithWindow is used.
//
// Parameters:
//   - options: the window options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithRenderer sets the rendering context instead of creating one for the window.
//
// Parameters:
//   - r: the rendering context
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions configures the rendering context the engine creates. Ignored when
// WithRenderer is used.
//
// Parameters:
//   - options: the renderer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithLayer pushes a layer once the engine is constructed. Layers are attached in the order
// the options are given.
//
// Parameters:
//   - l: the layer to push
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLayer(l Layer) EngineBuilderOption {
	return func(e *engine) {
		e.layers = append(e.layers, l)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}

// WithConfig applies a file configuration: window, renderer, profiling and frame limit.
// Options given after WithConfig override it.
//
// Parameters:
//   - cfg: the loaded configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.AppConfig) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, cfg.WindowOptions()...)
		e.rendererOptions = append(e.rendererOptions, cfg.RendererOptions()...)
		e.profilingEnabled = cfg.Engine.Profiling
		e.renderFrameLimit = frameDuration(cfg.Engine.FrameLimit)
		if cfg.Engine.ProfileInterval > 0 {
			e.profilerOptions = append(e.profilerOptions, profiler.WithUpdateInterval(time.Duration(cfg.Engine.ProfileInterval)))
		}
	}
}
