package renderer

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/framebuffer_pool"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend runs the renderer on an existing backend instead of creating a WebGPU device.
// The renderer then neither acquires nor presents swapchain images.
//
// Parameters:
//   - backend: the backend to create resources on and issue binds to
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend gpu.Backend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}

// WithPipelineState sets the fixed-function state (blending, depth, culling) render pipelines
// are built with. When not specified, alpha blending with depth testing disabled is used.
//
// Parameters:
//   - p: the Pipeline describing the fixed-function state
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline state option to a renderer
func WithPipelineState(p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineState = p
	}
}

// WithClearColor sets the color render targets are cleared to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clear.Color = c.Normalized()
	}
}

// WithFramebufferPool forwards options to the renderer's framebuffer pool.
//
// Parameters:
//   - options: the pool options, e.g. framebuffer_pool.WithMaxIdleFrames
//
// Returns:
//   - RendererBuilderOption: a function that applies the pool options to a renderer
func WithFramebufferPool(options ...framebuffer_pool.FramebufferPoolBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.poolOptions = append(r.poolOptions, options...)
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count of the screen target.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Offscreen framebuffers are always single-sampled.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
