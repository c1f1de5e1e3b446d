package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/framebuffer_pool"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the presentation target of a Renderer, typically a window.Window.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend gpu.Backend
	// presenter is set when the backend owns a swapchain.
	presenter wgpuRendererBackend
	cache     *binding.Cache
	pool      framebuffer_pool.FramebufferPool
	clear     gpu.ClearState

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pipelineState        pipeline.Pipeline
	poolOptions          []framebuffer_pool.FramebufferPoolBuilderOption
}

// Renderer is the rendering context of one GPU device. It owns the backend, the binding
// cache every bind goes through, the framebuffer pool and the clear state applied when
// rendering begins on a target.
//
// A Renderer is used from a single rendering goroutine. Independent renderers share no state.
type Renderer interface {
	// Backend returns the backend resources are created on.
	//
	// Returns:
	//   - gpu.Backend: the backend
	Backend() gpu.Backend

	// Cache returns the binding cache in front of the backend.
	//
	// Returns:
	//   - *binding.Cache: the binding cache
	Cache() *binding.Cache

	// Pool returns the framebuffer pool used by Begin and BeginWithDepth.
	//
	// Returns:
	//   - framebuffer_pool.FramebufferPool: the pool
	Pool() framebuffer_pool.FramebufferPool

	// Begin starts rendering into a color texture. The framebuffer comes from the pool and
	// is cleared according to the clear state.
	//
	// Parameters:
	//   - color: the color attachment
	//
	// Returns:
	//   - gpu.Framebuffer: the pooled framebuffer now bound
	Begin(color gpu.Texture2D) gpu.Framebuffer

	// BeginWithDepth starts rendering into a color texture with a depth attachment.
	//
	// Parameters:
	//   - color: the color attachment
	//   - depth: the depth/stencil attachment
	//
	// Returns:
	//   - gpu.Framebuffer: the pooled framebuffer now bound
	BeginWithDepth(color, depth gpu.Texture2D) gpu.Framebuffer

	// BeginFramebuffer binds fb and clears it according to the clear state.
	//
	// Parameters:
	//   - fb: the framebuffer to render into
	BeginFramebuffer(fb gpu.Framebuffer)

	// End restores the screen as the render target.
	End()

	// SetClearColor sets the color targets are cleared to.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// ClearColor returns the color targets are cleared to.
	//
	// Returns:
	//   - common.Color: the clear color
	ClearColor() common.Color

	// EnableClearColor sets whether beginning a target clears its color attachments.
	EnableClearColor(enabled bool)

	// EnableClearDepth sets whether beginning a target clears its depth attachment.
	EnableClearDepth(enabled bool)

	// FrameStart begins a frame: resets the pool's usage flags, acquires the swapchain image
	// when the backend presents to a surface, and clears the screen.
	//
	// Returns:
	//   - error: an error if the swapchain image could not be acquired
	FrameStart() error

	// FrameEnd ends a frame: presents the swapchain image and evicts framebuffers that were
	// not used during the frame.
	FrameEnd()

	// DrawIndexed draws count indices from the bound index and vertex buffers with the bound
	// shader. It logs a warning and draws nothing when no index or vertex buffer is bound.
	//
	// Parameters:
	//   - count: the number of indices to draw
	DrawIndexed(count int)

	// Dispatch binds a compute shader and its recorded inputs and runs it.
	//
	// Parameters:
	//   - sh: the compute shader
	//   - x, y, z: the number of workgroups in each dimension
	Dispatch(sh gpu.Shader, x, y, z uint32)

	// Resize configures the default render target for a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required after
	// changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Release frees the pooled framebuffers and the backend's cached objects.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer. Unless WithBackend supplies a backend, a WebGPU backend
// is created that presents to surface.
//
// Parameters:
//   - surface: the window to present to, may be nil when WithBackend is used
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer
func NewRenderer(surface Surface, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu: &sync.Mutex{},
		clear: gpu.ClearState{
			ClearColor: true,
			ClearDepth: true,
		},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		msaa := MSAA4x
		if r.pendingMSAA != nil {
			msaa = *r.pendingMSAA
		}
		state := r.pipelineState
		if state == nil {
			state = pipeline.NewPipeline("2D")
		}
		wb := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, state)
		if r.pendingPresentMode != nil {
			wb.SetPresentMode(*r.pendingPresentMode)
		}
		wb.ConfigureSurface(surface.Width(), surface.Height())
		r.backend = wb
		r.presenter = wb
	}

	r.cache = binding.New(r.backend)
	r.pool = framebuffer_pool.NewFramebufferPool(r.backend, r.poolOptions...)
	return r
}

func (r *renderer) Backend() gpu.Backend {
	return r.backend
}

func (r *renderer) Cache() *binding.Cache {
	return r.cache
}

func (r *renderer) Pool() framebuffer_pool.FramebufferPool {
	return r.pool
}

func (r *renderer) Begin(color gpu.Texture2D) gpu.Framebuffer {
	fb := r.pool.Get([]gpu.Texture2D{color}, gpu.Texture2D{})
	r.BeginFramebuffer(fb)
	return fb
}

func (r *renderer) BeginWithDepth(color, depth gpu.Texture2D) gpu.Framebuffer {
	fb := r.pool.Get([]gpu.Texture2D{color}, depth)
	r.BeginFramebuffer(fb)
	return fb
}

func (r *renderer) BeginFramebuffer(fb gpu.Framebuffer) {
	if !fb.IsInit() {
		common.Logger().Warn("begin on an uninitialized framebuffer")
		return
	}
	r.cache.BindFramebuffer(fb)
	r.backend.Clear(r.clearState())
}

func (r *renderer) End() {
	r.cache.UnbindFramebuffer()
}

func (r *renderer) clearState() gpu.ClearState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clear
}

func (r *renderer) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear.Color = c.Normalized()
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return common.ColorFromNormalized(r.clear.Color)
}

func (r *renderer) EnableClearColor(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear.ClearColor = enabled
}

func (r *renderer) EnableClearDepth(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear.ClearDepth = enabled
}

func (r *renderer) FrameStart() error {
	r.pool.FrameStart()
	if r.presenter != nil {
		if err := r.presenter.BeginFrame(); err != nil {
			return err
		}
	}
	r.cache.UnbindFramebuffer()
	r.backend.Clear(r.clearState())
	return nil
}

func (r *renderer) FrameEnd() {
	r.cache.UnbindFramebuffer()
	if r.presenter != nil {
		r.presenter.Present()
	}
	r.pool.FrameEnd()
}

func (r *renderer) DrawIndexed(count int) {
	if !r.cache.BoundIndexBuffer().IsInit() {
		common.Logger().Warn("draw indexed: no index buffer was bound")
		return
	}
	if !r.cache.BoundVertexBuffer(0).IsInit() {
		common.Logger().Warn("draw indexed: no vertex buffer was bound")
		return
	}
	r.backend.DrawIndexed(count)
}

func (r *renderer) Dispatch(sh gpu.Shader, x, y, z uint32) {
	if !sh.IsCompute() {
		common.Assert(false, "dispatch of non-compute shader %s", sh)
		return
	}
	r.cache.BindShader(sh)
	r.backend.Dispatch(x, y, z)
}

func (r *renderer) Resize(width, height int) {
	r.backend.SetViewport(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	if r.presenter != nil {
		r.presenter.SetPresentMode(mode)
	}
}

func (r *renderer) Release() {
	r.pool.Release()
	r.cache.Reset()
	if r.presenter != nil {
		r.presenter.Release()
	}
}
