package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// maxSampledTextures is the per-stage sampled texture limit requested from the device. The
// 2D batch shader samples one texture per batch slot.
const maxSampledTextures = 32

const screenDepthFormat = wgpu.TextureFormatDepth24Plus

type boundTexture struct {
	tex   *wgpuTexture
	usage gpu.TextureUsage
}

// wgpuRendererBackendImpl implements gpu.Backend on WebGPU.
//
// WebGPU has no global binding state, so the backend keeps the state the engine binds
// and turns it into a pipeline, bind groups and a render pass whenever a draw or dispatch
// is issued. Every draw and dispatch is encoded into its own pass and submitted at once,
// which keeps queue writes made between draws ordered with the draws that read them.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	width, height    int
	msaaTextureView  *wgpu.TextureView
	depthTextureView *wgpu.TextureView

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	textures       map[int]boundTexture
	vertexBuffers  map[int]*wgpuBuffer
	uniformBuffers map[int]*wgpuBuffer
	storageBuffers map[int]*wgpuBuffer
	indexBuffer    *wgpuBuffer
	shader         *wgpuShader
	framebuffer    *wgpuFramebuffer
	layout         gpu.VertexLayout

	// state is the fixed-function state of every render pipeline built by the backend.
	state     pipeline.Pipeline
	pipelines map[pipelineKey]*wgpu.RenderPipeline
	samplers  map[gpu.TextureFilter]*wgpu.Sampler
}

// wgpuRendererBackend is the surface-facing part of the WebGPU backend that the Renderer
// drives once per frame, on top of the gpu.Backend contract.
type wgpuRendererBackend interface {
	gpu.Backend

	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the next swapchain texture. Draws to the default render target
	// are only possible between BeginFrame and Present.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release frees the cached pipelines, samplers and surface resources.
	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, state pipeline.Pipeline) wgpuRendererBackend {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		instance:       wgpu.CreateInstance(nil),
		presentMode:    wgpu.PresentModeImmediate,
		sampleCount:    sampleCount,
		state:          state,
		textures:       make(map[int]boundTexture),
		vertexBuffers:  make(map[int]*wgpuBuffer),
		uniformBuffers: make(map[int]*wgpuBuffer),
		storageBuffers: make(map[int]*wgpuBuffer),
		pipelines:      make(map[pipelineKey]*wgpu.RenderPipeline),
		samplers:       make(map[gpu.TextureFilter]*wgpu.Sampler),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	// The batch shader samples one texture per slot, above the WebGPU default of 16.
	limits := wgpu.DefaultLimits()
	limits.MaxSampledTexturesPerShaderStage = maxSampledTextures

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}

	count := uint32(b.sampleCount)
	if count > 1 {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		view, err := b.createAttachmentView("MSAA Texture", width, height, b.surfaceFormat, count)
		if err != nil {
			panic(err)
		}
		b.msaaTextureView = view
	}

	// Depth texture sample count must match the color attachment.
	view, err := b.createAttachmentView("Depth Texture", width, height, screenDepthFormat, count)
	if err != nil {
		panic(err)
	}
	b.depthTextureView = view
}

func (b *wgpuRendererBackendImpl) createAttachmentView(label string, width, height int, format wgpu.TextureFormat, samples uint32) (*wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	return view, nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) SetViewport(width, height int) {
	b.ConfigureSurface(width, height)
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Acquiring twice without presenting is a surface validation error in wgpu-native.
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, key)
	}
	for filter, s := range b.samplers {
		s.Release()
		delete(b.samplers, filter)
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
}

func (b *wgpuRendererBackendImpl) BindTexture(unit int, tex gpu.Texture2D, usage gpu.TextureUsage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.textures[unit] = boundTexture{tex: tex.Native().(*wgpuTexture), usage: usage}
}

func (b *wgpuRendererBackendImpl) UnbindTexture(unit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.textures, unit)
}

func (b *wgpuRendererBackendImpl) BindVertexBuffer(slot int, buf gpu.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vertexBuffers[slot] = buf.Native().(*wgpuBuffer)
}

func (b *wgpuRendererBackendImpl) UnbindVertexBuffer(slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.vertexBuffers, slot)
}

func (b *wgpuRendererBackendImpl) BindIndexBuffer(buf gpu.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.indexBuffer = buf.Native().(*wgpuBuffer)
}

func (b *wgpuRendererBackendImpl) UnbindIndexBuffer() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.indexBuffer = nil
}

func (b *wgpuRendererBackendImpl) BindUniformBuffer(binding int, buf gpu.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uniformBuffers[binding] = buf.Native().(*wgpuBuffer)
}

func (b *wgpuRendererBackendImpl) UnbindUniformBuffer(binding int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.uniformBuffers, binding)
}

func (b *wgpuRendererBackendImpl) BindStorageBuffer(binding int, buf gpu.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.storageBuffers[binding] = buf.Native().(*wgpuBuffer)
}

func (b *wgpuRendererBackendImpl) UnbindStorageBuffer(binding int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.storageBuffers, binding)
}

func (b *wgpuRendererBackendImpl) BindShader(sh gpu.Shader) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shader = sh.Native().(*wgpuShader)
}

func (b *wgpuRendererBackendImpl) UnbindShader() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shader = nil
}

func (b *wgpuRendererBackendImpl) BindFramebuffer(fb gpu.Framebuffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framebuffer = fb.Native().(*wgpuFramebuffer)
}

func (b *wgpuRendererBackendImpl) UnbindFramebuffer() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framebuffer = nil
}

func (b *wgpuRendererBackendImpl) BindVertexLayout(layout gpu.VertexLayout) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.layout = layout
}

func (b *wgpuRendererBackendImpl) UnbindVertexLayout() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.layout = gpu.VertexLayout{}
}

func (b *wgpuRendererBackendImpl) Clear(state gpu.ClearState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !state.ClearColor && !state.ClearDepth {
		return
	}
	t, ok := b.currentTarget()
	if !ok {
		common.Logger().Warn("clear of the screen outside of a frame")
		return
	}
	b.submitPass(t, &state, func(*wgpu.RenderPassEncoder) {})
}

func (b *wgpuRendererBackendImpl) DrawIndexed(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if count <= 0 {
		return
	}
	if b.shader == nil || b.shader.compute {
		common.Logger().Warn("draw without a bound render shader")
		return
	}
	if b.indexBuffer == nil || len(b.vertexBuffers) == 0 {
		common.Logger().Warn("draw without bound index and vertex buffers")
		return
	}
	t, ok := b.currentTarget()
	if !ok {
		common.Logger().Warn("draw to the screen outside of a frame")
		return
	}

	pipeline, err := b.renderPipeline(t)
	if err != nil {
		common.Logger().Error("failed to create render pipeline", "shader", b.shader.label, "err", err)
		return
	}
	groups, err := b.bindGroups(b.shader)
	if err != nil {
		common.Logger().Warn("skipping draw", "shader", b.shader.label, "err", err)
		return
	}
	defer releaseBindGroups(groups)

	b.submitPass(t, nil, func(pass *wgpu.RenderPassEncoder) {
		pass.SetPipeline(pipeline)
		for i, g := range groups {
			pass.SetBindGroup(uint32(i), g, nil)
		}
		for slot, vb := range b.vertexBuffers {
			pass.SetVertexBuffer(uint32(slot), vb.buf, 0, wgpu.WholeSize)
		}
		pass.SetIndexBuffer(b.indexBuffer.buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(count), 1, 0, 0, 0)
	})
}

func (b *wgpuRendererBackendImpl) Dispatch(x, y, z uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shader == nil || !b.shader.compute {
		common.Logger().Warn("dispatch without a bound compute shader")
		return
	}
	groups, err := b.bindGroups(b.shader)
	if err != nil {
		common.Logger().Warn("skipping dispatch", "shader", b.shader.label, "err", err)
		return
	}
	defer releaseBindGroups(groups)

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		common.Logger().Error("failed to create command encoder", "err", err)
		return
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(b.shader.computePipeline)
	for i, g := range groups {
		pass.SetBindGroup(uint32(i), g, nil)
	}
	pass.DispatchWorkgroups(x, y, z)
	pass.End()
	pass.Release()

	b.submit(encoder)
}

func (b *wgpuRendererBackendImpl) submit(encoder *wgpu.CommandEncoder) {
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		common.Logger().Error("failed to finish command encoder", "err", err)
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func releaseBindGroups(groups []*wgpu.BindGroup) {
	for _, g := range groups {
		if g != nil {
			g.Release()
		}
	}
}
