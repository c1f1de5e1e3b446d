package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderTarget is the set of attachments the next render pass writes to.
type renderTarget struct {
	colorViews  []*wgpu.TextureView
	resolveView *wgpu.TextureView
	colorFormat wgpu.TextureFormat
	depthView   *wgpu.TextureView
	depthFormat wgpu.TextureFormat
	samples     uint32
}

// pipelineKey identifies a native render pipeline. A pipeline depends on the shader, the
// vertex layout and the formats and sample count of the target it draws into.
type pipelineKey struct {
	shader      *wgpuShader
	layout      uint64
	colorFormat wgpu.TextureFormat
	colorCount  int
	depthFormat wgpu.TextureFormat
	samples     uint32
}

var vertexFormats = map[gpu.AttributeType]wgpu.VertexFormat{
	gpu.AttributeInt:    wgpu.VertexFormatSint32,
	gpu.AttributeInt2:   wgpu.VertexFormatSint32x2,
	gpu.AttributeInt3:   wgpu.VertexFormatSint32x3,
	gpu.AttributeInt4:   wgpu.VertexFormatSint32x4,
	gpu.AttributeUint:   wgpu.VertexFormatUint32,
	gpu.AttributeUint2:  wgpu.VertexFormatUint32x2,
	gpu.AttributeUint3:  wgpu.VertexFormatUint32x3,
	gpu.AttributeUint4:  wgpu.VertexFormatUint32x4,
	gpu.AttributeFloat:  wgpu.VertexFormatFloat32,
	gpu.AttributeFloat2: wgpu.VertexFormatFloat32x2,
	gpu.AttributeFloat3: wgpu.VertexFormatFloat32x3,
	gpu.AttributeFloat4: wgpu.VertexFormatFloat32x4,
}

func vertexBufferLayout(l gpu.VertexLayout) wgpu.VertexBufferLayout {
	attrs := l.Attributes()
	out := wgpu.VertexBufferLayout{
		ArrayStride: uint64(l.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  make([]wgpu.VertexAttribute, len(attrs)),
	}
	for i, a := range attrs {
		out.Attributes[i] = wgpu.VertexAttribute{
			Format:         vertexFormats[a.Type],
			Offset:         uint64(a.Offset),
			ShaderLocation: uint32(a.Location),
		}
	}
	return out
}

// currentTarget resolves the bound framebuffer, or the screen when none is bound. The
// screen is only available while a frame is acquired.
func (b *wgpuRendererBackendImpl) currentTarget() (renderTarget, bool) {
	if fb := b.framebuffer; fb != nil {
		t := renderTarget{samples: 1, depthFormat: wgpu.TextureFormatUndefined}
		for _, c := range fb.colors {
			t.colorViews = append(t.colorViews, c.view)
			t.colorFormat = c.format
		}
		if fb.depth != nil {
			t.depthView = fb.depth.view
			t.depthFormat = fb.depth.format
		}
		return t, true
	}

	if b.frameView == nil {
		return renderTarget{}, false
	}
	t := renderTarget{
		colorFormat: b.surfaceFormat,
		depthView:   b.depthTextureView,
		depthFormat: screenDepthFormat,
		samples:     uint32(b.sampleCount),
	}
	if b.msaaTextureView != nil {
		t.colorViews = []*wgpu.TextureView{b.msaaTextureView}
		t.resolveView = b.frameView
	} else {
		t.colorViews = []*wgpu.TextureView{b.frameView}
	}
	return t, true
}

// submitPass encodes one render pass on t and submits it. When clear is non-nil the
// attachments it selects are cleared as the pass loads them; otherwise their contents are kept.
func (b *wgpuRendererBackendImpl) submitPass(t renderTarget, clear *gpu.ClearState, record func(pass *wgpu.RenderPassEncoder)) {
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		common.Logger().Error("failed to create command encoder", "err", err)
		return
	}
	defer encoder.Release()

	desc := &wgpu.RenderPassDescriptor{}
	for i, view := range t.colorViews {
		att := wgpu.RenderPassColorAttachment{
			View:    view,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		if i == 0 {
			att.ResolveTarget = t.resolveView
		}
		if clear != nil && clear.ClearColor {
			c := clear.Color
			att.LoadOp = wgpu.LoadOpClear
			att.ClearValue = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
		}
		desc.ColorAttachments = append(desc.ColorAttachments, att)
	}
	if t.depthView != nil {
		depth := &wgpu.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     wgpu.LoadOpLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
		if clear != nil && clear.ClearDepth {
			depth.DepthLoadOp = wgpu.LoadOpClear
		}
		if t.depthFormat == wgpu.TextureFormatDepth24PlusStencil8 {
			depth.StencilLoadOp = depth.DepthLoadOp
			depth.StencilStoreOp = wgpu.StoreOpStore
		}
		desc.DepthStencilAttachment = depth
	}

	pass := encoder.BeginRenderPass(desc)
	record(pass)
	pass.End()
	pass.Release()

	b.submit(encoder)
}

// renderPipeline returns the cached pipeline for the bound shader and layout drawing into
// t, building it on first use.
func (b *wgpuRendererBackendImpl) renderPipeline(t renderTarget) (*wgpu.RenderPipeline, error) {
	s := b.shader
	key := pipelineKey{
		shader:      s,
		layout:      b.layout.ID(),
		colorFormat: t.colorFormat,
		colorCount:  len(t.colorViews),
		depthFormat: t.depthFormat,
		samples:     t.samples,
	}
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}

	buffers := s.module.VertexInputs
	if b.layout.IsInit() {
		buffers = []wgpu.VertexBufferLayout{vertexBufferLayout(b.layout)}
	}
	targets := make([]wgpu.ColorTargetState, len(t.colorViews))
	for i := range targets {
		targets[i] = b.state.ColorTarget(t.colorFormat)
	}

	p, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s %s Render Pipeline", b.state.Label(), s.label),
		Layout: s.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     s.vertexModule,
			EntryPoint: s.module.VertexEntry,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     s.fragmentModule,
			EntryPoint: s.module.FragmentEntry,
			Targets:    targets,
		},
		Primitive: b.state.Primitive(),
		Multisample: wgpu.MultisampleState{
			Count: t.samples,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: b.state.DepthStencil(t.depthFormat),
	})
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("created render pipeline", "shader", s.label, "samples", t.samples)
	b.pipelines[key] = p
	return p, nil
}

// bindGroups builds one bind group per group of s from the bound textures and buffers. A
// texture is looked up at the unit equal to its slot, a buffer at the binding point equal
// to its slot. A sampler named *_nearest or *_linear always uses that filter; any other
// sampler uses the filter of the texture bound at its own slot.
func (b *wgpuRendererBackendImpl) bindGroups(s *wgpuShader) ([]*wgpu.BindGroup, error) {
	entries := make([][]wgpu.BindGroupEntry, len(s.groupLayouts))
	for i, binding := range s.module.Bindings {
		info := s.resources[i]
		e := wgpu.BindGroupEntry{Binding: uint32(binding.Binding)}
		switch info.Kind {
		case gpu.ResourceUniformBuffer:
			buf, ok := b.uniformBuffers[info.Slot]
			if !ok {
				return nil, fmt.Errorf("no uniform buffer bound for %q at %d", info.Name, info.Slot)
			}
			e.Buffer, e.Size = buf.buf, wgpu.WholeSize
		case gpu.ResourceStorageBuffer:
			buf, ok := b.storageBuffers[info.Slot]
			if !ok {
				return nil, fmt.Errorf("no storage buffer bound for %q at %d", info.Name, info.Slot)
			}
			e.Buffer, e.Size = buf.buf, wgpu.WholeSize
		case gpu.ResourceTexture, gpu.ResourceStorageTexture:
			bound, ok := b.textures[info.Slot]
			if !ok {
				return nil, fmt.Errorf("no texture bound for %q at unit %d", info.Name, info.Slot)
			}
			e.TextureView = bound.tex.view
		case gpu.ResourceSampler:
			filter := gpu.FilterLinear
			if bound, ok := b.textures[info.Slot]; ok {
				filter = bound.tex.filter
			}
			sampler, err := b.sampler(samplerFilter(info.Name, filter))
			if err != nil {
				return nil, err
			}
			e.Sampler = sampler
		}
		entries[binding.Group] = append(entries[binding.Group], e)
	}

	groups := make([]*wgpu.BindGroup, len(s.groupLayouts))
	for g, layout := range s.groupLayouts {
		group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s group %d", s.label, g),
			Layout:  layout,
			Entries: entries[g],
		})
		if err != nil {
			releaseBindGroups(groups)
			return nil, fmt.Errorf("create bind group %d: %w", g, err)
		}
		groups[g] = group
	}
	return groups, nil
}

// samplerFilter resolves the filter of a sampler binding from its name, falling back to the
// filter of the texture sharing its slot.
func samplerFilter(name string, fallback gpu.TextureFilter) gpu.TextureFilter {
	switch {
	case strings.HasSuffix(name, "_nearest"):
		return gpu.FilterNearest
	case strings.HasSuffix(name, "_linear"):
		return gpu.FilterLinear
	}
	return fallback
}

func (b *wgpuRendererBackendImpl) sampler(filter gpu.TextureFilter) (*wgpu.Sampler, error) {
	if s, ok := b.samplers[filter]; ok {
		return s, nil
	}
	mode, mipMode := wgpu.FilterModeLinear, wgpu.MipmapFilterModeLinear
	if filter == gpu.FilterNearest {
		mode, mipMode = wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest
	}
	s, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Texture Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     mode,
		MinFilter:     mode,
		MipmapFilter:  mipMode,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	b.samplers[filter] = s
	return s, nil
}
