package renderer

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/wgsl"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/disintegration/imaging"
)

type wgpuTexture struct {
	tex    *wgpu.Texture
	view   *wgpu.TextureView
	format wgpu.TextureFormat
	mips   uint32
	filter gpu.TextureFilter
}

type wgpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64
}

type wgpuShader struct {
	label          string
	compute        bool
	module         wgsl.Module
	resources      []gpu.ResourceInfo
	vertexModule   *wgpu.ShaderModule
	fragmentModule *wgpu.ShaderModule
	groupLayouts   []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout

	computePipeline *wgpu.ComputePipeline
}

type wgpuFramebuffer struct {
	colors []*wgpuTexture
	depth  *wgpuTexture
}

func textureFormat(f gpu.ColorFormat) wgpu.TextureFormat {
	switch f {
	case gpu.FormatD32:
		return wgpu.TextureFormatDepth32Float
	case gpu.FormatD24S8:
		return wgpu.TextureFormatDepth24PlusStencil8
	default:
		// RGB textures are stored as RGBA; WebGPU has no three-channel 8-bit format.
		return wgpu.TextureFormatRGBA8Unorm
	}
}

func mipLevels(width, height uint32) uint32 {
	return uint32(bits.Len32(max(width, height)))
}

func (b *wgpuRendererBackendImpl) CreateTexture(desc gpu.TextureDescriptor) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	usage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageRenderAttachment
	if !desc.Format.IsDepth() {
		usage |= wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc
	}
	if desc.Usage&(gpu.TextureUsageRead|gpu.TextureUsageWrite) != 0 {
		usage |= wgpu.TextureUsageStorageBinding
	}
	mips := uint32(1)
	if desc.Mipmap && !desc.Format.IsDepth() {
		mips = mipLevels(desc.Width, desc.Height)
	}
	format := textureFormat(desc.Format)

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: mips,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create texture view %q: %w", desc.Label, err)
	}
	common.Logger().Debug("created texture", "label", desc.Label, "width", desc.Width, "height", desc.Height, "mips", mips)
	return &wgpuTexture{tex: tex, view: view, format: format, mips: mips, filter: desc.Filter}, nil
}

func (b *wgpuRendererBackendImpl) WriteTexture(native any, desc gpu.TextureDescriptor, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := native.(*wgpuTexture)
	if desc.Format.IsDepth() {
		common.Logger().Error("cannot upload pixels to a depth texture", "label", desc.Label)
		return
	}
	if desc.Format == gpu.FormatR8G8B8 {
		data = expandRGB(data)
	}

	img := &image.NRGBA{
		Pix:    data,
		Stride: int(desc.Width) * 4,
		Rect:   image.Rect(0, 0, int(desc.Width), int(desc.Height)),
	}
	b.writeMip(t, 0, img)
	for level := uint32(1); level < t.mips; level++ {
		w := max(desc.Width>>level, 1)
		h := max(desc.Height>>level, 1)
		b.writeMip(t, level, imaging.Resize(img, int(w), int(h), imaging.Box))
	}
}

func (b *wgpuRendererBackendImpl) writeMip(t *wgpuTexture, level uint32, img *image.NRGBA) {
	w := uint32(img.Rect.Dx())
	h := uint32(img.Rect.Dy())
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: level,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: h,
		},
		&wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
	)
}

func expandRGB(data []byte) []byte {
	out := make([]byte, len(data)/3*4)
	for i, j := 0, 0; i+2 < len(data); i, j = i+3, j+4 {
		out[j], out[j+1], out[j+2], out[j+3] = data[i], data[i+1], data[i+2], 0xff
	}
	return out
}

func (b *wgpuRendererBackendImpl) ReleaseTexture(native any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := native.(*wgpuTexture)
	for unit, bound := range b.textures {
		if bound.tex == t {
			delete(b.textures, unit)
		}
	}
	t.view.Release()
	t.tex.Release()
}

func (b *wgpuRendererBackendImpl) CreateBuffer(desc gpu.BufferDescriptor, data []byte) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	usage := wgpu.BufferUsageCopyDst
	if desc.Type&gpu.BufferTypeVertex != 0 {
		usage |= wgpu.BufferUsageVertex
	}
	if desc.Type&gpu.BufferTypeIndexU32 != 0 {
		usage |= wgpu.BufferUsageIndex
	}
	if desc.Type&gpu.BufferTypeUniform != 0 {
		usage |= wgpu.BufferUsageUniform
	}
	if desc.Type&gpu.BufferTypeStorage != 0 {
		usage |= wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc
	}

	// Queue writes must be a multiple of four bytes.
	size := alignUp4(max(desc.Size, 4))
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             size,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", desc.Label, err)
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, padded(data))
	}
	common.Logger().Debug("created buffer", "label", desc.Label, "size", size)
	return &wgpuBuffer{buf: buf, size: size}, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(native any, offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return
	}
	buf := native.(*wgpuBuffer)
	b.queue.WriteBuffer(buf.buf, offset, padded(data))
}

func alignUp4(n uint64) uint64 {
	return (n + 3) &^ 3
}

func padded(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, alignUp4(uint64(len(data))))
	copy(out, data)
	return out
}

func (b *wgpuRendererBackendImpl) ReleaseBuffer(native any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := native.(*wgpuBuffer)
	for slot, vb := range b.vertexBuffers {
		if vb == buf {
			delete(b.vertexBuffers, slot)
		}
	}
	for slot, ub := range b.uniformBuffers {
		if ub == buf {
			delete(b.uniformBuffers, slot)
		}
	}
	for slot, sb := range b.storageBuffers {
		if sb == buf {
			delete(b.storageBuffers, slot)
		}
	}
	if b.indexBuffer == buf {
		b.indexBuffer = nil
	}
	buf.buf.Release()
}

func (b *wgpuRendererBackendImpl) CreateShader(desc gpu.ShaderDescriptor) (any, gpu.Reflection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := wgsl.Load(desc)
	if err != nil {
		return nil, gpu.Reflection{}, err
	}
	refl := module.Reflection()
	s := &wgpuShader{
		label:     desc.Label,
		compute:   desc.IsCompute(),
		module:    module,
		resources: refl.Resources,
	}

	if s.compute {
		s.vertexModule, err = b.shaderModule(desc.Label+" compute", desc.ComputeSource)
	} else {
		s.vertexModule, err = b.shaderModule(desc.Label+" vertex", desc.VertexSource)
		if err == nil {
			s.fragmentModule = s.vertexModule
			if desc.FragmentSource != desc.VertexSource {
				s.fragmentModule, err = b.shaderModule(desc.Label+" fragment", desc.FragmentSource)
			}
		}
	}
	if err != nil {
		b.releaseShader(s)
		return nil, gpu.Reflection{}, err
	}

	if err := b.createShaderLayouts(s); err != nil {
		b.releaseShader(s)
		return nil, gpu.Reflection{}, err
	}

	if s.compute {
		s.computePipeline, err = b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label:  desc.Label + " Compute Pipeline",
			Layout: s.pipelineLayout,
			Compute: wgpu.ProgrammableStageDescriptor{
				Module:     s.vertexModule,
				EntryPoint: module.ComputeEntry,
			},
		})
		if err != nil {
			b.releaseShader(s)
			return nil, gpu.Reflection{}, fmt.Errorf("create compute pipeline %q: %w", desc.Label, err)
		}
	}
	return s, refl, nil
}

func (b *wgpuRendererBackendImpl) shaderModule(label, source string) (*wgpu.ShaderModule, error) {
	if err := wgsl.Validate(source); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	m, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", label, err)
	}
	return m, nil
}

func (b *wgpuRendererBackendImpl) createShaderLayouts(s *wgpuShader) error {
	descriptors := s.module.BindGroupLayouts()
	s.groupLayouts = make([]*wgpu.BindGroupLayout, s.module.GroupCount())
	for g := range s.groupLayouts {
		desc, ok := descriptors[g]
		if !ok {
			desc = wgpu.BindGroupLayoutDescriptor{Label: fmt.Sprintf("%s group %d", s.label, g)}
		}
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		s.groupLayouts[g] = layout
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.label,
		BindGroupLayouts: s.groupLayouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout %q: %w", s.label, err)
	}
	s.pipelineLayout = layout
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseShader(native any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := native.(*wgpuShader)
	if b.shader == s {
		b.shader = nil
	}
	for key, p := range b.pipelines {
		if key.shader == s {
			p.Release()
			delete(b.pipelines, key)
		}
	}
	b.releaseShader(s)
}

func (b *wgpuRendererBackendImpl) releaseShader(s *wgpuShader) {
	if s.computePipeline != nil {
		s.computePipeline.Release()
	}
	if s.pipelineLayout != nil {
		s.pipelineLayout.Release()
	}
	for _, l := range s.groupLayouts {
		if l != nil {
			l.Release()
		}
	}
	if s.fragmentModule != nil && s.fragmentModule != s.vertexModule {
		s.fragmentModule.Release()
	}
	if s.vertexModule != nil {
		s.vertexModule.Release()
	}
}

func (b *wgpuRendererBackendImpl) CreateFramebuffer(colors []gpu.Texture2D, depth gpu.Texture2D) (any, gpu.FramebufferStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fb := &wgpuFramebuffer{}
	status := gpu.FramebufferComplete
	var w, h uint32
	for i, c := range colors {
		if i == 0 {
			w, h = c.Width(), c.Height()
		} else if c.Width() != w || c.Height() != h {
			status = gpu.FramebufferSizeMismatch
		}
		if !c.Format().IsColor() {
			status = gpu.FramebufferIncompleteAttachment
		}
		fb.colors = append(fb.colors, c.Native().(*wgpuTexture))
	}
	if depth.IsInit() {
		if len(colors) > 0 && (depth.Width() != w || depth.Height() != h) {
			status = gpu.FramebufferSizeMismatch
		}
		if !depth.Format().IsDepth() {
			status = gpu.FramebufferIncompleteAttachment
		}
		fb.depth = depth.Native().(*wgpuTexture)
	}
	if len(fb.colors) == 0 && fb.depth == nil {
		status = gpu.FramebufferMissingAttachment
	}
	return fb, status, nil
}

func (b *wgpuRendererBackendImpl) ReleaseFramebuffer(native any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framebuffer == native.(*wgpuFramebuffer) {
		b.framebuffer = nil
	}
}
