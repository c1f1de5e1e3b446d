// Package render2d batches 2D shapes into shared vertex and index buffers and draws each batch
// with a single indexed draw call.
package render2d

import (
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/wgsl"
)

// Context is the rendering context a Renderer2D draws through. renderer.Renderer satisfies it.
type Context interface {
	Backend() gpu.Backend
	Cache() *binding.Cache
	DrawIndexed(count int)
}

// Stats counts the work submitted since the last ResetStats.
type Stats struct {
	DrawCalls int
	Triangles int
}

var (
	quadIndices = []uint32{0, 1, 2, 2, 3, 0}
	triIndices  = []uint32{0, 1, 2}
)

type renderer2D struct {
	mu *sync.Mutex

	ctx         Context
	initialized bool
	filter      gpu.TextureFilter

	batch        *batch
	white        gpu.Texture2D
	shader       gpu.Shader
	layout       gpu.VertexLayout
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	cameraBuffer gpu.Buffer
	viewProj     common.Mat4

	stats Stats
}

// Renderer2D draws rectangles, circles, ellipses and triangles. Shapes are packed into the
// current batch until it is full or Flush is called. A shape is never split across batches.
//
// Textures submitted with a shape are referenced, not retained: they must stay alive until the
// batch holding them is flushed.
type Renderer2D interface {
	// Init creates the shader, buffers and the white texture. A second call logs a warning and
	// does nothing.
	Init()

	// Rect submits a solid axis-aligned rectangle.
	//
	// Parameters:
	//   - pos: the bottom-left corner
	//   - size: the width and height
	//   - color: the fill color
	Rect(pos, size [2]float32, color common.Color)

	// RectTextured submits a textured rectangle.
	//
	// Parameters:
	//   - pos: the bottom-left corner
	//   - size: the width and height
	//   - tex: the texture mapped over the rectangle
	//   - tint: multiplied with every texel
	RectTextured(pos, size [2]float32, tex gpu.Texture2D, tint common.Color)

	// Square submits a textured square without tint.
	//
	// Parameters:
	//   - pos: the bottom-left corner
	//   - side: the side length
	//   - tex: the texture mapped over the square
	Square(pos [2]float32, side float32, tex gpu.Texture2D)

	// Circle submits a solid circle.
	//
	// Parameters:
	//   - center: the center of the circle
	//   - radius: the radius
	//   - color: the fill color
	Circle(center [2]float32, radius float32, color common.Color)

	// CircleTextured submits a circle cut out of a texture.
	//
	// Parameters:
	//   - center: the center of the circle
	//   - radius: the radius
	//   - tex: the texture mapped over the bounding square
	//   - tint: multiplied with every texel
	CircleTextured(center [2]float32, radius float32, tex gpu.Texture2D, tint common.Color)

	// Ellipse submits a solid axis-aligned ellipse.
	//
	// Parameters:
	//   - center: the center of the ellipse
	//   - radii: the horizontal and vertical radius
	//   - color: the fill color
	Ellipse(center, radii [2]float32, color common.Color)

	// Tri submits a solid triangle.
	//
	// Parameters:
	//   - p1, p2, p3: the corners
	//   - color: the fill color
	Tri(p1, p2, p3 [2]float32, color common.Color)

	// PushTexture interns tex into the current batch.
	//
	// Parameters:
	//   - tex: the texture to intern
	//
	// Returns:
	//   - int: the batch slot holding tex
	PushTexture(tex gpu.Texture2D) int

	// Flush uploads the current batch, draws it with one indexed draw call and starts a new
	// batch. Flushing an empty batch does nothing.
	Flush()

	// SetCamera sets the view-projection matrix. The camera uniform is only uploaded when the
	// matrix differs from the last one set.
	//
	// Parameters:
	//   - viewProj: the column-major view-projection matrix
	SetCamera(viewProj common.Mat4)

	// SetCameraFrom sets the view-projection matrix of cam.
	SetCameraFrom(cam camera.Camera)

	// ResetStats zeroes the draw call and triangle counters.
	ResetStats()

	// Stats returns the counters accumulated since the last ResetStats.
	Stats() Stats

	// VertexCount returns the number of vertices in the current batch.
	VertexCount() int

	// IndexCount returns the number of indices in the current batch.
	IndexCount() int

	// OccupiedSlots returns the number of texture slots in use by the current batch, including
	// the white texture in slot 0.
	OccupiedSlots() int

	// WhiteTexture returns the 1x1 white texture in slot 0.
	WhiteTexture() gpu.Texture2D

	// Release frees every GPU resource the renderer owns. Init may be called again afterwards.
	Release()
}

var _ Renderer2D = &renderer2D{}

// NewRenderer2D creates a Renderer2D drawing through ctx. Init must be called before shapes
// are submitted.
//
// Parameters:
//   - ctx: the rendering context
//   - options: variadic list of Renderer2DBuilderOption functions
//
// Returns:
//   - Renderer2D: the new renderer
func NewRenderer2D(ctx Context, options ...Renderer2DBuilderOption) Renderer2D {
	r := &renderer2D{
		mu:       &sync.Mutex{},
		ctx:      ctx,
		filter:   gpu.FilterLinear,
		viewProj: common.Identity(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer2D) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		common.Logger().Warn("render2d: already initialized")
		return
	}

	b := r.ctx.Backend()
	source, err := shaderSource()
	if err != nil {
		common.Logger().Error("render2d: failed to expand shader", "err", err)
		return
	}
	r.layout = gpu.VertexLayoutFrom[Vertex]()
	r.shader = gpu.NewShaderFromDescriptor(b, gpu.ShaderDescriptor{
		Label:          "render2d quad",
		VertexSource:   source,
		FragmentSource: source,
	}, r.layout)
	if !r.shader.IsInit() {
		r.layout.Release()
		common.Logger().Error("render2d: batch shader is unavailable")
		return
	}
	r.white = gpu.NewRGBATexture(b, 1, 1, []byte{0xFF, 0xFF, 0xFF, 0xFF}, r.filter)
	r.vertexBuffer = gpu.NewVertexBuffer[Vertex](b, "render2d vertices", MaxVertices)
	r.indexBuffer = gpu.NewIndexBuffer(b, "render2d indices", MaxIndices)
	uniform := camera.GPUCameraUniform{ViewProj: r.viewProj}
	r.cameraBuffer = gpu.NewUniformBuffer(b, "render2d camera", &uniform)

	r.shader.SetBuffer("camera", r.cameraBuffer)

	r.batch = newBatch(r.white)
	r.initialized = true
}

func shaderSource() (string, error) {
	pp := wgsl.NewPreProcessor()
	pp.Register("vertex2d", GPUVertexSource)
	pp.Register("texture_slots", textureSlotsSource())
	return pp.Process(quadShaderSource)
}

func (r *renderer2D) Rect(pos, size [2]float32, color common.Color) {
	r.quad(pos, size, r.white, color, false)
}

func (r *renderer2D) RectTextured(pos, size [2]float32, tex gpu.Texture2D, tint common.Color) {
	r.quad(pos, size, tex, tint, false)
}

func (r *renderer2D) Square(pos [2]float32, side float32, tex gpu.Texture2D) {
	r.quad(pos, [2]float32{side, side}, tex, common.ColorWhite, false)
}

func (r *renderer2D) Circle(center [2]float32, radius float32, color common.Color) {
	r.Ellipse(center, [2]float32{radius, radius}, color)
}

func (r *renderer2D) CircleTextured(center [2]float32, radius float32, tex gpu.Texture2D, tint common.Color) {
	pos := [2]float32{center[0] - radius, center[1] - radius}
	r.quad(pos, [2]float32{2 * radius, 2 * radius}, tex, tint, true)
}

func (r *renderer2D) Ellipse(center, radii [2]float32, color common.Color) {
	pos := [2]float32{center[0] - radii[0], center[1] - radii[1]}
	r.quad(pos, [2]float32{2 * radii[0], 2 * radii[1]}, r.white, color, true)
}

func (r *renderer2D) Tri(p1, p2, p3 [2]float32, color common.Color) {
	c := color.Normalized()
	vertices := [3]Vertex{
		{Position: p1, UV: [2]float32{0, 0}, Color: c},
		{Position: p2, UV: [2]float32{1, 0}, Color: c},
		{Position: p3, UV: [2]float32{0.5, 1}, Color: c},
	}
	r.submit(r.white, vertices[:], triIndices)
}

func (r *renderer2D) quad(pos, size [2]float32, tex gpu.Texture2D, tint common.Color, ellipse bool) {
	c := tint.Normalized()
	var flag int32
	if ellipse {
		flag = 1
	}
	x0, y0 := pos[0], pos[1]
	x1, y1 := pos[0]+size[0], pos[1]+size[1]
	vertices := [4]Vertex{
		{Position: [2]float32{x0, y0}, UV: [2]float32{0, 0}, Color: c, IsEllipse: flag},
		{Position: [2]float32{x1, y0}, UV: [2]float32{1, 0}, Color: c, IsEllipse: flag},
		{Position: [2]float32{x1, y1}, UV: [2]float32{1, 1}, Color: c, IsEllipse: flag},
		{Position: [2]float32{x0, y1}, UV: [2]float32{0, 1}, Color: c, IsEllipse: flag},
	}
	r.submit(tex, vertices[:], quadIndices)
}

func (r *renderer2D) submit(tex gpu.Texture2D, vertices []Vertex, indices []uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		common.Assert(false, "render2d: shape submitted before Init")
		return
	}
	if !tex.IsInit() {
		common.Assert(false, "render2d: shape submitted with uninitialized texture")
		return
	}
	if r.batch.tryAppend(tex, vertices, indices) {
		return
	}
	r.flush()
	if !r.batch.tryAppend(tex, vertices, indices) {
		common.Assert(false, "render2d: shape does not fit an empty batch")
	}
}

func (r *renderer2D) PushTexture(tex gpu.Texture2D) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized || !tex.IsInit() {
		common.Assert(false, "render2d: PushTexture before Init or with uninitialized texture")
		return 0
	}
	if slot, ok := r.batch.pushTexture(tex); ok {
		return slot
	}
	r.flush()
	slot, ok := r.batch.pushTexture(tex)
	common.Assert(ok, "render2d: texture does not fit an empty slot table")
	return slot
}

func (r *renderer2D) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flush()
}

func (r *renderer2D) flush() {
	if !r.initialized || r.batch.empty() {
		return
	}
	bt := r.batch
	if bt.indexCount == 0 {
		// Only pushed textures: nothing to draw, but the slot table must be freed.
		bt.reset()
		return
	}

	r.vertexBuffer.SetData(0, common.SliceToBytes(bt.vertices[:bt.vertexCount]))
	r.indexBuffer.SetData(0, common.SliceToBytes(bt.indices[:bt.indexCount]))

	cache := r.ctx.Cache()
	cache.BindShader(r.shader)
	cache.BindIndexBuffer(r.indexBuffer)
	cache.BindVertexBuffer(r.vertexBuffer, 0)
	for i := range MaxTextureSlots {
		tex := r.white
		if i < bt.occupied {
			tex = bt.slots[i]
		} else if bound := cache.BoundTexture(i); sampleable(bound) {
			// Units past the occupied slots are never sampled; any live color texture
			// completes the bind group.
			continue
		}
		cache.BindTexture(tex, i, gpu.TextureUsageSampler)
	}
	r.ctx.DrawIndexed(bt.indexCount)

	r.stats.DrawCalls++
	r.stats.Triangles += bt.indexCount / 3
	bt.reset()
}

func sampleable(tex gpu.Texture2D) bool {
	return tex.IsInit() && tex.Format().IsColor() && tex.Usage()&gpu.TextureUsageSampler != 0
}

func (r *renderer2D) SetCamera(viewProj common.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if viewProj == r.viewProj {
		return
	}
	r.viewProj = viewProj
	if !r.initialized {
		return
	}
	uniform := camera.GPUCameraUniform{ViewProj: viewProj}
	r.cameraBuffer.SetData(0, uniform.Marshal())
}

func (r *renderer2D) SetCameraFrom(cam camera.Camera) {
	r.SetCamera(cam.ViewProjectionMatrix())
}

func (r *renderer2D) ResetStats() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = Stats{}
}

func (r *renderer2D) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer2D) VertexCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batch == nil {
		return 0
	}
	return r.batch.vertexCount
}

func (r *renderer2D) IndexCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batch == nil {
		return 0
	}
	return r.batch.indexCount
}

func (r *renderer2D) OccupiedSlots() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batch == nil {
		return 0
	}
	return r.batch.occupied
}

func (r *renderer2D) WhiteTexture() gpu.Texture2D {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.white
}

func (r *renderer2D) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return
	}
	cache := r.ctx.Cache()
	if cache.BoundShader().Equal(r.shader) {
		cache.UnbindShader()
	}
	r.shader.Release()
	r.vertexBuffer.Release()
	r.indexBuffer.Release()
	r.cameraBuffer.Release()
	r.white.Release()
	r.layout.Release()
	r.batch = nil
	r.initialized = false
}
