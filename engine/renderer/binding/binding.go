// Package binding tracks which GPU objects are bound to each slot of a backend and drops
// bind calls that would not change anything.
package binding

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
)

type boundTexture struct {
	tex   gpu.Texture2D
	usage gpu.TextureUsage
}

// Cache sits in front of a gpu.Backend and forwards only state changes. It is not safe for
// concurrent use; one Cache belongs to one rendering goroutine.
//
// The cache stores handles without taking references, so a handle must outlive its binding
// or be unbound before it is released.
type Cache struct {
	backend gpu.Backend

	textures       map[int]boundTexture
	vertexBuffers  map[int]gpu.Buffer
	uniformBuffers map[int]gpu.Buffer
	storageBuffers map[int]gpu.Buffer
	indexBuffer    gpu.Buffer
	shader         gpu.Shader
	framebuffer    gpu.Framebuffer
	layout         gpu.VertexLayout
}

// New creates an empty cache over backend.
func New(backend gpu.Backend) *Cache {
	c := &Cache{backend: backend}
	c.Reset()
	return c
}

// Backend returns the backend the cache forwards to.
func (c *Cache) Backend() gpu.Backend {
	return c.backend
}

// Reset forgets all recorded bindings without issuing any backend calls.
func (c *Cache) Reset() {
	c.textures = make(map[int]boundTexture)
	c.vertexBuffers = make(map[int]gpu.Buffer)
	c.uniformBuffers = make(map[int]gpu.Buffer)
	c.storageBuffers = make(map[int]gpu.Buffer)
	c.indexBuffer = gpu.Buffer{}
	c.shader = gpu.Shader{}
	c.framebuffer = gpu.Framebuffer{}
	c.layout = gpu.VertexLayout{}
}

// BindTexture binds tex at a texture unit with the given access.
//
// Parameters:
//   - tex: the texture, must be initialized
//   - unit: the texture unit
//   - usage: how the bound shader accesses the texture
func (c *Cache) BindTexture(tex gpu.Texture2D, unit int, usage gpu.TextureUsage) {
	if !tex.IsInit() {
		common.Assert(false, "bind of uninitialized texture at unit %d", unit)
		return
	}
	want := boundTexture{tex: tex, usage: usage}
	if cur, ok := c.textures[unit]; ok && cur == want {
		return
	}
	c.backend.BindTexture(unit, tex, usage)
	c.textures[unit] = want
}

func (c *Cache) UnbindTexture(unit int) {
	delete(c.textures, unit)
	c.backend.UnbindTexture(unit)
}

// BoundTexture returns the texture bound at unit, uninitialized if none.
func (c *Cache) BoundTexture(unit int) gpu.Texture2D {
	return c.textures[unit].tex
}

// BindVertexBuffer binds buf at a vertex buffer slot.
func (c *Cache) BindVertexBuffer(buf gpu.Buffer, slot int) {
	if !buf.IsInit() {
		common.Assert(false, "bind of uninitialized vertex buffer at slot %d", slot)
		return
	}
	if cur, ok := c.vertexBuffers[slot]; ok && cur == buf {
		return
	}
	c.backend.BindVertexBuffer(slot, buf)
	c.vertexBuffers[slot] = buf
}

func (c *Cache) UnbindVertexBuffer(slot int) {
	delete(c.vertexBuffers, slot)
	c.backend.UnbindVertexBuffer(slot)
}

// BoundVertexBuffer returns the buffer bound at slot, uninitialized if none.
func (c *Cache) BoundVertexBuffer(slot int) gpu.Buffer {
	return c.vertexBuffers[slot]
}

// BindIndexBuffer binds buf as the index buffer.
func (c *Cache) BindIndexBuffer(buf gpu.Buffer) {
	if !buf.IsInit() {
		common.Assert(false, "bind of uninitialized index buffer")
		return
	}
	if c.indexBuffer == buf {
		return
	}
	c.backend.BindIndexBuffer(buf)
	c.indexBuffer = buf
}

func (c *Cache) UnbindIndexBuffer() {
	c.indexBuffer = gpu.Buffer{}
	c.backend.UnbindIndexBuffer()
}

func (c *Cache) BoundIndexBuffer() gpu.Buffer {
	return c.indexBuffer
}

// BindUniformBuffer binds buf at a uniform buffer binding point.
func (c *Cache) BindUniformBuffer(buf gpu.Buffer, binding int) {
	if !buf.IsInit() {
		common.Assert(false, "bind of uninitialized uniform buffer at %d", binding)
		return
	}
	if cur, ok := c.uniformBuffers[binding]; ok && cur == buf {
		return
	}
	c.backend.BindUniformBuffer(binding, buf)
	c.uniformBuffers[binding] = buf
}

func (c *Cache) UnbindUniformBuffer(binding int) {
	delete(c.uniformBuffers, binding)
	c.backend.UnbindUniformBuffer(binding)
}

// BindStorageBuffer binds buf at a storage buffer binding point.
func (c *Cache) BindStorageBuffer(buf gpu.Buffer, binding int) {
	if !buf.IsInit() {
		common.Assert(false, "bind of uninitialized storage buffer at %d", binding)
		return
	}
	if cur, ok := c.storageBuffers[binding]; ok && cur == buf {
		return
	}
	c.backend.BindStorageBuffer(binding, buf)
	c.storageBuffers[binding] = buf
}

func (c *Cache) UnbindStorageBuffer(binding int) {
	delete(c.storageBuffers, binding)
	c.backend.UnbindStorageBuffer(binding)
}

// BindShader binds sh, then the buffers and textures recorded on it, then its vertex
// layout unless it is a compute shader. The follow-up binds go through the cache, so
// inputs that are already bound are skipped even when the shader itself changes.
//
// Parameters:
//   - sh: the shader, must be initialized
func (c *Cache) BindShader(sh gpu.Shader) {
	if !sh.IsInit() {
		common.Assert(false, "bind of uninitialized shader")
		return
	}
	if c.shader != sh {
		c.backend.BindShader(sh)
		c.shader = sh
	}
	for _, in := range sh.Buffers() {
		switch in.Kind {
		case gpu.ResourceUniformBuffer:
			c.BindUniformBuffer(in.Buffer, in.Slot)
		case gpu.ResourceStorageBuffer:
			c.BindStorageBuffer(in.Buffer, in.Slot)
		}
	}
	for _, in := range sh.Textures() {
		c.BindTexture(in.Texture, in.Unit, in.Usage)
	}
	if !sh.IsCompute() && sh.Layout().IsInit() {
		c.BindVertexLayout(sh.Layout())
	}
}

func (c *Cache) UnbindShader() {
	c.shader = gpu.Shader{}
	c.backend.UnbindShader()
}

func (c *Cache) BoundShader() gpu.Shader {
	return c.shader
}

// BindFramebuffer makes fb the render target.
func (c *Cache) BindFramebuffer(fb gpu.Framebuffer) {
	if !fb.IsInit() {
		common.Assert(false, "bind of uninitialized framebuffer")
		return
	}
	if c.framebuffer == fb {
		return
	}
	c.backend.BindFramebuffer(fb)
	c.framebuffer = fb
}

// UnbindFramebuffer restores the default render target.
func (c *Cache) UnbindFramebuffer() {
	c.framebuffer = gpu.Framebuffer{}
	c.backend.UnbindFramebuffer()
}

func (c *Cache) BoundFramebuffer() gpu.Framebuffer {
	return c.framebuffer
}

func (c *Cache) BindVertexLayout(l gpu.VertexLayout) {
	if !l.IsInit() {
		common.Assert(false, "bind of uninitialized vertex layout")
		return
	}
	if c.layout == l {
		return
	}
	c.backend.BindVertexLayout(l)
	c.layout = l
}

func (c *Cache) UnbindVertexLayout() {
	c.layout = gpu.VertexLayout{}
	c.backend.UnbindVertexLayout()
}

func (c *Cache) BoundVertexLayout() gpu.VertexLayout {
	return c.layout
}
