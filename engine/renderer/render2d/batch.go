package render2d

import (
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
)

// batch is the CPU side of one draw call: a bounded vertex arena, a bounded index arena and
// the texture slot table. Slot 0 always holds the white texture.
type batch struct {
	vertices    []Vertex
	vertexCount int
	indices     []uint32
	indexCount  int
	slots       [MaxTextureSlots]gpu.Texture2D
	occupied    int
}

func newBatch(white gpu.Texture2D) *batch {
	b := &batch{
		vertices: make([]Vertex, MaxVertices),
		indices:  make([]uint32, MaxIndices),
	}
	b.slots[0] = white
	b.occupied = 1
	return b
}

// tryAppend interns tex and appends one shape. Indices are relative to the shape's first
// vertex. Nothing is modified when the shape does not fit; the caller flushes and retries.
func (b *batch) tryAppend(tex gpu.Texture2D, vertices []Vertex, indices []uint32) bool {
	if b.vertexCount+len(vertices) >= MaxVertices || b.indexCount+len(indices) >= MaxIndices {
		return false
	}
	slot, ok := b.pushTexture(tex)
	if !ok {
		return false
	}

	var nearest int32
	if tex.Filter() == gpu.FilterNearest {
		nearest = 1
	}
	base := uint32(b.vertexCount)
	for i, v := range vertices {
		v.TexIndex = int32(slot)
		v.Nearest = nearest
		b.vertices[b.vertexCount+i] = v
	}
	for i, idx := range indices {
		b.indices[b.indexCount+i] = base + idx
	}
	b.vertexCount += len(vertices)
	b.indexCount += len(indices)
	return true
}

// pushTexture returns the slot holding tex, interning it into the next free slot if needed.
// It reports false when tex is new and every slot is taken.
func (b *batch) pushTexture(tex gpu.Texture2D) (int, bool) {
	for i := range b.occupied {
		if b.slots[i].Equal(tex) {
			return i, true
		}
	}
	if b.occupied >= MaxTextureSlots {
		return 0, false
	}
	b.slots[b.occupied] = tex
	b.occupied++
	return b.occupied - 1, true
}

// empty reports whether the batch holds no shapes and no textures beyond the white one.
func (b *batch) empty() bool {
	return b.indexCount == 0 && b.occupied == 1
}

func (b *batch) reset() {
	for i := 1; i < b.occupied; i++ {
		b.slots[i] = gpu.Texture2D{}
	}
	b.occupied = 1
	b.vertexCount = 0
	b.indexCount = 0
}
