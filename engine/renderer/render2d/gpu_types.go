package render2d

import (
	_ "embed"
	"fmt"
	"strings"
	"unsafe"
)

// Batch capacities. A quad takes four vertices and six indices.
const (
	MaxQuads        = 5000
	MaxVertices     = MaxQuads * 4
	MaxIndices      = MaxQuads * 6
	MaxTextureSlots = 32
)

// GPUVertexSource is the WGSL definition of the VertexInput struct matching Vertex.
//
//go:embed assets/vertex2d.wgsl
var GPUVertexSource string

//go:embed assets/quad.wgsl
var quadShaderSource string

// Vertex is the GPU layout of one batched vertex (44 bytes).
type Vertex struct {
	Position  [2]float32 // offset  0: world position
	UV        [2]float32 // offset  8: texture coordinate, also the ellipse local coordinate
	Color     [4]float32 // offset 16: tint multiplied with the sampled texel
	TexIndex  int32      // offset 32: batch texture slot
	IsEllipse int32      // offset 36: 1 discards fragments outside the inscribed ellipse
	Nearest   int32      // offset 40: 1 samples the slot texture without filtering
}

// Size returns the size of the Vertex struct in bytes.
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// textureSlotsSource declares one texture binding per batch slot, a linear and a nearest
// sampler, and a sample_slot function selecting between them. Per-fragment indices are
// non-uniform, so sampling uses an explicit level.
func textureSlotsSource() string {
	var sb strings.Builder
	for i := range MaxTextureSlots {
		fmt.Fprintf(&sb, "@group(1) @binding(%d) var slot_%d: texture_2d<f32>;\n", i, i)
	}
	sb.WriteString("@group(2) @binding(0) var slot_sampler_linear: sampler;\n")
	sb.WriteString("@group(2) @binding(1) var slot_sampler_nearest: sampler;\n")

	sb.WriteString("\nfn sample_slot_with(index: i32, s: sampler, uv: vec2<f32>) -> vec4<f32> {\n    switch index {\n")
	for i := 1; i < MaxTextureSlots; i++ {
		fmt.Fprintf(&sb, "        case %d: { return textureSampleLevel(slot_%d, s, uv, 0.0); }\n", i, i)
	}
	sb.WriteString("        default: { return textureSampleLevel(slot_0, s, uv, 0.0); }\n    }\n}\n")

	sb.WriteString("\nfn sample_slot(index: i32, nearest: i32, uv: vec2<f32>) -> vec4<f32> {\n")
	sb.WriteString("    if (nearest == 1) {\n        return sample_slot_with(index, slot_sampler_nearest, uv);\n    }\n")
	sb.WriteString("    return sample_slot_with(index, slot_sampler_linear, uv);\n}\n")
	return sb.String()
}
