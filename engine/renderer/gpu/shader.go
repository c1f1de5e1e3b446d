package gpu

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy2d/common"
)

// BufferInput is a buffer recorded on a shader for one of its named buffer inputs.
type BufferInput struct {
	Name   string
	Kind   ResourceKind
	Slot   int
	Buffer Buffer
}

// TextureInput is a texture recorded on a shader for one of its named texture inputs.
type TextureInput struct {
	Name    string
	Unit    int
	Texture Texture2D
	Usage   TextureUsage
}

type shader struct {
	resource
	label      string
	reflection Reflection
	layout     VertexLayout
	compute    bool
	buffers    map[string]BufferInput
	textures   map[string]TextureInput
}

// Shader is a handle to a compiled shader program together with the buffers and textures
// recorded for its inputs. The zero value is uninitialized.
type Shader struct {
	s *shader
}

// NewShader compiles a render program. Compilation failures are logged as warnings and
// yield an uninitialized handle.
//
// Parameters:
//   - b: the backend to compile on
//   - vertexSrc: the vertex stage source
//   - fragmentSrc: the fragment stage source, may equal vertexSrc for single-module sources
//   - layout: the vertex layout the program consumes
//
// Returns:
//   - Shader: the compiled program, uninitialized on failure
func NewShader(b Backend, vertexSrc, fragmentSrc string, layout VertexLayout) Shader {
	return newShader(b, ShaderDescriptor{
		Label:          "shader",
		VertexSource:   vertexSrc,
		FragmentSource: fragmentSrc,
	}, layout)
}

// NewComputeShader compiles a compute-only program.
func NewComputeShader(b Backend, src string) Shader {
	return newShader(b, ShaderDescriptor{Label: "compute", ComputeSource: src}, VertexLayout{})
}

// NewShaderFromDescriptor compiles a program described by desc.
func NewShaderFromDescriptor(b Backend, desc ShaderDescriptor, layout VertexLayout) Shader {
	return newShader(b, desc, layout)
}

func newShader(b Backend, desc ShaderDescriptor, layout VertexLayout) Shader {
	native, refl, err := b.CreateShader(desc)
	if err != nil {
		common.Logger().Warn("failed to compile shader", "label", desc.Label, "err", err)
		return Shader{}
	}
	s := &shader{
		label:      desc.Label,
		reflection: refl,
		compute:    desc.IsCompute(),
		buffers:    make(map[string]BufferInput),
		textures:   make(map[string]TextureInput),
	}
	if !s.compute {
		s.layout = layout.Clone()
	}
	s.init(b, native, func(native any) {
		b.ReleaseShader(native)
		for _, in := range s.buffers {
			in.Buffer.Release()
		}
		for _, in := range s.textures {
			in.Texture.Release()
		}
		s.layout.Release()
		s.buffers = nil
		s.textures = nil
	})
	return Shader{s: s}
}

func (s Shader) IsInit() bool {
	return s.s != nil && s.s.alive()
}

func (s Shader) ID() uint64 {
	if s.s == nil {
		return 0
	}
	return s.s.id
}

func (s Shader) Equal(other Shader) bool {
	return s.s == other.s
}

func (s Shader) Clone() Shader {
	if s.s != nil {
		s.s.retain()
	}
	return s
}

// Release drops one reference. The program and its recorded inputs are released with
// the last reference.
func (s Shader) Release() {
	if s.s != nil {
		s.s.drop()
	}
}

func (s Shader) Native() any {
	if s.s == nil {
		return nil
	}
	return s.s.native
}

func (s Shader) IsCompute() bool {
	return s.s != nil && s.s.compute
}

func (s Shader) Layout() VertexLayout {
	if s.s == nil {
		return VertexLayout{}
	}
	return s.s.layout
}

func (s Shader) Reflection() Reflection {
	if s.s == nil {
		return Reflection{}
	}
	return s.s.reflection
}

// WorkgroupSize returns the declared workgroup size of a compute program.
func (s Shader) WorkgroupSize() [3]uint32 {
	return s.Reflection().WorkgroupSize
}

// SetBuffer records buf for the named uniform or storage input. The buffer is bound
// whenever the shader is bound. Unknown names are logged and ignored.
//
// Parameters:
//   - name: the buffer variable name declared in the shader
//   - buf: the buffer to bind for it
//
// Returns:
//   - bool: false if the shader declares no buffer input with that name
func (s Shader) SetBuffer(name string, buf Buffer) bool {
	if !s.IsInit() || !buf.IsInit() {
		common.Assert(false, "SetBuffer(%q) with uninitialized shader or buffer", name)
		return false
	}
	info, ok := s.s.reflection.Lookup(name)
	if !ok || !info.Kind.IsBuffer() {
		common.Logger().Warn("could not find buffer input in shader", "name", name, "shader", s.s.label)
		return false
	}
	if info.Size > 0 && buf.Size() < info.Size {
		common.Assert(false, "buffer %q is %d bytes, shader input %q needs %d", buf.Descriptor().Label, buf.Size(), name, info.Size)
		return false
	}
	if old, ok := s.s.buffers[name]; ok {
		old.Buffer.Release()
	}
	s.s.buffers[name] = BufferInput{Name: name, Kind: info.Kind, Slot: info.Slot, Buffer: buf.Clone()}
	return true
}

// SetTexture records tex for the named texture input.
//
// Parameters:
//   - name: the texture variable name declared in the shader
//   - tex: the texture to bind for it
//   - usage: how the shader accesses the texture
//
// Returns:
//   - bool: false if the shader declares no texture input with that name
func (s Shader) SetTexture(name string, tex Texture2D, usage TextureUsage) bool {
	if !s.IsInit() || !tex.IsInit() {
		common.Assert(false, "SetTexture(%q) with uninitialized shader or texture", name)
		return false
	}
	info, ok := s.s.reflection.Lookup(name)
	if !ok || !info.Kind.IsTexture() {
		common.Logger().Warn("could not find texture input in shader", "name", name, "shader", s.s.label)
		return false
	}
	if old, ok := s.s.textures[name]; ok {
		old.Texture.Release()
	}
	s.s.textures[name] = TextureInput{Name: name, Unit: info.Slot, Texture: tex.Clone(), Usage: usage}
	return true
}

// UniformBuffer returns the buffer recorded for a uniform input.
func (s Shader) UniformBuffer(name string) (Buffer, bool) {
	return s.recordedBuffer(name, ResourceUniformBuffer)
}

// StorageBuffer returns the buffer recorded for a storage input.
func (s Shader) StorageBuffer(name string) (Buffer, bool) {
	return s.recordedBuffer(name, ResourceStorageBuffer)
}

func (s Shader) recordedBuffer(name string, kind ResourceKind) (Buffer, bool) {
	if s.s == nil {
		return Buffer{}, false
	}
	in, ok := s.s.buffers[name]
	if !ok || in.Kind != kind {
		return Buffer{}, false
	}
	return in.Buffer, true
}

// Buffers returns the recorded buffer inputs ordered by slot.
func (s Shader) Buffers() []BufferInput {
	if s.s == nil {
		return nil
	}
	out := make([]BufferInput, 0, len(s.s.buffers))
	for _, in := range s.s.buffers {
		out = append(out, in)
	}
	slices.SortFunc(out, func(a, b BufferInput) int { return a.Slot - b.Slot })
	return out
}

// Textures returns the recorded texture inputs ordered by unit.
func (s Shader) Textures() []TextureInput {
	if s.s == nil {
		return nil
	}
	out := make([]TextureInput, 0, len(s.s.textures))
	for _, in := range s.s.textures {
		out = append(out, in)
	}
	slices.SortFunc(out, func(a, b TextureInput) int { return a.Unit - b.Unit })
	return out
}

func (s Shader) String() string {
	if s.s == nil {
		return "Shader(nil)"
	}
	return fmt.Sprintf("Shader(%d, %q)", s.s.id, s.s.label)
}
