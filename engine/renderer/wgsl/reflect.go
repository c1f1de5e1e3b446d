package wgsl

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	ErrNoVertexEntry   = errors.New("no @vertex entry point")
	ErrNoFragmentEntry = errors.New("no @fragment entry point")
	ErrNoComputeEntry  = errors.New("no @compute entry point")
)

// Load reflects every stage of a shader program and merges the results.
//
// Parameters:
//   - desc: the program sources
//
// Returns:
//   - Module: the merged reflection
//   - error: if a required entry point is missing
func Load(desc gpu.ShaderDescriptor) (Module, error) {
	if desc.IsCompute() {
		m := Parse(desc.ComputeSource, wgpu.ShaderStageCompute)
		if m.ComputeEntry == "" {
			return Module{}, fmt.Errorf("shader %q: %w", desc.Label, ErrNoComputeEntry)
		}
		return m, nil
	}

	vs := Parse(desc.VertexSource, wgpu.ShaderStageVertex)
	if vs.VertexEntry == "" {
		return Module{}, fmt.Errorf("shader %q: %w", desc.Label, ErrNoVertexEntry)
	}
	fs := Parse(desc.FragmentSource, wgpu.ShaderStageFragment)
	if fs.FragmentEntry == "" {
		return Module{}, fmt.Errorf("shader %q: %w", desc.Label, ErrNoFragmentEntry)
	}
	fs.VertexEntry = ""
	vs.FragmentEntry = ""
	return Merge(vs, fs), nil
}

// Reflect is Load followed by Module.Reflection.
func Reflect(desc gpu.ShaderDescriptor) (gpu.Reflection, error) {
	m, err := Load(desc)
	if err != nil {
		return gpu.Reflection{}, err
	}
	return m.Reflection(), nil
}

// Reflection converts the module to the backend-neutral reflection. Textures, buffers
// and samplers each get consecutive slots in (group, binding) order.
func (m Module) Reflection() gpu.Reflection {
	r := gpu.Reflection{
		VertexEntry:   m.VertexEntry,
		FragmentEntry: m.FragmentEntry,
		ComputeEntry:  m.ComputeEntry,
		WorkgroupSize: m.WorkgroupSize,
	}
	var textures, buffers, samplers int
	for _, b := range m.Bindings {
		info := gpu.ResourceInfo{
			Name:    b.Name,
			Kind:    b.Kind,
			Group:   b.Group,
			Binding: b.Binding,
			Size:    b.Size,
		}
		switch {
		case b.Kind.IsTexture():
			info.Slot = textures
			textures++
		case b.Kind.IsBuffer():
			info.Slot = buffers
			buffers++
		default:
			info.Slot = samplers
			samplers++
		}
		r.Resources = append(r.Resources, info)
	}
	return r
}
