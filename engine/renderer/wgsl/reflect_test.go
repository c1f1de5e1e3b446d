package wgsl

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectAssignsSlots(t *testing.T) {
	refl, err := Reflect(gpu.ShaderDescriptor{VertexSource: quadSource, FragmentSource: quadSource})
	require.NoError(t, err)

	slots := map[string]int{}
	for _, r := range refl.Resources {
		slots[r.Name] = r.Slot
	}
	assert.Equal(t, map[string]int{"globals": 0, "particles": 1, "t0": 0, "t1": 1, "s": 0}, slots)

	info, ok := refl.BySlot(true, 1)
	require.True(t, ok)
	assert.Equal(t, "t1", info.Name)
	assert.Equal(t, 2, refl.Count(gpu.ResourceTexture))
}

func TestReflectMissingEntries(t *testing.T) {
	_, err := Reflect(gpu.ShaderDescriptor{VertexSource: "fn a() {}", FragmentSource: quadSource})
	assert.ErrorIs(t, err, ErrNoVertexEntry)

	_, err = Reflect(gpu.ShaderDescriptor{VertexSource: quadSource, FragmentSource: "fn a() {}"})
	assert.ErrorIs(t, err, ErrNoFragmentEntry)

	_, err = Reflect(gpu.ShaderDescriptor{ComputeSource: "fn a() {}"})
	assert.ErrorIs(t, err, ErrNoComputeEntry)
}

func TestLoadSplitStages(t *testing.T) {
	vs := `
@group(0) @binding(0) var<uniform> m: mat4x4<f32>;
@vertex fn v() -> @builtin(position) vec4<f32> { return vec4<f32>(); }
`
	fs := `
@group(0) @binding(1) var t: texture_2d<f32>;
@fragment fn f() -> @location(0) vec4<f32> { return vec4<f32>(); }
`
	m, err := Load(gpu.ShaderDescriptor{VertexSource: vs, FragmentSource: fs})
	require.NoError(t, err)
	assert.Equal(t, "v", m.VertexEntry)
	assert.Equal(t, "f", m.FragmentEntry)
	assert.Len(t, m.Bindings, 2)
}
