package binding_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uniformShaderSource = `
struct Camera {
    view_proj: mat4x4<f32>,
};

struct VertexInput {
    @location(0) position: vec2<f32>,
};

@group(0) @binding(0) var<uniform> camera: Camera;
@group(1) @binding(0) var diffuse: texture_2d<f32>;
@group(1) @binding(1) var diffuse_sampler: sampler;

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(in.position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return textureSample(diffuse, diffuse_sampler, vec2<f32>(0.0, 0.0));
}
`

const computeShaderSource = `
@group(0) @binding(0) var<storage, read_write> cells: array<u32>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    cells[id.x] = cells[id.x] + 1u;
}
`

func TestBindTwiceIssuesOneBackendCall(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	tex := gpu.NewColorTexture(b, 4, 4, gpu.FilterNearest)
	b.ClearCalls()

	c.BindTexture(tex, 3, gpu.TextureUsageSampler)
	c.BindTexture(tex, 3, gpu.TextureUsageSampler)

	calls := b.CallsOf(gputest.OpBindTexture)
	require.Len(t, calls, 1)
	assert.Equal(t, 3, calls[0].Slot)
	assert.Equal(t, tex, calls[0].Target)
	assert.Equal(t, tex, c.BoundTexture(3))
}

func TestBindDifferentHandleSameSlot(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	a := gpu.NewColorTexture(b, 4, 4, gpu.FilterNearest)
	other := gpu.NewColorTexture(b, 4, 4, gpu.FilterNearest)
	b.ClearCalls()

	c.BindTexture(a, 0, gpu.TextureUsageSampler)
	c.BindTexture(other, 0, gpu.TextureUsageSampler)
	c.BindTexture(other, 0, gpu.TextureUsageSampler)

	assert.Equal(t, 2, b.Count(gputest.OpBindTexture))
	assert.Equal(t, other, c.BoundTexture(0))
}

func TestBindSameTextureOtherUnitOrUsage(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	tex := gpu.NewStorageTexture(b, 4, 4, gpu.FilterNearest)
	b.ClearCalls()

	c.BindTexture(tex, 0, gpu.TextureUsageSampler)
	c.BindTexture(tex, 1, gpu.TextureUsageSampler)
	c.BindTexture(tex, 1, gpu.TextureUsageWrite)

	assert.Equal(t, 3, b.Count(gputest.OpBindTexture))
}

func TestBufferBindsAreCached(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	vb := gpu.NewVertexBuffer[[4]float32](b, "vb", 16)
	ib := gpu.NewIndexBuffer(b, "ib", 16)
	ub := gpu.NewUniformBuffer(b, "ub", &[16]float32{})
	sb := gpu.NewStorageBuffer(b, "sb", 64, nil)
	b.ClearCalls()

	for range 3 {
		c.BindVertexBuffer(vb, 0)
		c.BindIndexBuffer(ib)
		c.BindUniformBuffer(ub, 0)
		c.BindStorageBuffer(sb, 1)
	}

	assert.Equal(t, 1, b.Count(gputest.OpBindVertexBuffer))
	assert.Equal(t, 1, b.Count(gputest.OpBindIndexBuffer))
	assert.Equal(t, 1, b.Count(gputest.OpBindUniformBuffer))
	assert.Equal(t, 1, b.Count(gputest.OpBindStorageBuffer))
	assert.Equal(t, vb, c.BoundVertexBuffer(0))
	assert.Equal(t, ib, c.BoundIndexBuffer())
}

func TestUnbindClearsEntry(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	vb := gpu.NewVertexBuffer[[4]float32](b, "vb", 16)
	b.ClearCalls()

	c.BindVertexBuffer(vb, 0)
	c.UnbindVertexBuffer(0)
	assert.False(t, c.BoundVertexBuffer(0).IsInit())

	c.BindVertexBuffer(vb, 0)
	assert.Equal(t, 2, b.Count(gputest.OpBindVertexBuffer))
	assert.Equal(t, 1, b.Count(gputest.OpUnbindVertexBuffer))

	// Unbinding an empty slot still reaches the backend.
	c.UnbindTexture(7)
	c.UnbindIndexBuffer()
	assert.Equal(t, 1, b.Count(gputest.OpUnbindTexture))
	assert.Equal(t, 1, b.Count(gputest.OpUnbindIndexBuffer))
}

func TestFramebufferAndLayoutBinds(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	color := gpu.NewColorTexture(b, 8, 8, gpu.FilterLinear)
	fb := gpu.NewFramebuffer(b, []gpu.Texture2D{color}, gpu.Texture2D{})
	layout := gpu.NewVertexLayout(gpu.AttributeFloat2)
	b.ClearCalls()

	c.BindFramebuffer(fb)
	c.BindFramebuffer(fb)
	c.BindVertexLayout(layout)
	c.BindVertexLayout(layout)
	assert.Equal(t, 1, b.Count(gputest.OpBindFramebuffer))
	assert.Equal(t, 1, b.Count(gputest.OpBindVertexLayout))
	assert.Equal(t, fb, c.BoundFramebuffer())

	c.UnbindFramebuffer()
	assert.False(t, c.BoundFramebuffer().IsInit())
	c.BindFramebuffer(fb)
	assert.Equal(t, 2, b.Count(gputest.OpBindFramebuffer))
}

func TestBindShaderBindsRecordedInputs(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	layout := gpu.NewVertexLayout(gpu.AttributeFloat2)
	sh := gpu.NewShader(b, uniformShaderSource, uniformShaderSource, layout)
	require.True(t, sh.IsInit())
	ub := gpu.NewUniformBuffer(b, "camera", &[16]float32{})
	tex := gpu.NewColorTexture(b, 2, 2, gpu.FilterNearest)
	require.True(t, sh.SetBuffer("camera", ub))
	require.True(t, sh.SetTexture("diffuse", tex, gpu.TextureUsageSampler))
	b.ClearCalls()

	c.BindShader(sh)

	assert.Equal(t, []string{
		gputest.OpBindShader,
		gputest.OpBindUniformBuffer,
		gputest.OpBindTexture,
		gputest.OpBindVertexLayout,
	}, b.Ops())
	assert.Equal(t, sh, c.BoundShader())
	assert.Equal(t, layout, c.BoundVertexLayout())

	b.ClearCalls()
	c.BindShader(sh)
	assert.Empty(t, b.Calls)
}

func TestBindComputeShaderSkipsLayout(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	sh := gpu.NewComputeShader(b, computeShaderSource)
	require.True(t, sh.IsInit())
	sb := gpu.NewStorageBuffer(b, "cells", 256, nil)
	require.True(t, sh.SetBuffer("cells", sb))
	b.ClearCalls()

	c.BindShader(sh)

	assert.Equal(t, 1, b.Count(gputest.OpBindShader))
	assert.Equal(t, 1, b.Count(gputest.OpBindStorageBuffer))
	assert.Zero(t, b.Count(gputest.OpBindVertexLayout))
}

func TestResetForgetsState(t *testing.T) {
	b := gputest.New()
	c := binding.New(b)
	ib := gpu.NewIndexBuffer(b, "ib", 6)
	b.ClearCalls()

	c.BindIndexBuffer(ib)
	c.Reset()
	assert.False(t, c.BoundIndexBuffer().IsInit())
	c.BindIndexBuffer(ib)
	assert.Equal(t, 2, b.Count(gputest.OpBindIndexBuffer))
	assert.Empty(t, b.CallsOf(gputest.OpUnbindIndexBuffer))
}

func TestBindUninitializedPanics(t *testing.T) {
	if !common.AssertionsEnabled {
		t.Skip("assertions compiled out")
	}
	b := gputest.New()
	c := binding.New(b)
	common.SetLogger(nil)

	assert.Panics(t, func() { c.BindTexture(gpu.Texture2D{}, 0, gpu.TextureUsageSampler) })
	assert.Panics(t, func() { c.BindVertexBuffer(gpu.Buffer{}, 0) })
	assert.Panics(t, func() { c.BindIndexBuffer(gpu.Buffer{}) })
	assert.Panics(t, func() { c.BindShader(gpu.Shader{}) })
	assert.Panics(t, func() { c.BindFramebuffer(gpu.Framebuffer{}) })
	assert.Panics(t, func() { c.BindVertexLayout(gpu.VertexLayout{}) })
	assert.Empty(t, b.Calls)
}
