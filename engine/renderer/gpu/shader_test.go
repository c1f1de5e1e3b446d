package gpu_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShaderSource = `
struct Camera {
    view_proj: mat4x4<f32>,
};

struct VertexInput {
    @location(0) position: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@group(0) @binding(0) var<uniform> camera: Camera;
@group(1) @binding(0) var diffuse: texture_2d<f32>;
@group(1) @binding(1) var diffuse_sampler: sampler;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = camera.view_proj * vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.position;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(diffuse, diffuse_sampler, in.uv);
}
`

const testComputeSource = `
@group(0) @binding(0) var src: texture_2d<f32>;
@group(0) @binding(1) var dst: texture_storage_2d<rgba8unorm, write>;

@compute @workgroup_size(8, 8)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    textureStore(dst, vec2<i32>(id.xy), textureLoad(src, vec2<i32>(id.xy), 0));
}
`

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { common.SetLogger(nil) })
	return &buf
}

func newTestShader(t *testing.T, b gpu.Backend) gpu.Shader {
	t.Helper()
	sh := gpu.NewShader(b, testShaderSource, testShaderSource, gpu.NewVertexLayout(gpu.AttributeFloat2))
	require.True(t, sh.IsInit())
	return sh
}

func TestShaderReflection(t *testing.T) {
	b := gputest.New()
	sh := newTestShader(t, b)

	refl := sh.Reflection()
	assert.Equal(t, "vs_main", refl.VertexEntry)
	assert.Equal(t, "fs_main", refl.FragmentEntry)

	cam, ok := refl.Lookup("camera")
	require.True(t, ok)
	assert.Equal(t, gpu.ResourceUniformBuffer, cam.Kind)
	assert.Equal(t, uint64(64), cam.Size)

	tex, ok := refl.Lookup("diffuse")
	require.True(t, ok)
	assert.Equal(t, 0, tex.Slot)
	assert.False(t, sh.IsCompute())
	assert.True(t, sh.Layout().IsInit())
}

func TestShaderSetBuffer(t *testing.T) {
	b := gputest.New()
	sh := newTestShader(t, b)
	m := common.Identity()
	cam := gpu.NewUniformBuffer(b, "camera", &m)

	assert.True(t, sh.SetBuffer("camera", cam))
	got, ok := sh.UniformBuffer("camera")
	assert.True(t, ok)
	assert.True(t, got == cam)

	_, ok = sh.StorageBuffer("camera")
	assert.False(t, ok)
	assert.Len(t, sh.Buffers(), 1)
}

func TestShaderUnknownNameWarns(t *testing.T) {
	logs := captureLogs(t)
	b := gputest.New()
	sh := newTestShader(t, b)
	m := common.Identity()
	buf := gpu.NewUniformBuffer(b, "u", &m)

	assert.False(t, sh.SetBuffer("missing", buf))
	assert.False(t, sh.SetTexture("camera", gpu.NewColorTexture(b, 1, 1, gpu.FilterLinear), gpu.TextureUsageSampler))
	assert.Contains(t, logs.String(), "could not find buffer input")
	assert.Contains(t, logs.String(), "could not find texture input")
	assert.Contains(t, logs.String(), "name=missing")
}

func TestShaderReleasesRecordedInputs(t *testing.T) {
	b := gputest.New()
	sh := newTestShader(t, b)
	tex := gpu.NewColorTexture(b, 1, 1, gpu.FilterLinear)
	require.True(t, sh.SetTexture("diffuse", tex, gpu.TextureUsageSampler))

	tex.Release()
	assert.True(t, tex.IsInit(), "shader holds a reference")

	sh.Release()
	assert.False(t, tex.IsInit())
	assert.Equal(t, 1, b.Count(gputest.OpReleaseShader))
	assert.Equal(t, 1, b.Count(gputest.OpReleaseTexture))
}

func TestShaderCompileFailure(t *testing.T) {
	logs := captureLogs(t)
	b := gputest.New()
	b.FailShaders = true
	sh := gpu.NewShader(b, testShaderSource, testShaderSource, gpu.VertexLayout{})
	assert.False(t, sh.IsInit())
	assert.Contains(t, logs.String(), "failed to compile shader")

	b.FailShaders = false
	sh = gpu.NewShader(b, "fn nothing() {}", "fn nothing() {}", gpu.VertexLayout{})
	assert.False(t, sh.IsInit(), "a source without entry points is rejected")
}

func TestComputeShader(t *testing.T) {
	b := gputest.New()
	sh := gpu.NewComputeShader(b, testComputeSource)
	require.True(t, sh.IsInit())
	assert.True(t, sh.IsCompute())
	assert.False(t, sh.Layout().IsInit())
	assert.Equal(t, [3]uint32{8, 8, 1}, sh.WorkgroupSize())

	dst, ok := sh.Reflection().Lookup("dst")
	require.True(t, ok)
	assert.Equal(t, gpu.ResourceStorageTexture, dst.Kind)
	assert.Equal(t, 1, dst.Slot)
}
