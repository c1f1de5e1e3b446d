package pipeline_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsSuit2D(t *testing.T) {
	p := pipeline.NewPipeline("2D")

	assert.Equal(t, "2D", p.Label())
	assert.False(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())

	prim := p.Primitive()
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, prim.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, prim.FrontFace)

	target := p.ColorTarget(wgpu.TextureFormatBGRA8Unorm)
	require.NotNil(t, target.Blend)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, target.Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, target.Blend.Color.DstFactor)
	assert.Equal(t, wgpu.ColorWriteMaskAll, target.WriteMask)
}

func TestBlendDisabledHasNoBlendState(t *testing.T) {
	p := pipeline.NewPipeline("opaque", pipeline.WithBlendEnabled(false))

	assert.Nil(t, p.BlendState())
	assert.Nil(t, p.ColorTarget(wgpu.TextureFormatRGBA8Unorm).Blend)
}

func TestDepthStencil(t *testing.T) {
	assert.Nil(t, pipeline.NewPipeline("2D").DepthStencil(wgpu.TextureFormatUndefined))

	off := pipeline.NewPipeline("2D").DepthStencil(wgpu.TextureFormatDepth24Plus)
	require.NotNil(t, off)
	assert.Equal(t, wgpu.CompareFunctionAlways, off.DepthCompare)
	assert.False(t, off.DepthWriteEnabled)

	on := pipeline.NewPipeline("layered", pipeline.WithDepth(true, true)).DepthStencil(wgpu.TextureFormatDepth24Plus)
	require.NotNil(t, on)
	assert.Equal(t, wgpu.CompareFunctionLess, on.DepthCompare)
	assert.True(t, on.DepthWriteEnabled)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	p := pipeline.NewPipeline("lines",
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCW),
		pipeline.WithWriteMask(wgpu.ColorWriteMaskRed),
	)

	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
}
