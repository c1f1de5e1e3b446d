package framebuffer_pool_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/framebuffer_pool"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type targets struct {
	colorA, colorB, depth gpu.Texture2D
}

func newTargets(b gpu.Backend) targets {
	return targets{
		colorA: gpu.NewColorTexture(b, 16, 16, gpu.FilterLinear),
		colorB: gpu.NewColorTexture(b, 16, 16, gpu.FilterLinear),
		depth:  gpu.NewDepthTexture(b, 16, 16, gpu.FilterNearest),
	}
}

func TestGetReturnsSameFramebufferWithinFrame(t *testing.T) {
	b := gputest.New()
	tg := newTargets(b)
	pool := framebuffer_pool.NewFramebufferPool(b)

	pool.FrameStart()
	a1 := pool.Get([]gpu.Texture2D{tg.colorA}, tg.depth)
	fbB := pool.Get([]gpu.Texture2D{tg.colorB}, tg.depth)
	a2 := pool.Get([]gpu.Texture2D{tg.colorA}, tg.depth)

	require.True(t, a1.IsInit())
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, fbB)
	assert.Equal(t, 2, b.Count(gputest.OpCreateFramebuffer))
	assert.Equal(t, 2, pool.Len())
}

func TestUnusedEntryEvictedAtFrameEnd(t *testing.T) {
	b := gputest.New()
	tg := newTargets(b)
	pool := framebuffer_pool.NewFramebufferPool(b)
	setA := []gpu.Texture2D{tg.colorA}
	setB := []gpu.Texture2D{tg.colorB}

	pool.FrameStart()
	fbA := pool.Get(setA, tg.depth)
	fbB := pool.Get(setB, tg.depth)
	pool.FrameEnd()
	assert.Equal(t, 2, pool.Len())

	pool.FrameStart()
	assert.Equal(t, fbA, pool.Get(setA, tg.depth))
	pool.FrameEnd()

	assert.Equal(t, 1, pool.Len())
	assert.False(t, fbB.IsInit())
	assert.Equal(t, 1, b.Count(gputest.OpReleaseFramebuffer))

	pool.FrameStart()
	freshB := pool.Get(setB, tg.depth)
	require.True(t, freshB.IsInit())
	assert.NotEqual(t, fbB, freshB)
	assert.Equal(t, 3, b.Count(gputest.OpCreateFramebuffer))
}

func TestKeyIsStructural(t *testing.T) {
	b := gputest.New()
	tg := newTargets(b)

	ab := framebuffer_pool.KeyOf([]gpu.Texture2D{tg.colorA, tg.colorB}, gpu.Texture2D{})
	ba := framebuffer_pool.KeyOf([]gpu.Texture2D{tg.colorB, tg.colorA}, gpu.Texture2D{})
	assert.NotEqual(t, ab, ba)

	// A texture used as a color attachment and as a depth attachment is a different set.
	asColor := framebuffer_pool.KeyOf([]gpu.Texture2D{tg.depth}, gpu.Texture2D{})
	asDepth := framebuffer_pool.KeyOf(nil, tg.depth)
	assert.NotEqual(t, asColor, asDepth)

	assert.Equal(t, ab, framebuffer_pool.KeyOf([]gpu.Texture2D{tg.colorA, tg.colorB}, gpu.Texture2D{}))
}

func TestMaxIdleFrames(t *testing.T) {
	b := gputest.New()
	tg := newTargets(b)
	pool := framebuffer_pool.NewFramebufferPool(b, framebuffer_pool.WithMaxIdleFrames(2))

	pool.FrameStart()
	fb := pool.Get([]gpu.Texture2D{tg.colorA}, gpu.Texture2D{})
	pool.FrameEnd()

	pool.FrameStart()
	pool.FrameEnd()
	assert.Equal(t, 1, pool.Len())
	assert.True(t, fb.IsInit())

	pool.FrameStart()
	pool.FrameEnd()
	assert.Zero(t, pool.Len())
	assert.False(t, fb.IsInit())
}

func TestPoolKeepsAttachmentsAlive(t *testing.T) {
	b := gputest.New()
	color := gpu.NewColorTexture(b, 8, 8, gpu.FilterLinear)
	pool := framebuffer_pool.NewFramebufferPool(b)

	pool.Get([]gpu.Texture2D{color}, gpu.Texture2D{})
	color.Release()
	assert.Equal(t, 1, b.Live("texture"))

	pool.Release()
	assert.Zero(t, pool.Len())
	assert.Zero(t, b.Live("framebuffer"))
	assert.Zero(t, b.Live("texture"))
}
