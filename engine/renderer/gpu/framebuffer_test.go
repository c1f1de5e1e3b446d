package gpu_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramebufferSizeAndStatus(t *testing.T) {
	b := gputest.New()
	color := gpu.NewColorTexture(b, 64, 32, gpu.FilterLinear)
	depth := gpu.NewDepthTexture(b, 64, 32, gpu.FilterNearest)

	fb := gpu.NewFramebuffer(b, []gpu.Texture2D{color}, depth)
	require.True(t, fb.IsInit())
	assert.True(t, fb.IsComplete())
	assert.Equal(t, uint32(64), fb.Width())
	assert.Equal(t, uint32(32), fb.Height())
	assert.True(t, fb.DepthAttachment() == depth)
}

func TestFramebufferKeepsAttachmentsAlive(t *testing.T) {
	b := gputest.New()
	color := gpu.NewColorTexture(b, 8, 8, gpu.FilterLinear)
	fb := gpu.NewFramebuffer(b, []gpu.Texture2D{color}, gpu.Texture2D{})

	color.Release()
	assert.True(t, color.IsInit())

	fb.Release()
	assert.False(t, color.IsInit())
	assert.Equal(t, 1, b.Count(gputest.OpReleaseFramebuffer))
}

func TestIncompleteFramebufferWarns(t *testing.T) {
	logs := captureLogs(t)
	b := gputest.New()
	color := gpu.NewColorTexture(b, 8, 8, gpu.FilterLinear)
	depth := gpu.NewDepthTexture(b, 4, 4, gpu.FilterNearest)

	fb := gpu.NewFramebuffer(b, []gpu.Texture2D{color}, depth)
	assert.True(t, fb.IsInit())
	assert.False(t, fb.IsComplete())
	assert.Equal(t, gpu.FramebufferSizeMismatch, fb.Status())
	assert.Contains(t, logs.String(), "framebuffer is incomplete")
	assert.Contains(t, logs.String(), "code=3")
}

func TestFramebufferNonColorAttachmentWarns(t *testing.T) {
	logs := captureLogs(t)
	b := gputest.New()
	depth := gpu.NewDepthTexture(b, 4, 4, gpu.FilterNearest)
	gpu.NewFramebuffer(b, []gpu.Texture2D{depth}, gpu.Texture2D{})
	assert.Contains(t, logs.String(), "non-color format")
}
