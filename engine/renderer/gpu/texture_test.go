package gpu_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureIdentityEquality(t *testing.T) {
	b := gputest.New()
	a := gpu.NewColorTexture(b, 4, 4, gpu.FilterLinear)
	other := gpu.NewColorTexture(b, 4, 4, gpu.FilterLinear)
	alias := a

	assert.True(t, a == alias)
	assert.True(t, a.Equal(alias))
	assert.False(t, a == other, "same description must not make textures equal")
	assert.NotEqual(t, a.ID(), other.ID())
}

func TestTextureRefcount(t *testing.T) {
	b := gputest.New()
	tex := gpu.NewColorTexture(b, 2, 2, gpu.FilterNearest)
	require.True(t, tex.IsInit())

	clone := tex.Clone()
	assert.True(t, clone == tex)

	tex.Release()
	assert.True(t, clone.IsInit(), "texture must survive while a clone holds a reference")
	assert.Equal(t, 0, b.Count(gputest.OpReleaseTexture))

	clone.Release()
	assert.False(t, tex.IsInit())
	assert.Equal(t, 1, b.Count(gputest.OpReleaseTexture))
	assert.Equal(t, 0, b.Live("texture"))
}

func TestZeroTexture(t *testing.T) {
	var tex gpu.Texture2D
	assert.False(t, tex.IsInit())
	assert.Equal(t, uint64(0), tex.ID())
	assert.Nil(t, tex.Native())
	tex.Release()
}

func TestTextureSetData(t *testing.T) {
	b := gputest.New()
	tex := gpu.NewColorTexture(b, 2, 1, gpu.FilterLinear)
	tex.SetData([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	writes := b.WritesTo(tex.Native())
	require.Len(t, writes, 1)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, writes[0].Data)
}

func TestTextureSetDataSizeMismatch(t *testing.T) {
	if !common.AssertionsEnabled {
		t.Skip("assertions disabled")
	}
	b := gputest.New()
	tex := gpu.NewColorTexture(b, 2, 2, gpu.FilterLinear)
	assert.Panics(t, func() { tex.SetData(make([]byte, 15)) })

	rgb := gpu.NewTexture2D(b, gpu.TextureDescriptor{Width: 2, Height: 2, Format: gpu.FormatR8G8B8})
	assert.NotPanics(t, func() { rgb.SetData(make([]byte, 12)) })
}

func TestTextureCreateFailure(t *testing.T) {
	b := gputest.New()
	b.FailTextures = true
	tex := gpu.NewDepthTexture(b, 8, 8, gpu.FilterNearest)
	assert.False(t, tex.IsInit())
}

func TestRGBATextureUploads(t *testing.T) {
	b := gputest.New()
	tex := gpu.NewRGBATexture(b, 1, 1, []byte{255, 255, 255, 255}, gpu.FilterNearest)
	require.True(t, tex.IsInit())
	assert.Equal(t, gpu.FormatR8G8B8A8, tex.Format())
	assert.Equal(t, gpu.TextureUsageSampler, tex.Usage())
	assert.Equal(t, 1, b.Count(gputest.OpWriteTexture))
}

func TestStorageTextureUsage(t *testing.T) {
	b := gputest.New()
	tex := gpu.NewStorageTexture(b, 16, 16, gpu.FilterNearest)
	assert.NotZero(t, tex.Usage()&gpu.TextureUsageWrite)
	assert.NotZero(t, tex.Usage()&gpu.TextureUsageRead)
}
