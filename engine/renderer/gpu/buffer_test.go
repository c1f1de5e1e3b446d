package gpu_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testVertex struct {
	Position [2]float32
	Color    [4]float32
	Slot     int32
}

func TestVertexBufferSizing(t *testing.T) {
	b := gputest.New()
	buf := gpu.NewVertexBuffer[testVertex](b, "vb", 10)
	require.True(t, buf.IsInit())
	assert.Equal(t, uint32(28), buf.Stride())
	assert.Equal(t, uint64(280), buf.Size())
	assert.Equal(t, gpu.BufferTypeVertex, buf.Type())
}

func TestIndexBufferSizing(t *testing.T) {
	b := gputest.New()
	buf := gpu.NewIndexBuffer(b, "ib", 6)
	assert.Equal(t, uint64(24), buf.Size())
	assert.Equal(t, gpu.BufferTypeIndexU32, buf.Type())
}

func TestBufferSetData(t *testing.T) {
	b := gputest.New()
	buf := gpu.NewBuffer(b, gpu.BufferDescriptor{Type: gpu.BufferTypeStorage, Size: 8}, nil)
	buf.SetData(4, []byte{9, 9, 9, 9})

	writes := b.WritesTo(buf.Native())
	require.Len(t, writes, 1)
	assert.Equal(t, uint64(4), writes[0].Offset)
	assert.Equal(t, []byte{0, 0, 0, 0, 9, 9, 9, 9}, writes[0].Object.Data)
}

func TestBufferOverflowAsserts(t *testing.T) {
	if !common.AssertionsEnabled {
		t.Skip("assertions disabled")
	}
	b := gputest.New()
	buf := gpu.NewBuffer(b, gpu.BufferDescriptor{Type: gpu.BufferTypeStorage, Size: 8}, nil)
	assert.Panics(t, func() { buf.SetData(6, []byte{1, 2, 3}) })
	assert.Equal(t, 0, b.Count(gputest.OpWriteBuffer))
}

func TestBufferSizeFromData(t *testing.T) {
	b := gputest.New()
	buf := gpu.NewBuffer(b, gpu.BufferDescriptor{Type: gpu.BufferTypeUniform}, []byte{1, 2, 3, 4})
	assert.Equal(t, uint64(4), buf.Size())
}

func TestUniformBuffer(t *testing.T) {
	b := gputest.New()
	m := common.Identity()
	buf := gpu.NewUniformBuffer(b, "camera", &m)
	assert.Equal(t, uint64(64), buf.Size())
	assert.Equal(t, gpu.BufferTypeUniform, buf.Type())
}

func TestBufferReleaseOnce(t *testing.T) {
	b := gputest.New()
	buf := gpu.NewIndexBuffer(b, "ib", 3)
	c1, c2 := buf.Clone(), buf.Clone()
	buf.Release()
	c1.Release()
	assert.Equal(t, 0, b.Count(gputest.OpReleaseBuffer))
	c2.Release()
	assert.Equal(t, 1, b.Count(gputest.OpReleaseBuffer))
}

func TestBufferCreateFailure(t *testing.T) {
	b := gputest.New()
	b.FailBuffers = true
	assert.False(t, gpu.NewIndexBuffer(b, "ib", 3).IsInit())
}
