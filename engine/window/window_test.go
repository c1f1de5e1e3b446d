package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/stretchr/testify/assert"
)

func TestOptionsAreClampedToLimits(t *testing.T) {
	w := newEngineWindow(WithSize(5000, 50), WithSizeLimits(0, 240, 1920, 0), WithTitle("demo"))

	assert.Equal(t, 1920, w.Width())
	assert.Equal(t, 240, w.Height())
	assert.Equal(t, "demo", w.title)
	assert.True(t, w.resizable)
}

func TestZeroSizeOptionsKeepDefaults(t *testing.T) {
	w := newEngineWindow(WithSize(0, 0), WithSizeLimits(0, 0, 0, 0), WithResizable(false))

	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.Equal(t, 320, w.minWidth)
	assert.Equal(t, 2160, w.maxHeight)
	assert.False(t, w.resizable)
}

func TestSizeLimitsApplyRegardlessOfOrder(t *testing.T) {
	w := newEngineWindow(WithSizeLimits(0, 0, 640, 480), WithSize(800, 600))

	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
}

func TestKeyStateTracksPressAndRelease(t *testing.T) {
	w := newEngineWindow()
	var down, up []common.Key
	w.SetKeyDownCallback(func(k common.Key) { down = append(down, k) })
	w.SetKeyUpCallback(func(k common.Key) { up = append(up, k) })

	w.handleKey(common.KeyW, true)
	assert.True(t, w.IsKeyPressed(common.KeyW))
	assert.False(t, w.IsKeyPressed(common.KeyS))

	w.handleKey(common.KeyW, false)
	assert.False(t, w.IsKeyPressed(common.KeyW))
	assert.Equal(t, []common.Key{common.KeyW}, down)
	assert.Equal(t, []common.Key{common.KeyW}, up)
}

func TestMouseButtonsAreForwarded(t *testing.T) {
	w := newEngineWindow()
	var got []common.MouseButton
	w.SetMouseDownCallback(func(b common.MouseButton, x, y float32) {
		got = append(got, b)
		assert.Equal(t, float32(10), x)
	})
	w.SetMouseUpCallback(func(b common.MouseButton, _, _ float32) { got = append(got, b) })

	w.handleMouseButton(common.MouseButtonLeft, true, 10, 20)
	w.handleMouseButton(common.MouseButtonLeft, false, 10, 20)

	assert.Equal(t, []common.MouseButton{common.MouseButtonLeft, common.MouseButtonLeft}, got)
}

func TestResizeIgnoresUnchangedSize(t *testing.T) {
	w := newEngineWindow(WithSize(800, 600))
	calls := 0
	w.SetResizeCallback(func(width, height int) { calls++ })

	w.handleResize(800, 600)
	w.handleResize(1024, 768)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 768, w.Height())
}

func TestUninitializedWindowIsNotRunning(t *testing.T) {
	w := newEngineWindow()

	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
}
