package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorPacking(t *testing.T) {
	c := NewColor(0x11, 0x22, 0x33, 0x44)
	assert.Equal(t, Color(0x44112233), c)
	assert.Equal(t, uint8(0x11), c.R())
	assert.Equal(t, uint8(0x22), c.G())
	assert.Equal(t, uint8(0x33), c.B())
	assert.Equal(t, uint8(0x44), c.A())
	assert.Equal(t, [4]byte{0x11, 0x22, 0x33, 0x44}, c.RGBA())
}

func TestColorNormalized(t *testing.T) {
	assert.Equal(t, [4]float32{1, 0, 0, 1}, ColorRed.Normalized())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, ColorWhite.Normalized())
	assert.Equal(t, Grey(128), ColorFromNormalized(Grey(128).Normalized()))
	assert.Equal(t, ColorWhite, ColorFromNormalized([4]float32{2, 1.5, 1, 9}))
	assert.Equal(t, ColorTransparent, ColorFromNormalized([4]float32{-1, 0, 0, 0}))
}
