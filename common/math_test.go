package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrthoMapsCorners(t *testing.T) {
	m := Ortho(-2, 2, -1, 1, -20, 20)

	x, y := TransformPoint(m, -2, -1)
	assert.InDelta(t, -1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)

	x, y = TransformPoint(m, 2, 1)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)
}

func TestMul4Identity(t *testing.T) {
	m := Mul4(Translate(1, 2, 3), RotateZ(0.5))
	assert.Equal(t, m, Mul4(Identity(), m))
	assert.Equal(t, m, Mul4(m, Identity()))
}

func TestInvert4(t *testing.T) {
	m := Mul4(Translate(3, -4, 0), RotateZ(math32.Pi/3))
	inv, ok := Invert4(m)
	require.True(t, ok)

	product := Mul4(m, inv)
	for i, v := range Identity() {
		assert.InDelta(t, v, product[i], 1e-5, "element %d", i)
	}

	_, ok = Invert4(Mat4{})
	assert.False(t, ok)
}

func TestRotateZQuarterTurn(t *testing.T) {
	x, y := TransformPoint(RotateZ(Radians(90)), 1, 0)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)
}

func TestClampAndCoalesce(t *testing.T) {
	assert.Equal(t, 1, Clamp(5, -1, 1))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}
