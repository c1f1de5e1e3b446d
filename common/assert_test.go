//go:build !release

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssert(t *testing.T) {
	SetLogger(nil)
	t.Cleanup(func() { SetLogger(nil) })

	assert.True(t, AssertionsEnabled)
	assert.NotPanics(t, func() { Assert(true, "never") })
	assert.PanicsWithValue(t, "assertion failed: size 3 > 2", func() { Assert(false, "size %d > %d", 3, 2) })
}
