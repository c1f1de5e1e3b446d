package renderer_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresentMode(t *testing.T) {
	for name, want := range map[string]renderer.PresentMode{
		"":         renderer.PresentModeVSync,
		"VSync":    renderer.PresentModeVSync,
		"uncapped": renderer.PresentModeUncapped,
	} {
		mode, err := renderer.ParsePresentMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, mode, name)
	}

	_, err := renderer.ParsePresentMode("mailbox")
	assert.ErrorContains(t, err, "mailbox")
	assert.Equal(t, "uncapped", renderer.PresentModeUncapped.String())
}

func TestMSAASampleCountValid(t *testing.T) {
	assert.True(t, renderer.MSAAOff.Valid())
	assert.True(t, renderer.MSAA16x.Valid())
	assert.False(t, renderer.MSAASampleCount(0).Valid())
	assert.False(t, renderer.MSAASampleCount(2).Valid())
}
