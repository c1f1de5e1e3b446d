package renderer

import (
	"fmt"
	"strings"
)

// PresentMode selects how finished frames reach the window surface.
type PresentMode int

const (
	// PresentModeVSync presents on vertical blank.
	PresentModeVSync PresentMode = iota
	// PresentModeUncapped presents as soon as the frame is done; tearing is possible.
	PresentModeUncapped
)

// ParsePresentMode maps a config name ("vsync" or "uncapped", case-insensitive) to a
// PresentMode. The empty string is vsync.
func ParsePresentMode(name string) (PresentMode, error) {
	switch strings.ToLower(name) {
	case "", "vsync":
		return PresentModeVSync, nil
	case "uncapped":
		return PresentModeUncapped, nil
	}
	return 0, fmt.Errorf("present mode %q is not vsync or uncapped", name)
}

func (m PresentMode) String() string {
	if m == PresentModeUncapped {
		return "uncapped"
	}
	return "vsync"
}

// MSAASampleCount is the sample count of the screen color target. Offscreen framebuffers
// are always single sampled so Render2D output can be sampled back as a texture.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1

	// MSAA4x is the default and the only multisampled count every adapter must support.
	MSAA4x MSAASampleCount = 4

	// MSAA8x and MSAA16x depend on the adapter.
	MSAA8x  MSAASampleCount = 8
	MSAA16x MSAASampleCount = 16
)

// Valid reports whether the count is one of the MSAA constants.
func (c MSAASampleCount) Valid() bool {
	switch c {
	case MSAAOff, MSAA4x, MSAA8x, MSAA16x:
		return true
	}
	return false
}
