package camera

import "github.com/Carmen-Shannon/oxy2d/common"

// Input reports keyboard state to a controller.
type Input interface {
	IsKeyPressed(key common.Key) bool
}

// CameraController drives an orthographic camera from keyboard, scroll and resize input.
// W/A/S/D pan, Q/E rotate when rotation is enabled, scrolling zooms. The visible region is
// [-aspect*zoom, aspect*zoom] x [-zoom, zoom] around the camera position.
type CameraController interface {
	// Camera returns the controlled camera.
	Camera() Camera

	// Update applies one frame of keyboard input.
	//
	// Parameters:
	//   - dt: the frame time in seconds
	//   - input: the keyboard state
	Update(dt float32, input Input)

	// Scroll zooms by a mouse wheel offset. Positive offsets zoom in.
	//
	// Parameters:
	//   - offsetY: the vertical scroll offset
	Scroll(offsetY float32)

	// Resize adapts the projection to a new viewport size.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	Resize(width, height int)

	// ZoomLevel returns the half-height of the visible region.
	ZoomLevel() float32

	// SetZoomLevel sets the half-height of the visible region, clamped to the minimum zoom.
	SetZoomLevel(zoom float32)

	// AspectRatio returns the viewport width divided by its height.
	AspectRatio() float32

	// PanSpeed returns the pan speed in world units per second at zoom level 1.
	PanSpeed() float32

	// RotationSpeed returns the rotation speed in degrees per second.
	RotationSpeed() float32

	// RotationEnabled reports whether Q and E rotate the camera.
	RotationEnabled() bool
}
