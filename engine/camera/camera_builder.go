package camera

type CameraBuilderOption func(*cameraImpl)

// WithBounds sets the orthographic projection bounds.
//
// Parameters:
//   - left, right, bottom, top: the visible region in view space
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection bounds
func WithBounds(left, right, bottom, top float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.left, c.right, c.bottom, c.top = left, right, bottom, top
	}
}

// WithDepthRange sets the near and far clipping planes.
//
// Parameters:
//   - near, far: the clipping planes along view-space Z
//
// Returns:
//   - CameraBuilderOption: a function that sets the depth range
func WithDepthRange(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near, c.far = near, far
	}
}

// WithPosition sets the initial camera position.
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial rotation about Z in degrees.
func WithRotation(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.rotation = degrees
	}
}
