package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithAspectRatio sets the initial viewport aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraControllerOption: functional option to set the aspect ratio
func WithAspectRatio(aspect float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if aspect > 0 {
			cc.aspect = aspect
		}
	}
}

// WithZoomLevel sets the initial half-height of the visible region.
func WithZoomLevel(zoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if zoom > 0 {
			cc.zoom = zoom
		}
	}
}

// WithMinZoomLevel sets the smallest zoom level scrolling can reach.
func WithMinZoomLevel(zoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minZoom = zoom
	}
}

// WithZoomSpeed sets the fraction of the current zoom level changed per scroll unit.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the pan speed in world units per second at zoom level 1.
//
// Parameters:
//   - speed: the pan speed
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithRotationSpeed sets the rotation speed in degrees per second.
func WithRotationSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotationSpeed = speed
	}
}

// WithRotationEnabled lets Q and E rotate the camera.
func WithRotationEnabled(enabled bool) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotate = enabled
	}
}

// WithStartPosition sets the initial camera position.
func WithStartPosition(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = [3]float32{x, y, z}
	}
}
