package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
)

type cameraControllerImpl struct {
	mu *sync.Mutex

	camera Camera

	position [3]float32
	rotation float32

	aspect    float32
	zoom      float32
	minZoom   float32
	zoomSpeed float32

	panSpeed      float32
	rotationSpeed float32
	rotate        bool
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller and the camera it drives. The default aspect
// ratio is 1, zoom level 1, pan speed 2 units/s scaled by zoom and rotation 180 degrees/s.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:            &sync.Mutex{},
		aspect:        1,
		zoom:          1,
		minZoom:       0.05,
		zoomSpeed:     0.15,
		panSpeed:      2,
		rotationSpeed: 180,
	}
	for _, option := range options {
		option(cc)
	}
	cc.camera = NewCamera(
		WithBounds(-cc.aspect*cc.zoom, cc.aspect*cc.zoom, -cc.zoom, cc.zoom),
		WithPosition(cc.position[0], cc.position[1], cc.position[2]),
		WithRotation(cc.rotation),
	)
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) Update(dt float32, input Input) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	speed := cc.panSpeed * cc.zoom * dt
	switch {
	case input.IsKeyPressed(common.KeyD):
		cc.position[0] += speed
	case input.IsKeyPressed(common.KeyA):
		cc.position[0] -= speed
	}
	switch {
	case input.IsKeyPressed(common.KeyW):
		cc.position[1] += speed
	case input.IsKeyPressed(common.KeyS):
		cc.position[1] -= speed
	}

	if cc.rotate {
		switch {
		case input.IsKeyPressed(common.KeyQ):
			cc.rotation -= cc.rotationSpeed * dt
		case input.IsKeyPressed(common.KeyE):
			cc.rotation += cc.rotationSpeed * dt
		}
		if cc.rotation > 180 {
			cc.rotation -= 360
		} else if cc.rotation <= -180 {
			cc.rotation += 360
		}
		cc.camera.SetRotation(cc.rotation)
	}
	cc.camera.SetPosition(cc.position[0], cc.position[1], cc.position[2])
}

func (cc *cameraControllerImpl) Scroll(offsetY float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom = max(cc.zoom-offsetY*cc.zoomSpeed*cc.zoom, cc.minZoom)
	cc.updateProjection()
}

func (cc *cameraControllerImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	aspect := float32(width) / float32(height)
	if aspect == cc.aspect {
		return
	}
	cc.aspect = aspect
	cc.updateProjection()
}

func (cc *cameraControllerImpl) ZoomLevel() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoom
}

func (cc *cameraControllerImpl) SetZoomLevel(zoom float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom = max(zoom, cc.minZoom)
	cc.updateProjection()
}

func (cc *cameraControllerImpl) AspectRatio() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.aspect
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

func (cc *cameraControllerImpl) RotationSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotationSpeed
}

func (cc *cameraControllerImpl) RotationEnabled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotate
}

// updateProjection pushes the zoom and aspect to the camera. Caller must hold the mutex.
func (cc *cameraControllerImpl) updateProjection() {
	cc.camera.SetProjection(-cc.aspect*cc.zoom, cc.aspect*cc.zoom, -cc.zoom, cc.zoom)
}
