package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	left, right, bottom, top float32
	near, far                float32

	position [3]float32
	rotation float32 // degrees, counter-clockwise

	viewMatrix           common.Mat4
	projectionMatrix     common.Mat4
	viewProjectionMatrix common.Mat4
}

// Camera is a 2D orthographic camera. The view is the inverse of the camera transform
// (rotation about Z after translation to Position); the projection maps the bounds
// to clip space with depth in [0, 1].
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space position
	Position() (x, y, z float32)

	// SetPosition moves the camera and recomputes the view.
	//
	// Parameters:
	//   - x, y, z: world-space position
	SetPosition(x, y, z float32)

	// Rotation returns the rotation about Z in degrees.
	Rotation() float32

	// SetRotation sets the rotation about Z in degrees and recomputes the view.
	SetRotation(degrees float32)

	// Bounds returns the projection bounds.
	//
	// Returns:
	//   - left, right, bottom, top: the visible region in view space
	Bounds() (left, right, bottom, top float32)

	// SetProjection replaces the projection bounds. Near and far are kept.
	//
	// Parameters:
	//   - left, right, bottom, top: the visible region in view space
	SetProjection(left, right, bottom, top float32)

	// Near returns the near clipping plane.
	Near() float32

	// Far returns the far clipping plane.
	Far() float32

	ViewMatrix() common.Mat4
	ProjectionMatrix() common.Mat4

	// ViewProjectionMatrix returns projection * view, column-major.
	ViewProjectionMatrix() common.Mat4

	// Uniform returns the GPU representation of the camera.
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates an orthographic camera over [-1, 1] in both axes with
// near -20 and far 20.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		left:   -1,
		right:  1,
		bottom: -1,
		top:    1,
		near:   -20,
		far:    20,
	}
	for _, option := range options {
		option(c)
	}
	c.updateProjection()
	c.updateView()
	return c
}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1], c.position[2]
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
	c.updateView()
}

func (c *cameraImpl) Rotation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}

func (c *cameraImpl) SetRotation(degrees float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = degrees
	c.updateView()
}

func (c *cameraImpl) Bounds() (left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left, c.right, c.bottom, c.top
}

func (c *cameraImpl) SetProjection(left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.updateProjection()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{ViewProj: c.viewProjectionMatrix}
}

// updateView recomputes the view and view-projection matrices. Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	transform := common.Mul4(
		common.RotateZ(common.Radians(c.rotation)),
		common.Translate(c.position[0], c.position[1], c.position[2]),
	)
	view, ok := common.Invert4(transform)
	if !ok {
		view = common.Identity()
	}
	c.viewMatrix = view
	c.viewProjectionMatrix = common.Mul4(c.projectionMatrix, c.viewMatrix)
}

// updateProjection recomputes the projection and view-projection matrices. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	c.projectionMatrix = common.Ortho(c.left, c.right, c.bottom, c.top, c.near, c.far)
	c.viewProjectionMatrix = common.Mul4(c.projectionMatrix, c.viewMatrix)
}
