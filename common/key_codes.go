package common

// Key identifies a keyboard key. Values match GLFW key codes, which use ASCII for
// printable keys, so window callbacks forward them unchanged.
type Key uint32

const (
	KeySpace Key = 32
	KeyA     Key = 65
	KeyD     Key = 68
	KeyE     Key = 69
	KeyQ     Key = 81
	KeyR     Key = 82
	KeyS     Key = 83
	KeyW     Key = 87

	KeyEsc   Key = 256
	KeyRight Key = 262
	KeyLeft  Key = 263
	KeyDown  Key = 264
	KeyUp    Key = 265

	KeyLeftShift Key = 340
)

// MouseButton identifies a mouse button using GLFW numbering.
type MouseButton uint32

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)
