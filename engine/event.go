package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/common"
)

// EventType identifies the kind of an Event.
type EventType int

const (
	EventWindowResized EventType = iota
	EventKeyPressed
	EventKeyReleased
	EventMouseButtonPressed
	EventMouseButtonReleased
	EventMouseMoved
	EventMouseScrolled
)

var eventTypeNames = map[EventType]string{
	EventWindowResized:       "WindowResized",
	EventKeyPressed:          "KeyPressed",
	EventKeyReleased:         "KeyReleased",
	EventMouseButtonPressed:  "MouseButtonPressed",
	EventMouseButtonReleased: "MouseButtonReleased",
	EventMouseMoved:          "MouseMoved",
	EventMouseScrolled:       "MouseScrolled",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event is an input or window event. Which fields are meaningful depends on Type:
// Key for keyboard events, Button and X/Y for mouse buttons, X/Y for mouse movement,
// Y for the scroll offset and Width/Height for resizes.
//
// A layer sets Handled to stop the event from reaching the layers after it.
type Event struct {
	Type    EventType
	Key     common.Key
	Button  common.MouseButton
	X, Y    float32
	Width   int
	Height  int
	Handled bool
}

// IsKeyboard reports whether the event comes from the keyboard.
func (e Event) IsKeyboard() bool {
	return e.Type == EventKeyPressed || e.Type == EventKeyReleased
}

// IsMouse reports whether the event comes from the mouse.
func (e Event) IsMouse() bool {
	switch e.Type {
	case EventMouseButtonPressed, EventMouseButtonReleased, EventMouseMoved, EventMouseScrolled:
		return true
	}
	return false
}

func (e Event) String() string {
	switch e.Type {
	case EventWindowResized:
		return fmt.Sprintf("%s: %d, %d", e.Type, e.Width, e.Height)
	case EventKeyPressed, EventKeyReleased:
		return fmt.Sprintf("%s: %d", e.Type, e.Key)
	case EventMouseButtonPressed, EventMouseButtonReleased:
		return fmt.Sprintf("%s: %d at %.1f, %.1f", e.Type, e.Button, e.X, e.Y)
	case EventMouseScrolled:
		return fmt.Sprintf("%s: %.2f", e.Type, e.Y)
	default:
		return fmt.Sprintf("%s: %.1f, %.1f", e.Type, e.X, e.Y)
	}
}
