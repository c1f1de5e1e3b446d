package engine

import (
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/profiler"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/render2d"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
)

// engine implements the Engine interface.
// Window polling, event dispatch and rendering all happen on the goroutine that calls Run.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window    window.Window
	renderer  renderer.Renderer
	render2d  render2d.Renderer2D
	ownWindow bool

	windowOptions   []window.WindowBuilderOption
	rendererOptions []renderer.RendererBuilderOption

	profiler         *profiler.Profiler
	profilingEnabled bool
	profilerOptions  []profiler.ProfilerBuilderOption

	layers       []Layer
	queuedEvents []Event
	minimized    bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It owns the window, the rendering context and the batch renderer and drives the layer stack.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the rendering context.
	//
	// Returns:
	//   - renderer.Renderer: the rendering context
	Renderer() renderer.Renderer

	// Render2D returns the batch renderer, initialized and flushed by the engine every frame.
	//
	// Returns:
	//   - render2d.Renderer2D: the batch renderer
	Render2D() render2d.Renderer2D

	// IsKeyPressed reports whether a key is currently held down.
	//
	// Parameters:
	//   - key: the key to query
	//
	// Returns:
	//   - bool: true while the key is down
	IsKeyPressed(key common.Key) bool

	// PushLayer appends a layer to the layer stack and attaches it.
	//
	// Parameters:
	//   - l: the layer to push
	PushLayer(l Layer)

	// PopLayer removes a layer from the layer stack and detaches it.
	//
	// Parameters:
	//   - l: the layer to remove
	//
	// Returns:
	//   - bool: false if the layer was not on the stack
	PopLayer(l Layer) bool

	// Layers returns a copy of the layer stack.
	Layers() []Layer

	// QueueEvent queues an event for dispatch at the start of the next frame.
	//
	// Parameters:
	//   - ev: the event to queue
	QueueEvent(ev Event)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run runs frames until the window closes or Quit is called, then detaches every layer
	// and releases the rendering resources.
	Run()

	// Quit stops the frame loop after the current frame.
	// Safe to call multiple times and from any goroutine.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options. Unless supplied through
// options, a window and a WebGPU rendering context are created.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		e.window = window.NewWindow(e.windowOptions...)
		e.ownWindow = true
	}
	if e.renderer == nil {
		e.renderer = renderer.NewRenderer(e.window, e.rendererOptions...)
	}
	e.render2d = render2d.NewRenderer2D(e.renderer)
	e.render2d.Init()
	e.profiler = profiler.NewProfiler(append([]profiler.ProfilerBuilderOption{
		profiler.WithStatsSource(e.render2d),
	}, e.profilerOptions...)...)

	e.window.SetResizeCallback(func(width, height int) {
		e.QueueEvent(Event{Type: EventWindowResized, Width: width, Height: height})
	})
	e.window.SetKeyDownCallback(func(key common.Key) {
		e.QueueEvent(Event{Type: EventKeyPressed, Key: key})
	})
	e.window.SetKeyUpCallback(func(key common.Key) {
		e.QueueEvent(Event{Type: EventKeyReleased, Key: key})
	})
	e.window.SetMouseDownCallback(func(button common.MouseButton, x, y float32) {
		e.QueueEvent(Event{Type: EventMouseButtonPressed, Button: button, X: x, Y: y})
	})
	e.window.SetMouseUpCallback(func(button common.MouseButton, x, y float32) {
		e.QueueEvent(Event{Type: EventMouseButtonReleased, Button: button, X: x, Y: y})
	})
	e.window.SetMouseMoveCallback(func(x, y float32) {
		e.QueueEvent(Event{Type: EventMouseMoved, X: x, Y: y})
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.QueueEvent(Event{Type: EventMouseScrolled, Y: delta})
	})

	layers := e.layers
	e.layers = nil
	for _, l := range layers {
		e.PushLayer(l)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Render2D() render2d.Renderer2D {
	return e.render2d
}

func (e *engine) IsKeyPressed(key common.Key) bool {
	return e.window.IsKeyPressed(key)
}

func (e *engine) PushLayer(l Layer) {
	e.layers = append(e.layers, l)
	l.OnAttach(e)
}

func (e *engine) PopLayer(l Layer) bool {
	i := slices.Index(e.layers, l)
	if i < 0 {
		return false
	}
	e.layers = slices.Delete(e.layers, i, i+1)
	l.OnDetach()
	return true
}

func (e *engine) Layers() []Layer {
	return slices.Clone(e.layers)
}

func (e *engine) QueueEvent(ev Event) {
	e.queuedEvents = append(e.queuedEvents, ev)
}

func (e *engine) Run() {
	defer e.shutdown()
	// Recover from panics inside the frame loop so layers are still detached and GPU
	// resources released.
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("frame loop recovered from panic", "panic", r)
		}
	}()

	lastFrame := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}
		if !e.window.PollEvents() {
			return
		}
		e.dispatchEvents()

		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now

		if !e.minimized {
			e.frame(dt)
		}

		if e.profilingEnabled {
			e.profiler.Tick()
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// frame renders one frame: every layer submits its shapes, then the last batch is flushed
// and the frame presented.
func (e *engine) frame(dt float32) {
	if err := e.renderer.FrameStart(); err != nil {
		common.Logger().Warn("skipping frame", "err", err)
		return
	}
	for _, l := range e.layers {
		l.OnUpdate(dt)
	}
	e.render2d.Flush()
	e.renderer.FrameEnd()
}

func (e *engine) dispatchEvents() {
	events := e.queuedEvents
	e.queuedEvents = nil
	for i := range events {
		ev := &events[i]
		if ev.Type == EventWindowResized {
			e.onWindowResized(ev)
		}
		for _, l := range e.layers {
			if ev.Handled {
				break
			}
			l.OnEvent(ev)
		}
	}
}

func (e *engine) onWindowResized(ev *Event) {
	e.minimized = ev.Width == 0 || ev.Height == 0
	if !e.minimized {
		e.renderer.Resize(ev.Width, ev.Height)
	}
}

func (e *engine) shutdown() {
	for i := len(e.layers) - 1; i >= 0; i-- {
		e.layers[i].OnDetach()
	}
	e.layers = nil
	e.render2d.Release()
	e.renderer.Release()
	if e.ownWindow {
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("failed to close window", "err", err)
		}
	}
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
