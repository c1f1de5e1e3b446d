package engine

// Layer is one entry of the engine's layer stack. Layers are updated every frame in the
// order they were pushed and receive events in the same order until one marks the event
// handled.
type Layer interface {
	// OnAttach is called when the layer is pushed. Rendering resources are available.
	//
	// Parameters:
	//   - e: the engine the layer was pushed onto
	OnAttach(e Engine)

	// OnDetach is called when the layer is popped or the engine shuts down.
	OnDetach()

	// OnUpdate is called once per frame between frame start and the final batch flush.
	//
	// Parameters:
	//   - dt: the time since the previous frame in seconds
	OnUpdate(dt float32)

	// OnEvent is called for every queued event not yet handled by an earlier layer.
	//
	// Parameters:
	//   - ev: the event; set Handled to stop propagation
	OnEvent(ev *Event)
}

// BaseLayer implements Layer with no-ops. Embed it to implement only the callbacks needed.
type BaseLayer struct{}

func (BaseLayer) OnAttach(Engine)  {}
func (BaseLayer) OnDetach()        {}
func (BaseLayer) OnUpdate(float32) {}
func (BaseLayer) OnEvent(*Event)   {}

var _ Layer = BaseLayer{}
