package framebuffer_pool

// FramebufferPoolBuilderOption is a functional option used to configure a FramebufferPool during construction.
type FramebufferPoolBuilderOption func(*framebufferPool)

// WithMaxIdleFrames sets how many consecutive frames a framebuffer may go unrequested
// before it is released. The default of 1 evicts at the end of the first frame it was
// not used in. Values below 1 are treated as 1.
//
// Parameters:
//   - frames: the number of idle frames tolerated
//
// Returns:
//   - FramebufferPoolBuilderOption: a function that sets the idle frame limit
func WithMaxIdleFrames(frames int) FramebufferPoolBuilderOption {
	return func(p *framebufferPool) {
		p.maxIdle = frames
	}
}
