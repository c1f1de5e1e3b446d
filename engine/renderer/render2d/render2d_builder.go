package render2d

import "github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"

// Renderer2DBuilderOption is a functional option applied to a Renderer2D during construction.
type Renderer2DBuilderOption func(*renderer2D)

// WithWhiteTextureFilter sets the filter of the white texture in slot 0. The batch sampler
// follows the texture in slot 0, so this is the filter every slot is sampled with.
//
// Parameters:
//   - filter: the texture filter
//
// Returns:
//   - Renderer2DBuilderOption: a function that applies the filter option to a Renderer2D
func WithWhiteTextureFilter(filter gpu.TextureFilter) Renderer2DBuilderOption {
	return func(r *renderer2D) {
		r.filter = filter
	}
}
