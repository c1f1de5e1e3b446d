// Package gpu provides reference-counted handles over native GPU objects and the
// Backend contract those objects come from.
//
// Handles are small values. Copying a handle aliases the same native object; Clone
// takes an additional reference and Release drops one. The native object is freed
// when the last reference is released. Two handles compare equal with == exactly
// when they refer to the same native object.
package gpu

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy2d/common"
)

var lastResourceID atomic.Uint64

// resource is the shared record behind every handle kind.
type resource struct {
	id      uint64
	refs    atomic.Int32
	backend Backend
	native  any
	free    func(native any)
}

func (r *resource) init(backend Backend, native any, free func(any)) {
	r.id = lastResourceID.Add(1)
	r.backend = backend
	r.native = native
	r.free = free
	r.refs.Store(1)
}

func (r *resource) alive() bool {
	return r.refs.Load() > 0
}

func (r *resource) retain() {
	n := r.refs.Add(1)
	common.Assert(n > 1, "retain of released resource %d", r.id)
}

// drop releases one reference and reports whether it was the last one.
func (r *resource) drop() bool {
	n := r.refs.Add(-1)
	if n > 0 {
		return false
	}
	if n < 0 {
		r.refs.Store(0)
		common.Assert(false, "resource %d released more times than it was retained", r.id)
		return false
	}
	if r.free != nil {
		r.free(r.native)
	}
	r.native = nil
	return true
}
