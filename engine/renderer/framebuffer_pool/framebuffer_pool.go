package framebuffer_pool

import (
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
)

// Key identifies an attachment set: the color attachment IDs in attachment order followed
// by the depth attachment ID, or 0 when there is none. Two sets share a key only when they
// hold the same textures in the same roles.
type Key string

// KeyOf builds the pool key for an attachment set.
//
// Parameters:
//   - colors: the color attachments in attachment order
//   - depth: the depth/stencil attachment, possibly uninitialized
//
// Returns:
//   - Key: the structural key of the set
func KeyOf(colors []gpu.Texture2D, depth gpu.Texture2D) Key {
	var sb strings.Builder
	for _, c := range colors {
		sb.WriteString(strconv.FormatUint(c.ID(), 10))
		sb.WriteByte(',')
	}
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatUint(depth.ID(), 10))
	return Key(sb.String())
}

type entry struct {
	fb   gpu.Framebuffer
	used bool
	idle int
}

// framebufferPool is the unexported implementation of FramebufferPool.
type framebufferPool struct {
	mu      *sync.Mutex
	backend gpu.Backend

	// maxIdle is the number of consecutive frames an entry may go unrequested before
	// FrameEnd releases it.
	maxIdle int
	entries map[Key]*entry
}

// FramebufferPool caches framebuffers by attachment set so that rendering into the same
// targets every frame reuses one framebuffer object. Entries not requested during a frame
// are released when the frame ends.
//
// The pool owns the framebuffers it hands out; callers must not Release them.
type FramebufferPool interface {
	// Get returns the framebuffer for an attachment set, creating it on first request,
	// and marks it used for the current frame.
	//
	// Parameters:
	//   - colors: the color attachments in attachment order
	//   - depth: the depth/stencil attachment, or an uninitialized texture for none
	//
	// Returns:
	//   - gpu.Framebuffer: the pooled framebuffer
	Get(colors []gpu.Texture2D, depth gpu.Texture2D) gpu.Framebuffer

	// FrameStart clears the used flag of every entry.
	FrameStart()

	// FrameEnd releases and forgets every entry that has not been requested for the
	// configured number of frames.
	FrameEnd()

	// Len returns the number of pooled framebuffers.
	//
	// Returns:
	//   - int: the entry count
	Len() int

	// Release releases every pooled framebuffer and empties the pool.
	Release()
}

var _ FramebufferPool = &framebufferPool{}

// NewFramebufferPool creates an empty pool that allocates on backend.
//
// Parameters:
//   - backend: the backend framebuffers are created on
//   - options: functional options applied to the pool
//
// Returns:
//   - FramebufferPool: the new pool
func NewFramebufferPool(backend gpu.Backend, options ...FramebufferPoolBuilderOption) FramebufferPool {
	p := &framebufferPool{
		mu:      &sync.Mutex{},
		backend: backend,
		maxIdle: 1,
		entries: make(map[Key]*entry),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.maxIdle < 1 {
		p.maxIdle = 1
	}
	return p
}

func (p *framebufferPool) Get(colors []gpu.Texture2D, depth gpu.Texture2D) gpu.Framebuffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := KeyOf(colors, depth)
	if e, ok := p.entries[key]; ok && e.fb.IsInit() {
		e.used = true
		e.idle = 0
		return e.fb
	}

	fb := gpu.NewFramebuffer(p.backend, colors, depth)
	if !fb.IsInit() {
		return fb
	}
	common.Logger().Debug("framebuffer pool miss", "key", string(key), "framebuffer", fb)
	p.entries[key] = &entry{fb: fb, used: true}
	return fb
}

func (p *framebufferPool) FrameStart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		e.used = false
	}
}

func (p *framebufferPool) FrameEnd() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, e := range p.entries {
		if e.used {
			continue
		}
		e.idle++
		if e.idle >= p.maxIdle {
			e.fb.Release()
			delete(p.entries, key)
		}
	}
}

func (p *framebufferPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *framebufferPool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, e := range p.entries {
		e.fb.Release()
		delete(p.entries, key)
	}
}
