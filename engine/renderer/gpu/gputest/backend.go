// Package gputest provides a recording gpu.Backend for tests that run without a GPU.
package gputest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/wgsl"
)

// Backend operation names recorded in Call.Op.
const (
	OpCreateTexture      = "CreateTexture"
	OpWriteTexture       = "WriteTexture"
	OpReleaseTexture     = "ReleaseTexture"
	OpCreateBuffer       = "CreateBuffer"
	OpWriteBuffer        = "WriteBuffer"
	OpReleaseBuffer      = "ReleaseBuffer"
	OpCreateShader       = "CreateShader"
	OpReleaseShader      = "ReleaseShader"
	OpCreateFramebuffer  = "CreateFramebuffer"
	OpReleaseFramebuffer = "ReleaseFramebuffer"
	OpBindTexture        = "BindTexture"
	OpUnbindTexture      = "UnbindTexture"
	OpBindVertexBuffer   = "BindVertexBuffer"
	OpUnbindVertexBuffer = "UnbindVertexBuffer"
	OpBindIndexBuffer    = "BindIndexBuffer"
	OpUnbindIndexBuffer  = "UnbindIndexBuffer"
	OpBindUniformBuffer  = "BindUniformBuffer"
	OpUnbindUniform      = "UnbindUniformBuffer"
	OpBindStorageBuffer  = "BindStorageBuffer"
	OpUnbindStorage      = "UnbindStorageBuffer"
	OpBindShader         = "BindShader"
	OpUnbindShader       = "UnbindShader"
	OpBindFramebuffer    = "BindFramebuffer"
	OpUnbindFramebuffer  = "UnbindFramebuffer"
	OpBindVertexLayout   = "BindVertexLayout"
	OpUnbindVertexLayout = "UnbindVertexLayout"
	OpClear              = "Clear"
	OpDrawIndexed        = "DrawIndexed"
	OpDispatch           = "Dispatch"
	OpSetViewport        = "SetViewport"
)

// ErrInjected is returned by creation calls the test asked to fail.
var ErrInjected = errors.New("gputest: injected failure")

// Object is the native object handed out by the fake backend.
type Object struct {
	ID       int
	Kind     string
	Label    string
	Data     []byte
	Released bool
}

// Call is one recorded backend call. Target is the object or handle the call acted on,
// Slot the unit, slot or binding index and N the count argument where one applies.
type Call struct {
	Op     string
	Target any
	Slot   int
	N      int
}

// Write is one recorded buffer or texture upload.
type Write struct {
	Object *Object
	Offset uint64
	Data   []byte
}

// Backend records every call. The zero value is not usable; use New.
type Backend struct {
	Calls  []Call
	Writes []Write

	// FailTextures, FailBuffers and FailShaders make the matching creation calls fail.
	FailTextures bool
	FailBuffers  bool
	FailShaders  bool

	// FramebufferStatus, when set, overrides the computed framebuffer status.
	FramebufferStatus *gpu.FramebufferStatus

	nextID  int
	objects []*Object
}

var _ gpu.Backend = &Backend{}

// New returns an empty recording backend.
func New() *Backend {
	return &Backend{}
}

// Count returns the number of recorded calls with the given op.
func (b *Backend) Count(op string) int {
	n := 0
	for _, c := range b.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// CallsOf returns the recorded calls with the given op in call order.
func (b *Backend) CallsOf(op string) []Call {
	var out []Call
	for _, c := range b.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Ops returns the op of every recorded call in call order.
func (b *Backend) Ops() []string {
	out := make([]string, len(b.Calls))
	for i, c := range b.Calls {
		out[i] = c.Op
	}
	return out
}

// WritesTo returns the uploads recorded for a native object.
func (b *Backend) WritesTo(native any) []Write {
	obj, _ := native.(*Object)
	var out []Write
	for _, w := range b.Writes {
		if w.Object == obj {
			out = append(out, w)
		}
	}
	return out
}

// Live returns the number of unreleased objects of a kind ("texture", "buffer", "shader",
// "framebuffer").
func (b *Backend) Live(kind string) int {
	n := 0
	for _, o := range b.objects {
		if o.Kind == kind && !o.Released {
			n++
		}
	}
	return n
}

// ClearCalls forgets recorded calls and writes but keeps objects.
func (b *Backend) ClearCalls() {
	b.Calls = nil
	b.Writes = nil
}

func (b *Backend) record(op string, target any, slot, n int) {
	b.Calls = append(b.Calls, Call{Op: op, Target: target, Slot: slot, N: n})
}

func (b *Backend) newObject(kind, label string, size int) *Object {
	b.nextID++
	o := &Object{ID: b.nextID, Kind: kind, Label: label, Data: make([]byte, size)}
	b.objects = append(b.objects, o)
	return o
}

func (b *Backend) release(op string, native any) {
	o, ok := native.(*Object)
	if !ok {
		panic(fmt.Sprintf("gputest: %s of foreign object %T", op, native))
	}
	if o.Released {
		panic(fmt.Sprintf("gputest: %s of %s %d twice", op, o.Kind, o.ID))
	}
	o.Released = true
	b.record(op, o, 0, 0)
}

func (b *Backend) CreateTexture(desc gpu.TextureDescriptor) (any, error) {
	if b.FailTextures {
		return nil, ErrInjected
	}
	o := b.newObject("texture", desc.Label, int(desc.Width)*int(desc.Height)*desc.Format.BytesPerPixel())
	b.record(OpCreateTexture, o, 0, 0)
	return o, nil
}

func (b *Backend) WriteTexture(native any, _ gpu.TextureDescriptor, data []byte) {
	o := native.(*Object)
	copy(o.Data, data)
	b.Writes = append(b.Writes, Write{Object: o, Data: slices.Clone(data)})
	b.record(OpWriteTexture, o, 0, len(data))
}

func (b *Backend) ReleaseTexture(native any) { b.release(OpReleaseTexture, native) }

func (b *Backend) CreateBuffer(desc gpu.BufferDescriptor, data []byte) (any, error) {
	if b.FailBuffers {
		return nil, ErrInjected
	}
	o := b.newObject("buffer", desc.Label, int(desc.Size))
	copy(o.Data, data)
	b.record(OpCreateBuffer, o, 0, int(desc.Size))
	return o, nil
}

func (b *Backend) WriteBuffer(native any, offset uint64, data []byte) {
	o := native.(*Object)
	copy(o.Data[offset:], data)
	b.Writes = append(b.Writes, Write{Object: o, Offset: offset, Data: slices.Clone(data)})
	b.record(OpWriteBuffer, o, int(offset), len(data))
}

func (b *Backend) ReleaseBuffer(native any) { b.release(OpReleaseBuffer, native) }

func (b *Backend) CreateShader(desc gpu.ShaderDescriptor) (any, gpu.Reflection, error) {
	if b.FailShaders {
		return nil, gpu.Reflection{}, ErrInjected
	}
	refl, err := wgsl.Reflect(desc)
	if err != nil {
		return nil, gpu.Reflection{}, err
	}
	o := b.newObject("shader", desc.Label, 0)
	b.record(OpCreateShader, o, 0, 0)
	return o, refl, nil
}

func (b *Backend) ReleaseShader(native any) { b.release(OpReleaseShader, native) }

func (b *Backend) CreateFramebuffer(colors []gpu.Texture2D, depth gpu.Texture2D) (any, gpu.FramebufferStatus, error) {
	status := gpu.FramebufferComplete
	var w, h uint32
	attachments := slices.Clone(colors)
	if depth.IsInit() {
		attachments = append(attachments, depth)
	}
	if len(attachments) == 0 {
		status = gpu.FramebufferMissingAttachment
	}
	for i, a := range attachments {
		if i == 0 {
			w, h = a.Width(), a.Height()
		} else if a.Width() != w || a.Height() != h {
			status = gpu.FramebufferSizeMismatch
		}
	}
	if b.FramebufferStatus != nil {
		status = *b.FramebufferStatus
	}
	o := b.newObject("framebuffer", "", 0)
	b.record(OpCreateFramebuffer, o, len(colors), 0)
	return o, status, nil
}

func (b *Backend) ReleaseFramebuffer(native any) { b.release(OpReleaseFramebuffer, native) }

func (b *Backend) BindTexture(unit int, tex gpu.Texture2D, _ gpu.TextureUsage) {
	b.record(OpBindTexture, tex, unit, 0)
}
func (b *Backend) UnbindTexture(unit int) { b.record(OpUnbindTexture, nil, unit, 0) }

func (b *Backend) BindVertexBuffer(slot int, buf gpu.Buffer) {
	b.record(OpBindVertexBuffer, buf, slot, 0)
}
func (b *Backend) UnbindVertexBuffer(slot int) { b.record(OpUnbindVertexBuffer, nil, slot, 0) }

func (b *Backend) BindIndexBuffer(buf gpu.Buffer) { b.record(OpBindIndexBuffer, buf, 0, 0) }
func (b *Backend) UnbindIndexBuffer()             { b.record(OpUnbindIndexBuffer, nil, 0, 0) }

func (b *Backend) BindUniformBuffer(binding int, buf gpu.Buffer) {
	b.record(OpBindUniformBuffer, buf, binding, 0)
}
func (b *Backend) UnbindUniformBuffer(binding int) { b.record(OpUnbindUniform, nil, binding, 0) }

func (b *Backend) BindStorageBuffer(binding int, buf gpu.Buffer) {
	b.record(OpBindStorageBuffer, buf, binding, 0)
}
func (b *Backend) UnbindStorageBuffer(binding int) { b.record(OpUnbindStorage, nil, binding, 0) }

func (b *Backend) BindShader(sh gpu.Shader) { b.record(OpBindShader, sh, 0, 0) }
func (b *Backend) UnbindShader()            { b.record(OpUnbindShader, nil, 0, 0) }

func (b *Backend) BindFramebuffer(fb gpu.Framebuffer) { b.record(OpBindFramebuffer, fb, 0, 0) }
func (b *Backend) UnbindFramebuffer()                 { b.record(OpUnbindFramebuffer, nil, 0, 0) }

func (b *Backend) BindVertexLayout(l gpu.VertexLayout) { b.record(OpBindVertexLayout, l, 0, 0) }
func (b *Backend) UnbindVertexLayout()                 { b.record(OpUnbindVertexLayout, nil, 0, 0) }

func (b *Backend) Clear(state gpu.ClearState) { b.record(OpClear, state, 0, 0) }

func (b *Backend) DrawIndexed(count int) { b.record(OpDrawIndexed, nil, 0, count) }

func (b *Backend) Dispatch(x, y, z uint32) {
	b.record(OpDispatch, [3]uint32{x, y, z}, 0, int(x*y*z))
}

func (b *Backend) SetViewport(width, height int) {
	b.record(OpSetViewport, [2]int{width, height}, 0, 0)
}
