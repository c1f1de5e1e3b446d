package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/common"
)

type framebuffer struct {
	resource
	colors []Texture2D
	depth  Texture2D
	status FramebufferStatus
	width  uint32
	height uint32
}

// Framebuffer is a handle to a render target built from texture attachments.
// The zero value is uninitialized and stands for the default (screen) target when bound.
type Framebuffer struct {
	f *framebuffer
}

// NewFramebuffer builds a framebuffer from color attachments and an optional depth/stencil
// attachment. The framebuffer keeps a reference to each attachment until it is freed.
// Incomplete framebuffers are still returned; the status is logged and available from Status.
//
// Parameters:
//   - b: the backend to allocate on
//   - colors: the color attachments in attachment order
//   - depth: the depth/stencil attachment, or an uninitialized texture for none
//
// Returns:
//   - Framebuffer: the new handle, uninitialized if the backend could not create it
func NewFramebuffer(b Backend, colors []Texture2D, depth Texture2D) Framebuffer {
	for i, c := range colors {
		if !c.IsInit() {
			common.Assert(false, "framebuffer color attachment %d is uninitialized", i)
			return Framebuffer{}
		}
		if !c.Format().IsColor() {
			common.Logger().Warn("framebuffer color attachment has non-color format",
				"attachment", i, "format", c.Format())
		}
	}
	if depth.IsInit() && !depth.Format().IsDepth() {
		common.Logger().Warn("framebuffer depth attachment has non-depth format", "format", depth.Format())
	}

	native, status, err := b.CreateFramebuffer(colors, depth)
	if err != nil {
		common.Logger().Error("failed to create framebuffer", "err", err)
		return Framebuffer{}
	}
	if status != FramebufferComplete {
		common.Logger().Warn("framebuffer is incomplete", "status", status, "code", uint32(status))
	}

	f := &framebuffer{status: status, depth: depth.Clone()}
	for _, c := range colors {
		f.colors = append(f.colors, c.Clone())
	}
	switch {
	case len(colors) > 0:
		f.width, f.height = colors[0].Width(), colors[0].Height()
	case depth.IsInit():
		f.width, f.height = depth.Width(), depth.Height()
	}
	f.init(b, native, func(native any) {
		b.ReleaseFramebuffer(native)
		for _, c := range f.colors {
			c.Release()
		}
		f.depth.Release()
		f.colors = nil
		f.depth = Texture2D{}
	})
	return Framebuffer{f: f}
}

func (f Framebuffer) IsInit() bool {
	return f.f != nil && f.f.alive()
}

// IsComplete reports whether the framebuffer is live and usable as a render target.
func (f Framebuffer) IsComplete() bool {
	return f.IsInit() && f.f.status == FramebufferComplete
}

func (f Framebuffer) Status() FramebufferStatus {
	if f.f == nil {
		return FramebufferMissingAttachment
	}
	return f.f.status
}

func (f Framebuffer) ID() uint64 {
	if f.f == nil {
		return 0
	}
	return f.f.id
}

func (f Framebuffer) Equal(other Framebuffer) bool {
	return f.f == other.f
}

func (f Framebuffer) Clone() Framebuffer {
	if f.f != nil {
		f.f.retain()
	}
	return f
}

func (f Framebuffer) Release() {
	if f.f != nil {
		f.f.drop()
	}
}

func (f Framebuffer) Native() any {
	if f.f == nil {
		return nil
	}
	return f.f.native
}

// ColorAttachments returns the color attachments without taking references.
func (f Framebuffer) ColorAttachments() []Texture2D {
	if f.f == nil {
		return nil
	}
	return append([]Texture2D(nil), f.f.colors...)
}

// DepthAttachment returns the depth attachment without taking a reference.
func (f Framebuffer) DepthAttachment() Texture2D {
	if f.f == nil {
		return Texture2D{}
	}
	return f.f.depth
}

func (f Framebuffer) Width() uint32 {
	if f.f == nil {
		return 0
	}
	return f.f.width
}

func (f Framebuffer) Height() uint32 {
	if f.f == nil {
		return 0
	}
	return f.f.height
}

func (f Framebuffer) String() string {
	if f.f == nil {
		return "Framebuffer(screen)"
	}
	return fmt.Sprintf("Framebuffer(%d, %dx%d, %d colors, %s)", f.f.id, f.f.width, f.f.height, len(f.f.colors), f.f.status)
}
