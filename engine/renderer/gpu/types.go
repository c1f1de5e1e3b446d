package gpu

import "fmt"

// ColorFormat is the pixel format of a texture.
type ColorFormat uint32

const (
	FormatR8G8B8A8 ColorFormat = iota
	FormatR8G8B8
	FormatD32
	FormatD24S8
)

// BytesPerPixel returns the size of one texel of the format as uploaded by SetData.
func (f ColorFormat) BytesPerPixel() int {
	switch f {
	case FormatR8G8B8:
		return 3
	default:
		return 4
	}
}

// IsColor reports whether textures of this format may be used as color attachments.
func (f ColorFormat) IsColor() bool {
	return f == FormatR8G8B8A8 || f == FormatR8G8B8
}

// IsDepth reports whether textures of this format may be used as a depth/stencil attachment.
func (f ColorFormat) IsDepth() bool {
	return f == FormatD32 || f == FormatD24S8
}

func (f ColorFormat) String() string {
	switch f {
	case FormatR8G8B8A8:
		return "R8G8B8A8"
	case FormatR8G8B8:
		return "R8G8B8"
	case FormatD32:
		return "D32"
	case FormatD24S8:
		return "D24S8"
	}
	return fmt.Sprintf("ColorFormat(%d)", uint32(f))
}

// TextureFilter selects how a texture is sampled.
type TextureFilter uint32

const (
	FilterLinear TextureFilter = iota
	FilterNearest
)

// TextureUsage is a bit set describing how a texture is accessed when bound.
type TextureUsage uint32

const (
	TextureUsageSampler TextureUsage = 1 << iota
	TextureUsageRead
	TextureUsageWrite
)

// BufferUsage hints how often a buffer's contents change.
type BufferUsage uint32

const (
	BufferUsageStatic BufferUsage = iota
	BufferUsageDynamic
)

// BufferType is a bit set of the roles a buffer can be bound in.
type BufferType uint32

const (
	BufferTypeVertex BufferType = 1 << iota
	BufferTypeIndexU32
	BufferTypeUniform
	BufferTypeStorage
)

// AttributeType is the type of a single vertex attribute.
type AttributeType uint32

const (
	AttributeInt AttributeType = iota
	AttributeInt2
	AttributeInt3
	AttributeInt4
	AttributeUint
	AttributeUint2
	AttributeUint3
	AttributeUint4
	AttributeFloat
	AttributeFloat2
	AttributeFloat3
	AttributeFloat4
)

// Components returns the number of 32-bit components in the attribute.
func (a AttributeType) Components() int {
	return int(a)%4 + 1
}

// Size returns the attribute size in bytes.
func (a AttributeType) Size() uint32 {
	return uint32(a.Components()) * 4
}

// FramebufferStatus is the completeness of a framebuffer as reported by the backend.
type FramebufferStatus uint32

const (
	FramebufferComplete FramebufferStatus = iota
	FramebufferIncompleteAttachment
	FramebufferMissingAttachment
	FramebufferSizeMismatch
	FramebufferUnsupported
)

func (s FramebufferStatus) String() string {
	switch s {
	case FramebufferComplete:
		return "complete"
	case FramebufferIncompleteAttachment:
		return "incomplete attachment"
	case FramebufferMissingAttachment:
		return "missing attachment"
	case FramebufferSizeMismatch:
		return "attachment size mismatch"
	case FramebufferUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("FramebufferStatus(%d)", uint32(s))
}

// ClearState describes what a render target is cleared to when rendering begins on it.
type ClearState struct {
	Color      [4]float32
	ClearColor bool
	ClearDepth bool
}
