package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/common"
)

type buffer struct {
	resource
	desc BufferDescriptor
}

// Buffer is a handle to a GPU buffer. The zero value is uninitialized.
type Buffer struct {
	b *buffer
}

// NewBuffer allocates a buffer and uploads its initial contents.
//
// Parameters:
//   - b: the backend to allocate on
//   - desc: the buffer roles, usage and size; a zero Size takes the size of data
//   - data: the initial contents, may be nil
//
// Returns:
//   - Buffer: the new handle, uninitialized on failure
func NewBuffer(b Backend, desc BufferDescriptor, data []byte) Buffer {
	if desc.Size == 0 {
		desc.Size = uint64(len(data))
	}
	if uint64(len(data)) > desc.Size {
		common.Assert(false, "buffer %q initial data %d exceeds size %d", desc.Label, len(data), desc.Size)
		return Buffer{}
	}
	native, err := b.CreateBuffer(desc, data)
	if err != nil {
		common.Logger().Error("failed to create buffer", "label", desc.Label, "size", desc.Size, "err", err)
		return Buffer{}
	}
	buf := &buffer{desc: desc}
	buf.init(b, native, b.ReleaseBuffer)
	return Buffer{b: buf}
}

// NewVertexBuffer allocates a dynamic vertex buffer with room for capacity elements of T.
func NewVertexBuffer[T any](b Backend, label string, capacity int) Buffer {
	var zero T
	stride := uint32(len(common.StructToBytes(&zero)))
	return NewBuffer(b, BufferDescriptor{
		Label:  label,
		Type:   BufferTypeVertex,
		Usage:  BufferUsageDynamic,
		Size:   uint64(capacity) * uint64(stride),
		Stride: stride,
	}, nil)
}

// NewIndexBuffer allocates a dynamic uint32 index buffer with room for capacity indices.
func NewIndexBuffer(b Backend, label string, capacity int) Buffer {
	return NewBuffer(b, BufferDescriptor{
		Label:  label,
		Type:   BufferTypeIndexU32,
		Usage:  BufferUsageDynamic,
		Size:   uint64(capacity) * 4,
		Stride: 4,
	}, nil)
}

// NewUniformBuffer allocates a uniform buffer initialized with value.
func NewUniformBuffer[T any](b Backend, label string, value *T) Buffer {
	data := common.StructToBytes(value)
	return NewBuffer(b, BufferDescriptor{
		Label: label,
		Type:  BufferTypeUniform,
		Usage: BufferUsageDynamic,
		Size:  uint64(len(data)),
	}, data)
}

// NewStorageBuffer allocates a storage buffer of size bytes initialized with data.
func NewStorageBuffer(b Backend, label string, size uint64, data []byte) Buffer {
	return NewBuffer(b, BufferDescriptor{
		Label: label,
		Type:  BufferTypeStorage,
		Usage: BufferUsageDynamic,
		Size:  size,
	}, data)
}

func (b Buffer) IsInit() bool {
	return b.b != nil && b.b.alive()
}

func (b Buffer) ID() uint64 {
	if b.b == nil {
		return 0
	}
	return b.b.id
}

func (b Buffer) Equal(other Buffer) bool {
	return b.b == other.b
}

// Clone takes an additional reference to the buffer.
func (b Buffer) Clone() Buffer {
	if b.b != nil {
		b.b.retain()
	}
	return b
}

// Release drops one reference. The native buffer is freed with the last reference.
func (b Buffer) Release() {
	if b.b != nil {
		b.b.drop()
	}
}

func (b Buffer) Native() any {
	if b.b == nil {
		return nil
	}
	return b.b.native
}

func (b Buffer) Descriptor() BufferDescriptor {
	if b.b == nil {
		return BufferDescriptor{}
	}
	return b.b.desc
}

func (b Buffer) Size() uint64     { return b.Descriptor().Size }
func (b Buffer) Stride() uint32   { return b.Descriptor().Stride }
func (b Buffer) Type() BufferType { return b.Descriptor().Type }

// SetData overwrites part of the buffer starting at offset. Writing past the end of the
// buffer is a usage error.
func (b Buffer) SetData(offset uint64, data []byte) {
	if !b.IsInit() {
		common.Assert(false, "SetData on uninitialized buffer")
		return
	}
	if offset+uint64(len(data)) > b.b.desc.Size {
		common.Assert(false, "buffer %q write of %d bytes at %d exceeds size %d",
			b.b.desc.Label, len(data), offset, b.b.desc.Size)
		return
	}
	b.b.backend.WriteBuffer(b.b.native, offset, data)
}

func (b Buffer) String() string {
	if b.b == nil {
		return "Buffer(nil)"
	}
	return fmt.Sprintf("Buffer(%d, %q, %d bytes)", b.b.id, b.b.desc.Label, b.b.desc.Size)
}
