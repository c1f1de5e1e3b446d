package gpu

import (
	"reflect"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy2d/common"
)

// VertexAttribute is one attribute of a vertex layout. Location is the shader input
// location and equals the attribute's position in the layout.
type VertexAttribute struct {
	Location int
	Type     AttributeType
	Offset   uint32
}

type vertexLayout struct {
	id     uint64
	refs   atomic.Int32
	attrs  []VertexAttribute
	stride uint32
}

// VertexLayout is a handle describing how vertex buffer bytes map to shader inputs.
// It owns no native object; backends derive pipeline state from it.
type VertexLayout struct {
	l *vertexLayout
}

// NewVertexLayout creates a layout from attributes packed back to back.
//
// Parameters:
//   - attrs: the attribute types in location order
//
// Returns:
//   - VertexLayout: the new layout
func NewVertexLayout(attrs ...AttributeType) VertexLayout {
	l := &vertexLayout{id: lastResourceID.Add(1)}
	l.refs.Store(1)
	layout := VertexLayout{l: l}
	var offset uint32
	for _, a := range attrs {
		layout.Push(a, offset)
		offset += a.Size()
	}
	return layout
}

// VertexLayoutFrom derives a layout from the exported fields of struct T. Supported field
// types are float32, int32 and uint32 and arrays of up to four of them.
func VertexLayoutFrom[T any]() VertexLayout {
	t := reflect.TypeFor[T]()
	common.Assert(t.Kind() == reflect.Struct, "VertexLayoutFrom needs a struct, got %s", t)
	l := NewVertexLayout()
	if t.Kind() != reflect.Struct {
		return l
	}
	for i := range t.NumField() {
		f := t.Field(i)
		attr, ok := attributeOf(f.Type)
		if !ok {
			common.Assert(false, "unsupported vertex field %s.%s of type %s", t.Name(), f.Name, f.Type)
			continue
		}
		l.Push(attr, uint32(f.Offset))
	}
	l.l.stride = uint32(t.Size())
	return l
}

func attributeOf(t reflect.Type) (AttributeType, bool) {
	n := 1
	if t.Kind() == reflect.Array {
		n = t.Len()
		t = t.Elem()
	}
	if n < 1 || n > 4 {
		return 0, false
	}
	var base AttributeType
	switch t.Kind() {
	case reflect.Int32:
		base = AttributeInt
	case reflect.Uint32:
		base = AttributeUint
	case reflect.Float32:
		base = AttributeFloat
	default:
		return 0, false
	}
	return base + AttributeType(n-1), true
}

// Push appends an attribute at the given byte offset and grows the stride to cover it.
func (v VertexLayout) Push(attr AttributeType, offset uint32) {
	if v.l == nil {
		common.Assert(false, "Push on uninitialized vertex layout")
		return
	}
	v.l.attrs = append(v.l.attrs, VertexAttribute{
		Location: len(v.l.attrs),
		Type:     attr,
		Offset:   offset,
	})
	if end := offset + attr.Size(); end > v.l.stride {
		v.l.stride = end
	}
}

// Attributes returns a copy of the layout's attributes in location order.
func (v VertexLayout) Attributes() []VertexAttribute {
	if v.l == nil {
		return nil
	}
	return append([]VertexAttribute(nil), v.l.attrs...)
}

func (v VertexLayout) Stride() uint32 {
	if v.l == nil {
		return 0
	}
	return v.l.stride
}

func (v VertexLayout) IsInit() bool {
	return v.l != nil && v.l.refs.Load() > 0
}

func (v VertexLayout) ID() uint64 {
	if v.l == nil {
		return 0
	}
	return v.l.id
}

func (v VertexLayout) Equal(other VertexLayout) bool {
	return v.l == other.l
}

func (v VertexLayout) Clone() VertexLayout {
	if v.l != nil {
		v.l.refs.Add(1)
	}
	return v
}

func (v VertexLayout) Release() {
	if v.l != nil && v.l.refs.Add(-1) < 0 {
		v.l.refs.Store(0)
	}
}
