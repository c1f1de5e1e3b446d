package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/common"
)

type texture struct {
	resource
	desc TextureDescriptor
}

// Texture2D is a handle to a two-dimensional GPU texture. The zero value is uninitialized.
type Texture2D struct {
	t *texture
}

// NewTexture2D allocates a texture. Backend failures are logged and yield an
// uninitialized handle.
//
// Parameters:
//   - b: the backend to allocate on
//   - desc: the texture description
//
// Returns:
//   - Texture2D: the new handle, uninitialized on failure
func NewTexture2D(b Backend, desc TextureDescriptor) Texture2D {
	if desc.Usage == 0 {
		desc.Usage = TextureUsageSampler
	}
	native, err := b.CreateTexture(desc)
	if err != nil {
		common.Logger().Error("failed to create texture", "label", desc.Label,
			"width", desc.Width, "height", desc.Height, "format", desc.Format, "err", err)
		return Texture2D{}
	}
	t := &texture{desc: desc}
	t.init(b, native, b.ReleaseTexture)
	return Texture2D{t: t}
}

// NewColorTexture allocates an empty RGBA8 texture usable as a color attachment.
func NewColorTexture(b Backend, width, height uint32, filter TextureFilter) Texture2D {
	return NewTexture2D(b, TextureDescriptor{
		Label: "color", Width: width, Height: height,
		Format: FormatR8G8B8A8, Filter: filter,
	})
}

// NewDepthTexture allocates a 32-bit depth texture.
func NewDepthTexture(b Backend, width, height uint32, filter TextureFilter) Texture2D {
	return NewTexture2D(b, TextureDescriptor{
		Label: "depth", Width: width, Height: height,
		Format: FormatD32, Filter: filter,
	})
}

// NewDepthStencilTexture allocates a 24-bit depth, 8-bit stencil texture.
func NewDepthStencilTexture(b Backend, width, height uint32, filter TextureFilter) Texture2D {
	return NewTexture2D(b, TextureDescriptor{
		Label: "depth_stencil", Width: width, Height: height,
		Format: FormatD24S8, Filter: filter,
	})
}

// NewStorageTexture allocates an RGBA8 texture that compute shaders can read and write.
func NewStorageTexture(b Backend, width, height uint32, filter TextureFilter) Texture2D {
	return NewTexture2D(b, TextureDescriptor{
		Label: "storage", Width: width, Height: height,
		Format: FormatR8G8B8A8, Filter: filter,
		Usage: TextureUsageSampler | TextureUsageRead | TextureUsageWrite,
	})
}

// NewRGBATexture allocates an RGBA8 texture and uploads pixels to it.
//
// Parameters:
//   - b: the backend to allocate on
//   - width, height: the texture size in pixels
//   - pixels: width*height*4 bytes of RGBA data
//   - filter: the sampling filter
//
// Returns:
//   - Texture2D: the new handle, uninitialized on failure
func NewRGBATexture(b Backend, width, height uint32, pixels []byte, filter TextureFilter) Texture2D {
	t := NewTexture2D(b, TextureDescriptor{
		Label: "rgba", Width: width, Height: height,
		Format: FormatR8G8B8A8, Filter: filter,
	})
	if t.IsInit() {
		t.SetData(pixels)
	}
	return t
}

// IsInit reports whether the handle refers to a live texture.
func (t Texture2D) IsInit() bool {
	return t.t != nil && t.t.alive()
}

// ID returns a process-unique identifier of the underlying texture, 0 when uninitialized.
func (t Texture2D) ID() uint64 {
	if t.t == nil {
		return 0
	}
	return t.t.id
}

// Equal reports whether both handles refer to the same texture.
func (t Texture2D) Equal(other Texture2D) bool {
	return t.t == other.t
}

// Clone takes an additional reference to the texture.
func (t Texture2D) Clone() Texture2D {
	if t.t != nil {
		t.t.retain()
	}
	return t
}

// Release drops one reference. The native texture is freed with the last reference.
func (t Texture2D) Release() {
	if t.t != nil {
		t.t.drop()
	}
}

// Native returns the backend object, nil when uninitialized.
func (t Texture2D) Native() any {
	if t.t == nil {
		return nil
	}
	return t.t.native
}

// Descriptor returns the description the texture was created with.
func (t Texture2D) Descriptor() TextureDescriptor {
	if t.t == nil {
		return TextureDescriptor{}
	}
	return t.t.desc
}

func (t Texture2D) Width() uint32         { return t.Descriptor().Width }
func (t Texture2D) Height() uint32        { return t.Descriptor().Height }
func (t Texture2D) Format() ColorFormat   { return t.Descriptor().Format }
func (t Texture2D) Filter() TextureFilter { return t.Descriptor().Filter }
func (t Texture2D) Usage() TextureUsage   { return t.Descriptor().Usage }
func (t Texture2D) HasMipmap() bool       { return t.Descriptor().Mipmap }

// SetData uploads the full contents of the texture. The data must be exactly
// Width*Height*BytesPerPixel bytes.
//
// Parameters:
//   - data: tightly packed pixel rows in the texture's format
func (t Texture2D) SetData(data []byte) {
	if !t.IsInit() {
		common.Assert(false, "SetData on uninitialized texture")
		return
	}
	desc := t.t.desc
	want := int(desc.Width) * int(desc.Height) * desc.Format.BytesPerPixel()
	if len(data) != want {
		common.Assert(false, "texture %q data size %d does not match %dx%d %s (%d bytes)",
			desc.Label, len(data), desc.Width, desc.Height, desc.Format, want)
		return
	}
	t.t.backend.WriteTexture(t.t.native, desc, data)
}

func (t Texture2D) String() string {
	if t.t == nil {
		return "Texture2D(nil)"
	}
	return fmt.Sprintf("Texture2D(%d, %dx%d %s)", t.t.id, t.t.desc.Width, t.t.desc.Height, t.t.desc.Format)
}
