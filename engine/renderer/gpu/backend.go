package gpu

// TextureDescriptor describes a texture to allocate.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format ColorFormat
	Filter TextureFilter
	Usage  TextureUsage
	Mipmap bool
}

// BufferDescriptor describes a buffer to allocate.
type BufferDescriptor struct {
	Label string
	Type  BufferType
	Usage BufferUsage
	// Size is the allocation size in bytes. When zero the size of the initial data is used.
	Size uint64
	// Stride is the size of one element, used when the buffer is bound as a vertex buffer.
	Stride uint32
}

// ShaderDescriptor holds the source of every stage of a shader program.
// A compute program sets only ComputeSource.
type ShaderDescriptor struct {
	Label          string
	VertexSource   string
	FragmentSource string
	ComputeSource  string
}

// IsCompute reports whether the descriptor describes a compute-only program.
func (d ShaderDescriptor) IsCompute() bool {
	return d.ComputeSource != ""
}

// Backend is the native graphics API beneath the resource handles, the binding cache and
// the renderer. Native objects are opaque to callers; handles pass them back to the same
// backend that created them.
//
// Binding calls are issued unconditionally; redundant-bind elimination is the job of the
// binding cache that sits in front of the backend. All methods are called from the single
// rendering goroutine.
type Backend interface {
	// CreateTexture allocates a texture.
	//
	// Parameters:
	//   - desc: the texture size, format, filter and usage
	//
	// Returns:
	//   - any: the native texture object
	//   - error: if allocation fails
	CreateTexture(desc TextureDescriptor) (any, error)

	// WriteTexture uploads the full pixel data of a texture. len(data) always equals
	// Width*Height*Format.BytesPerPixel().
	//
	// Parameters:
	//   - native: the native texture from CreateTexture
	//   - desc: the descriptor the texture was created with
	//   - data: the tightly packed pixel rows
	WriteTexture(native any, desc TextureDescriptor, data []byte)

	// ReleaseTexture frees a native texture.
	ReleaseTexture(native any)

	// CreateBuffer allocates a buffer of desc.Size bytes and uploads data, which may be nil.
	//
	// Parameters:
	//   - desc: the buffer size, roles and usage hint
	//   - data: the initial contents, at most desc.Size bytes
	//
	// Returns:
	//   - any: the native buffer object
	//   - error: if allocation fails
	CreateBuffer(desc BufferDescriptor, data []byte) (any, error)

	// WriteBuffer overwrites part of a buffer. offset+len(data) never exceeds the buffer size.
	//
	// Parameters:
	//   - native: the native buffer from CreateBuffer
	//   - offset: the byte offset to start writing at
	//   - data: the bytes to write
	WriteBuffer(native any, offset uint64, data []byte)

	// ReleaseBuffer frees a native buffer.
	ReleaseBuffer(native any)

	// CreateShader compiles and links a shader program and reflects its inputs.
	//
	// Parameters:
	//   - desc: the program sources
	//
	// Returns:
	//   - any: the native program object
	//   - Reflection: the declared inputs and entry points
	//   - error: if compilation or linking fails
	CreateShader(desc ShaderDescriptor) (any, Reflection, error)

	// ReleaseShader frees a native shader program.
	ReleaseShader(native any)

	// CreateFramebuffer builds a render target from color attachments and an optional
	// depth/stencil attachment. A framebuffer is returned even when it is incomplete.
	//
	// Parameters:
	//   - colors: the color attachments in attachment order
	//   - depth: the depth/stencil attachment, possibly uninitialized
	//
	// Returns:
	//   - any: the native framebuffer object
	//   - FramebufferStatus: the completeness of the result
	//   - error: if the native object could not be created at all
	CreateFramebuffer(colors []Texture2D, depth Texture2D) (any, FramebufferStatus, error)

	// ReleaseFramebuffer frees a native framebuffer.
	ReleaseFramebuffer(native any)

	BindTexture(unit int, tex Texture2D, usage TextureUsage)
	UnbindTexture(unit int)
	BindVertexBuffer(slot int, buf Buffer)
	UnbindVertexBuffer(slot int)
	BindIndexBuffer(buf Buffer)
	UnbindIndexBuffer()
	BindUniformBuffer(binding int, buf Buffer)
	UnbindUniformBuffer(binding int)
	BindStorageBuffer(binding int, buf Buffer)
	UnbindStorageBuffer(binding int)
	BindShader(sh Shader)
	UnbindShader()
	BindFramebuffer(fb Framebuffer)
	UnbindFramebuffer()
	BindVertexLayout(layout VertexLayout)
	UnbindVertexLayout()

	// Clear clears the bound render target according to state.
	Clear(state ClearState)

	// DrawIndexed draws count indices as a triangle list from the bound index and vertex
	// buffers with the bound shader.
	DrawIndexed(count int)

	// Dispatch runs the bound compute shader over the given number of workgroups.
	Dispatch(x, y, z uint32)

	// SetViewport resizes the default render target.
	SetViewport(width, height int)
}
