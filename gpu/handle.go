package gpu

// Resource is the interface common to every GPU object model
// handle. A handle exclusively owns its underlying GPU object;
// Destroy releases it. Destroy must be idempotent.
type Resource interface {
	// Kind returns the resource's kind tag. It never changes
	// for the lifetime of the handle.
	Kind() Kind

	// Destroy releases the underlying GPU object. Calling it
	// more than once has no effect after the first call.
	Destroy()
}

// base is embedded by every concrete handle type to provide the
// common bookkeeping (kind tag, destroyed flag, owning device).
type base struct {
	kind    Kind
	dev     *Device
	dropped bool
}

func (b *base) Kind() Kind { return b.kind }

// dead reports whether the handle was already destroyed, which
// makes borrowed references to it dangling.
func (b *base) dead() bool { return b.dropped }

// ShaderCode is a compiled shader binary (SPIR-V, or backend-native
// bytes produced by a decompile hook).
type ShaderCode interface {
	Resource
}

type shaderCode struct {
	base
	raw any // backend-specific compiled representation
}

func (s *shaderCode) Destroy() {
	if s.dropped {
		return
	}
	s.dropped = true
}

// Raw returns the backend-specific compiled representation. Its
// concrete type is defined by whichever Backend compiled it; only
// that backend's Exec/pipeline creation should type-assert it.
func (s *shaderCode) Raw() any { return s.raw }

// Texture is a handle to a 2D/cube/multisample texture resource.
type Texture struct {
	base
	desc TextureDesc
	raw  any
}

// Description returns t's descriptor by value (descriptors are
// immutable once a resource is created).
func (t *Texture) Description() TextureDesc { return t.desc }

func (t *Texture) Destroy() {
	if t.dropped {
		return
	}
	t.dropped = true
}

// TextureArray is a handle to an array of identically-shaped
// textures.
type TextureArray struct {
	base
	desc TextureArrayDesc
	raw  any
}

func (t *TextureArray) Description() TextureArrayDesc { return t.desc }

func (t *TextureArray) Destroy() {
	if t.dropped {
		return
	}
	t.dropped = true
}

// bufferHandle is the shared shape of the four buffer kinds.
type bufferHandle struct {
	base
	desc BufferDesc
	raw  any
	// bytes is the CPU-addressable view of the buffer's storage that
	// the backend returned at creation, valid for the handle's
	// lifetime, or nil if the backend returned none. BufferType is
	// not consulted when it is stored.
	bytes []byte
}

func (b *bufferHandle) Description() BufferDesc { return b.desc }

// Bytes returns the byte slice the backend supplied as the buffer's
// host view, or nil if it supplied none. A DeviceLocal buffer still
// has a non-nil view when the backend supplies one, as both backends
// in this module do.
func (b *bufferHandle) Bytes() []byte { return b.bytes }

// Raw returns the backend-specific value produced when the buffer
// was created. Its concrete type is defined by whichever Backend
// created it; only that backend's Exec should type-assert it.
func (b *bufferHandle) Raw() any { return b.raw }

func (b *bufferHandle) Destroy() {
	if b.dropped {
		return
	}
	b.dropped = true
}

// VertexBuffer holds per-vertex attribute data.
type VertexBuffer struct{ bufferHandle }

// IndexBuffer holds index data for indexed draws.
type IndexBuffer struct{ bufferHandle }

// UniformBuffer holds constant data for shaders.
type UniformBuffer struct{ bufferHandle }

// StorageBuffer holds read/write data for shaders.
type StorageBuffer struct{ bufferHandle }

// VertexArrayObject binds a vertex buffer, optional instance
// buffer, optional index buffer, and the layouts that interpret
// them.
type VertexArrayObject struct {
	base
	desc     VAODesc
	vertex   *VertexBuffer
	instance *VertexBuffer // nil if unused
	index    *IndexBuffer  // nil if unused
	raw      any
}

// Description returns the VAO's descriptor.
func (v *VertexArrayObject) Description() VAODesc { return v.desc }

// VertexBuffer returns the bound vertex buffer.
func (v *VertexArrayObject) VertexBuffer() *VertexBuffer { return v.vertex }

// InstanceBuffer returns the bound instance buffer, or nil.
func (v *VertexArrayObject) InstanceBuffer() *VertexBuffer { return v.instance }

// IndexBuffer returns the bound index buffer, or nil.
func (v *VertexArrayObject) IndexBuffer() *IndexBuffer { return v.index }

func (v *VertexArrayObject) Destroy() {
	if v.dropped {
		return
	}
	v.dropped = true
}

// RenderTarget is a bound set of color and optional depth-stencil
// attachments matching a RenderPass.
type RenderTarget struct {
	base
	desc RenderTargetDesc
	raw  any
}

func (r *RenderTarget) Description() RenderTargetDesc { return r.desc }

// Signature returns r's attachment signature.
func (r *RenderTarget) Signature() AttachmentSignature { return r.desc.Signature() }

func (r *RenderTarget) Destroy() {
	if r.dropped {
		return
	}
	r.dropped = true
}

// RenderPipeline is a compiled, immutable combination of shaders,
// binding layout, vertex layout and fixed-function state.
type RenderPipeline struct {
	base
	desc RenderPipelineDesc
	raw  any
}

func (p *RenderPipeline) Description() RenderPipelineDesc { return p.desc }

func (p *RenderPipeline) Destroy() {
	if p.dropped {
		return
	}
	p.dropped = true
}

// ComputePipeline is a compiled compute shader plus its binding
// layout.
type ComputePipeline struct {
	base
	desc ComputePipelineDesc
	raw  any
}

func (p *ComputePipeline) Description() ComputePipelineDesc { return p.desc }

func (p *ComputePipeline) Destroy() {
	if p.dropped {
		return
	}
	p.dropped = true
}

// RaytracePipeline is declared for API completeness; raytracing
// pipeline semantics are unimplemented.
type RaytracePipeline struct {
	base
}

func (p *RaytracePipeline) Destroy() {
	if p.dropped {
		return
	}
	p.dropped = true
}

// Sampler describes the filtering/wrapping state used to read a
// texture in a shader.
type Sampler struct {
	base
	desc Sampling
	raw  any
}

func (s *Sampler) Description() Sampling { return s.desc }

func (s *Sampler) Destroy() {
	if s.dropped {
		return
	}
	s.dropped = true
}

// Memory is a handle to a block of device video memory requested
// explicitly via Device.NewMemory.
type Memory struct {
	base
	size int64
	raw  any
}

// Size returns the size in bytes of the memory block.
func (m *Memory) Size() int64 { return m.size }

func (m *Memory) Destroy() {
	if m.dropped {
		return
	}
	m.dropped = true
}
