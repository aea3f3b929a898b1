package gpu

// CmdKind is the discriminant of a recorded Command. Commands are
// descriptions, not closures: execution semantics belong to the
// CommandQueue that interprets them, via a single switch on CmdKind.
type CmdKind int

// Command kinds.
const (
	CmdNone CmdKind = iota
	CmdBlitColor
	CmdBlitDepth
	CmdBlitStencil
	CmdBeginPass
	CmdEndPass
	CmdClearColor
	CmdClearDepth
	CmdSetViewport
	CmdDrawArray
	CmdDrawIndexed
	CmdDrawArrayInstanced
	CmdDrawIndexedInstanced
	CmdDrawArrayMulti
	CmdDrawIndexedMulti
	CmdDrawIndexedBaseVertex
	CmdDrawIndexedInstancedBaseVertex
	CmdDrawIndexedMultiBaseVertex
	CmdBindPipeline
	CmdBindShaderResources
	CmdBindVertexArrayObject
	CmdCopyTexture
	CmdCopyTextureArray
	CmdCopyIndexBuffer
	CmdCopyVertexBuffer
	CmdCopyShaderStorageBuffer
	CmdCopyShaderUniformBuffer
	CmdComputeBindPipeline
	CmdComputeExecute
	CmdDebugBeginGroup
	CmdDebugEndGroup
)

// Rect is an (offset, extent) rectangle. Extent is the size, not
// a second corner.
type Rect struct {
	Offset [2]int
	Extent [2]int
}

// Offset3D is a three-dimensional offset or extent.
type Offset3D struct{ X, Y, Z int }

// DrawCall describes an indexed draw's element range.
type DrawCall struct {
	Offset    int
	Count     int
	IndexType IndexType
}

// ShaderResource is a variant-typed reference to a texture,
// texture-array, image, uniform or storage resource, plus a
// per-stage access-mode map. Image is a *Texture bound for
// read/write shader access rather than sampling: it is a distinct
// variant from Texture even though both wrap the same resource
// type, because the two bind against different pipeline binding
// kinds (BindImage and BindTexture respectively).
type ShaderResource struct {
	Texture      *Texture
	TextureArray *TextureArray
	Image        *Texture
	Uniform      *UniformBuffer
	Storage      *StorageBuffer
	Access       map[Stage]AccessMode
}

// kind returns the BindingKind a ShaderResource satisfies.
func (r *ShaderResource) kind() (BindingKind, bool) {
	switch {
	case r.Image != nil:
		return BindImage, true
	case r.Texture != nil, r.TextureArray != nil:
		return BindTexture, true
	case r.Uniform != nil:
		return BindUniform, true
	case r.Storage != nil:
		return BindStorage, true
	default:
		return 0, false
	}
}

// BlitParam describes a color/depth/stencil blit between two
// render targets.
type BlitParam struct {
	Source       *RenderTarget
	Target       *RenderTarget
	SourceRect   Rect
	TargetRect   Rect
	SourceSize   Dim2D
	TargetSize   Dim2D
	Filter       TextureFiltering
}

// CopyBufferParam describes a copy between two buffer-like
// resources (vertex, index, uniform or storage).
type CopyBufferParam struct {
	ReadOffset  int64
	WriteOffset int64
	Count       int64
	SourceSize  int64
	TargetSize  int64
}

// CopyTextureParam describes a copy between two textures (or
// texture array slots).
type CopyTextureParam struct {
	SourceOffset Offset3D
	TargetOffset Offset3D
	Extent       Offset3D
	SourceLayer  int
	TargetLayer  int
}

// ClearColorParam is the clear color payload.
type ClearColorParam struct{ R, G, B, A float32 }

// ViewportParam is the (offset, size) viewport payload.
type ViewportParam struct {
	Offset [2]int
	Size   [2]int
}

// Command is a (kind, payload) tagged pair. Exactly one payload
// field is meaningful for a given Kind; the rest are zero.
type Command struct {
	Kind CmdKind

	// Pass begin/end.
	Pass   *RenderPass
	Target *RenderTarget

	// Clears / viewport.
	Clear    ClearColorParam
	Depth    float32
	Viewport ViewportParam

	// Binds.
	Pipeline Resource // *RenderPipeline or *ComputePipeline
	VAO      *VertexArrayObject
	Resources []ShaderResource

	// Draws.
	Draw          DrawCall
	InstanceCount int
	BaseVertex    int
	MultiDraws    []DrawCall
	BaseVertices  []int

	// Copies / blits.
	Blit       BlitParam
	CopyBuf    CopyBufferParam
	CopySrcBuf Resource // *VertexBuffer/*IndexBuffer/*UniformBuffer/*StorageBuffer
	CopyDstBuf Resource
	CopyTex    CopyTextureParam
	CopySrcTex Resource // *Texture or *TextureArray
	CopyDstTex Resource

	// Compute.
	NumGroups [3]int

	// Debug groups.
	DebugName string
}
