package gpu

// Kind is the type of a GPU object model resource kind.
// A handle's kind never changes.
type Kind int

// Resource kinds, a closed set.
const (
	KVertexBuffer Kind = iota
	KIndexBuffer
	KUniformBuffer
	KStorageBuffer
	KTextureBuffer
	KTextureArrayBuffer
	KVertexArrayObject
	KRenderTarget
	KRenderPass
	KRenderPipeline
	KComputePipeline
	KRaytracePipeline
	KCommandBuffer
	KCommandQueue
	KFence
	KSemaphore
	KVideoMemory
)

// String names a Kind for diagnostics.
func (k Kind) String() string {
	switch k {
	case KVertexBuffer:
		return "VertexBuffer"
	case KIndexBuffer:
		return "IndexBuffer"
	case KUniformBuffer:
		return "UniformBuffer"
	case KStorageBuffer:
		return "StorageBuffer"
	case KTextureBuffer:
		return "TextureBuffer"
	case KTextureArrayBuffer:
		return "TextureArrayBuffer"
	case KVertexArrayObject:
		return "VertexArrayObject"
	case KRenderTarget:
		return "RenderTarget"
	case KRenderPass:
		return "RenderPass"
	case KRenderPipeline:
		return "RenderPipeline"
	case KComputePipeline:
		return "ComputePipeline"
	case KRaytracePipeline:
		return "RaytracePipeline"
	case KCommandBuffer:
		return "CommandBuffer"
	case KCommandQueue:
		return "CommandQueue"
	case KFence:
		return "Fence"
	case KSemaphore:
		return "Semaphore"
	case KVideoMemory:
		return "VideoMemory"
	default:
		panic("gpu: undefined Kind constant")
	}
}

// TextureType is the type of a texture resource.
type TextureType int

// Texture types.
const (
	Texture2D TextureType = iota
	Texture2DMultisample
	TextureCubeMap
)

// BufferType describes where a resource's memory resides.
type BufferType int

// Buffer/image memory locations.
const (
	// HostVisible memory can be mapped and accessed by the CPU.
	HostVisible BufferType = iota
	// DeviceLocal memory is not CPU-accessible.
	DeviceLocal
)

// TextureWrapping is the type of texture coordinate wrapping modes.
type TextureWrapping int

// Texture wrapping modes.
const (
	WrapRepeat TextureWrapping = iota
	WrapMirroredRepeat
	WrapClampToEdge
	WrapClampToBorder
)

// TextureFiltering is the type of texture sampling filters.
type TextureFiltering int

// Texture filters.
const (
	FilterNearest TextureFiltering = iota
	FilterLinear
)

// MipMapFiltering is the type of mipmap selection filters.
type MipMapFiltering int

// Mipmap filters.
const (
	MipMapNearest MipMapFiltering = iota
	MipMapLinear
	MipMapNone
)

// ColorFormat describes the format of a pixel.
// Backends must exhaustively handle every constant; a missing
// case is a hard error, never a silent fallback.
type ColorFormat int

// Pixel formats.
const (
	// Base formats.
	FormatR ColorFormat = iota
	FormatRG
	FormatRGB
	FormatRGBA
	FormatDepth
	FormatDepthStencil
	// Sized normalised, 8 bits per channel.
	FormatR8Unorm
	FormatRG8Unorm
	FormatRGBA8Unorm
	// Sized normalised, 16 bits per channel.
	FormatR16Unorm
	FormatRG16Unorm
	FormatRGBA16Unorm
	// Sized float.
	FormatR16Float
	FormatRG16Float
	FormatRGBA16Float
	FormatR32Float
	FormatRG32Float
	FormatRGBA32Float
	// Sized integer/unsigned.
	FormatR32Int
	FormatR32Uint
	FormatRGBA32Int
	FormatRGBA32Uint
	// Compressed variants (generic placeholder; backends select
	// the concrete block-compression representation).
	FormatCompressedRGB
	FormatCompressedRGBA
)

// DepthTestMode is the type of depth comparison functions.
type DepthTestMode int

// Depth test modes.
const (
	DepthNever DepthTestMode = iota
	DepthLess
	DepthEqual
	DepthLessEqual
	DepthGreater
	DepthNotEqual
	DepthGreaterEqual
	DepthAlways
)

// StencilMode is the type of stencil comparison functions.
type StencilMode int

// Stencil test modes.
const (
	StencilNever StencilMode = iota
	StencilLess
	StencilEqual
	StencilLessEqual
	StencilGreater
	StencilNotEqual
	StencilGreaterEqual
	StencilAlways
)

// StencilAction is the type of stencil operations.
type StencilAction int

// Stencil actions.
const (
	StencilKeep StencilAction = iota
	StencilZero
	StencilReplace
	StencilIncrClamp
	StencilDecrClamp
	StencilInvert
	StencilIncrWrap
	StencilDecrWrap
)

// FaceCullingMode is the type of face culling modes.
type FaceCullingMode int

// Face culling modes.
const (
	CullNone FaceCullingMode = iota
	CullFront
	CullBack
)

// BlendMode is the type of blend factors.
type BlendMode int

// Blend factors.
const (
	BlendZero BlendMode = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// BlendEquation is the type of blend equations.
type BlendEquation int

// Blend equations.
const (
	BlendAdd BlendEquation = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

// AttribType is the type of a vertex/instance attribute shape.
type AttribType int

// Attribute shapes.
const (
	AttribScalar AttribType = iota
	AttribVec2
	AttribVec3
	AttribVec4
	AttribMat2
	AttribMat3
	AttribMat4
)

// AttribComponent is the type of the scalar components that make
// up a vertex/instance attribute.
type AttribComponent int

// Attribute component types.
const (
	CompU8 AttribComponent = iota
	CompI8
	CompU32
	CompI32
	CompF32
	CompF64
)

// BindingKind is the type of a shader-resource binding declared
// by a pipeline.
type BindingKind int

// Binding kinds.
const (
	BindTexture BindingKind = iota
	BindUniform
	BindStorage
	BindImage
)

// AccessMode is the type of a per-stage shader-resource access mode.
type AccessMode int

// Access modes.
const (
	AccessRead AccessMode = iota
	AccessWrite
	AccessReadWrite
)

// IndexType describes the format of index buffer data.
type IndexType int

// Index formats.
const (
	IndexU16 IndexType = iota
	IndexU32
)

// Primitive is the type of primitive topology a pipeline assembles.
type Primitive int

// Primitive topologies.
const (
	PrimPoint Primitive = iota
	PrimLine
	PrimLineStrip
	PrimTriangle
	PrimTriangleStrip
)

// vertCount returns the number of vertices in one primitive of the
// given topology, used to derive polygon counts from element counts.
func (p Primitive) vertCount() int {
	switch p {
	case PrimPoint:
		return 1
	case PrimLine, PrimLineStrip:
		return 2
	case PrimTriangle, PrimTriangleStrip:
		return 3
	default:
		panic("gpu: undefined Primitive constant")
	}
}

// Usage is a mask indicating valid uses for a resource.
type Usage int

// Usage flags.
const (
	UShaderRead Usage = 1 << iota
	UShaderWrite
	UVertexData
	UIndexData
	URenderTarget
	UCopySrc
	UCopyDst
	UGeneric Usage = 1<<iota - 1
)
