package gpu

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// Dim2D is a two-dimensional size.
type Dim2D struct{ Width, Height int }

// hasher accumulates a descriptor's fields into a stable FNV-1a
// hash, grounded on the descriptor-hash pipeline cache pattern
// used by the gogpu-gg backend (fnv + binary encoding of fields).
type hasher struct{ h hash.Hash64 }

func newHasher() *hasher {
	return &hasher{h: fnv.New64a()}
}

func (hh *hasher) u64(v uint64) *hasher {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	hh.h.Write(b[:])
	return hh
}

func (hh *hasher) i(v int) *hasher    { return hh.u64(uint64(v)) }
func (hh *hasher) b(v bool) *hasher   { return hh.u64(boolU64(v)) }
func (hh *hasher) f32(v float32) *hasher {
	return hh.u64(uint64(math.Float32bits(v)))
}
func (hh *hasher) str(s string) *hasher {
	hh.h.Write([]byte(s))
	return hh
}
func (hh *hasher) sum() uint64 { return hh.h.Sum64() }

func boolU64(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// TextureDesc describes a 2D/cube/multisample texture resource.
type TextureDesc struct {
	Size                Dim2D
	Samples             int
	TextureType         TextureType
	Format              ColorFormat
	Wrapping            TextureWrapping
	FilterMin           TextureFiltering
	FilterMag           TextureFiltering
	MipMapLevels        int
	MipMapFilter        MipMapFiltering
	BorderColor         [4]float32
	BufferType          BufferType
	GenerateMipmap      bool
	FixedSampleLocations bool
}

// Hash returns a stable hash of d's fields, suitable for use as a
// cache key.
func (d *TextureDesc) Hash() uint64 {
	hh := newHasher()
	hh.i(d.Size.Width).i(d.Size.Height).i(d.Samples).i(int(d.TextureType)).
		i(int(d.Format)).i(int(d.Wrapping)).i(int(d.FilterMin)).i(int(d.FilterMag)).
		i(d.MipMapLevels).i(int(d.MipMapFilter)).i(int(d.BufferType)).
		b(d.GenerateMipmap).b(d.FixedSampleLocations)
	for _, c := range d.BorderColor {
		hh.f32(c)
	}
	return hh.sum()
}

// TextureArrayDesc describes an array of identically-shaped textures.
type TextureArrayDesc struct {
	TextureDesc
	TextureCount int
}

// Hash returns a stable hash of d's fields.
func (d *TextureArrayDesc) Hash() uint64 {
	hh := newHasher()
	hh.u64(d.TextureDesc.Hash()).i(d.TextureCount)
	return hh.sum()
}

// BufferDesc describes a vertex, index, uniform or storage buffer.
type BufferDesc struct {
	Size       int64
	BufferType BufferType
}

// Hash returns a stable hash of d's fields.
func (d *BufferDesc) Hash() uint64 {
	return newHasher().u64(uint64(d.Size)).i(int(d.BufferType)).sum()
}

// Attrib describes one vertex or instance attribute.
type Attrib struct {
	Type      AttribType
	Component AttribComponent
}

// Layout is an ordered sequence of attributes read from a single
// buffer binding.
type Layout []Attrib

// Hash returns a stable hash of the layout's fields.
func (l Layout) Hash() uint64 {
	hh := newHasher()
	hh.i(len(l))
	for _, a := range l {
		hh.i(int(a.Type)).i(int(a.Component))
	}
	return hh.sum()
}

// Equal reports whether l and o describe the same attribute sequence.
func (l Layout) Equal(o Layout) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if l[i] != o[i] {
			return false
		}
	}
	return true
}

// VAODesc describes a vertex array object: the vertex layout and
// an optional instance-array layout.
type VAODesc struct {
	VertexLayout   Layout
	InstanceLayout Layout // nil if unused
}

// Hash returns a stable hash of d's fields.
func (d *VAODesc) Hash() uint64 {
	return newHasher().u64(d.VertexLayout.Hash()).u64(d.InstanceLayout.Hash()).sum()
}

// StencilFace describes one face's stencil test parameters.
type StencilFace struct {
	Func       StencilMode
	Fail       StencilAction
	DepthFail  StencilAction
	Pass       StencilAction
}

// DepthStencilState is the fixed-function depth/stencil state of a
// graphics pipeline.
type DepthStencilState struct {
	DepthTest   bool
	DepthWrite  bool
	DepthFunc   DepthTestMode
	StencilTest bool
	StencilMask uint32
	StencilRef  uint32
	Front       StencilFace
	Back        StencilFace
}

// BlendState is the fixed-function blend state for one color
// attachment.
type BlendState struct {
	Enable         bool
	ColorSrc       BlendMode
	ColorDst       BlendMode
	ColorEquation  BlendEquation
	AlphaSrc       BlendMode
	AlphaDst       BlendMode
	AlphaEquation  BlendEquation
}

// RasterState is the fixed-function rasterization state.
type RasterState struct {
	Cull     FaceCullingMode
	Clockwise bool
}

// MultisampleState is the fixed-function MSAA state.
type MultisampleState struct {
	Enable  bool
	Samples int
}

// ShaderEntry names a shader blob and its entry-point function.
type ShaderEntry struct {
	Code  ShaderCode
	Entry string
}

// Stage is a mask of programmable shader stages.
type Stage int

// Stages.
const (
	StageVertex Stage = 1 << iota
	StageFragment
	StageCompute
)

// RenderPipelineDesc describes a complete graphics pipeline: shader
// stages, binding layout, vertex input and fixed-function state.
type RenderPipelineDesc struct {
	Stages         map[Stage]ShaderEntry
	Bindings       []BindingKind
	Primitive      Primitive
	VertexLayout   Layout
	InstanceLayout Layout
	Raster         RasterState
	DepthStencil   DepthStencilState
	Blend          []BlendState // one per color attachment
	Multisample    MultisampleState
}

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	Shader   ShaderEntry
	Bindings []BindingKind
}

// RenderTargetDesc describes the render target a pass draws into.
type RenderTargetDesc struct {
	Size                  Dim2D
	Multisample           bool
	Samples               int
	NumColorAttachments   int
	HasDepthStencilAttach bool
}

// Signature returns the attachment signature used to check
// compatibility against a RenderPassDesc.
func (d *RenderTargetDesc) Signature() AttachmentSignature {
	return AttachmentSignature{d.NumColorAttachments, d.HasDepthStencilAttach}
}

// AttachmentSignature is the (color-count, has-depth-stencil) pair
// that must match between a RenderTarget and the RenderPass begun
// against it.
type AttachmentSignature struct {
	NumColorAttachments   int
	HasDepthStencilAttach bool
}

// RenderPassDesc describes a render pass' attachment signature.
type RenderPassDesc struct {
	NumColorAttachments   int
	HasDepthStencilAttach bool
}

// Signature returns d's attachment signature.
func (d *RenderPassDesc) Signature() AttachmentSignature {
	return AttachmentSignature{d.NumColorAttachments, d.HasDepthStencilAttach}
}

// Sampling describes texture sampler state (mirrors the subset of
// TextureDesc relevant to filtering, exposed separately for
// backends that model samplers independently from textures).
type Sampling struct {
	Min      TextureFiltering
	Mag      TextureFiltering
	Mipmap   MipMapFiltering
	Wrapping TextureWrapping
}
