// Package framegraph implements the declarative per-frame builder
// and its allocator/runtime counterpart. A Builder records what a
// frame's passes want to create and do; an Allocator realises those
// declarations against a gpu.Device and runs them.
package framegraph

import (
	"fmt"

	"github.com/gviegas/rgcore/gpu"
	"github.com/gviegas/rgcore/scene"
)

// Handle identifies a frame-local resource recorded by a Builder. It
// is not a device object: Allocator.Execute maps it to one.
type Handle int

// noHandle is the zero Handle; no create* call ever returns it.
const noHandle Handle = 0

// BackBuffer is the reserved handle identifying the implicit
// back-buffer render target. Passes pass it to BeginPass wherever
// they mean to draw to the screen.
const BackBuffer Handle = -1

// Settings is the typed key-value map the core recognises.
type Settings struct {
	RenderScale           float32
	RenderSamples         int
	ShadowPointResolution gpu.Dim2D
}

// DefaultSettings returns the documented default for every setting.
func DefaultSettings() Settings {
	return Settings{
		RenderScale:           1.0,
		RenderSamples:         1,
		ShadowPointResolution: gpu.Dim2D{Width: 2048, Height: 2048},
	}
}

// BackBufferDesc is the persisted back-buffer description supplied
// to the builder.
type BackBufferDesc struct {
	Size                  gpu.Dim2D
	Samples               int
	NumColorAttachments   int
	HasDepthStencilAttach bool
}

// Signature returns the attachment signature a pass must declare to
// legally begin against the back buffer.
func (d BackBufferDesc) Signature() gpu.AttachmentSignature {
	return gpu.AttachmentSignature{NumColorAttachments: d.NumColorAttachments, HasDepthStencilAttach: d.HasDepthStencilAttach}
}

// ShaderStage names a frame-local shader code handle and its
// entry-point, standing in for gpu.ShaderEntry until the handle is
// realised.
type ShaderStage struct {
	Code  Handle
	Entry string
}

// RenderPipelineDesc mirrors gpu.RenderPipelineDesc with shader code
// referenced by Handle instead of by gpu.ShaderCode, since the real
// object does not exist until the allocator realises it.
type RenderPipelineDesc struct {
	Stages         map[gpu.Stage]ShaderStage
	Bindings       []gpu.BindingKind
	Primitive      gpu.Primitive
	VertexLayout   gpu.Layout
	InstanceLayout gpu.Layout
	Raster         gpu.RasterState
	DepthStencil   gpu.DepthStencilState
	Blend          []gpu.BlendState
	Multisample    gpu.MultisampleState
}

// ComputePipelineDesc is the Handle-based counterpart of
// gpu.ComputePipelineDesc.
type ComputePipelineDesc struct {
	Shader   ShaderStage
	Bindings []gpu.BindingKind
}

// ResourceRef is the Handle-based counterpart of gpu.ShaderResource.
// AsImage binds a texture handle as a read/write image (gpu.BindImage)
// instead of a sampled texture; it has no effect on handles that
// don't resolve to a texture.
type ResourceRef struct {
	Handle  Handle
	Access  map[gpu.Stage]gpu.AccessMode
	AsImage bool
}

// Pass is implemented by one frame-graph pass. Setup records the
// pass's declarative calls against b; it must not retain b past the
// call.
type Pass interface {
	Name() string
	Setup(b *Builder)
}

// op is a single recorded declarative call: a (kind, payload) tagged
// struct, the frame-graph-level counterpart of gpu.Command. A tagged
// union gives a single dispatch point instead of per-call virtual
// dispatch.
type op struct {
	kind opKind

	// Primary/secondary handles: meaning depends on kind (created
	// handle for create* ops; dst/src for copy and blit; pass/target
	// for beginPass; pipeline or VAO for binds).
	handle  Handle
	handle2 Handle

	// Extra handles for createVertexArrayObject.
	vertexH, instanceH, indexH Handle

	textureDesc      gpu.TextureDesc
	textureArrayDesc gpu.TextureArrayDesc
	bufferDesc       gpu.BufferDesc
	vaoDesc          gpu.VAODesc
	renderTargetDesc gpu.RenderTargetDesc
	renderPassDesc   gpu.RenderPassDesc
	samplerDesc      gpu.Sampling
	renderPipeline   RenderPipelineDesc
	computePipeline  ComputePipelineDesc
	shaderData       []byte

	uploadFn func() []byte

	readOff, writeOff, count int64
	copyTex                  gpu.CopyTextureParam

	blitSrcOffset, blitDstOffset [2]int
	blitSrcRect, blitDstRect     [2]int
	filter                       gpu.TextureFiltering

	clearColor gpu.ClearColorParam
	clearDepth float32

	viewOffset, viewSize [2]int

	resources []ResourceRef

	draw          gpu.DrawCall
	instanceCount int
	baseVertex    int
	multiDraws    []gpu.DrawCall
	baseVertices  []int

	numGroups [3]int
}

type opKind int

const (
	opNone opKind = iota
	opCreateTexture
	opCreateTextureArray
	opCreateVertexBuffer
	opCreateIndexBuffer
	opCreateUniformBuffer
	opCreateStorageBuffer
	opCreateVertexArrayObject
	opCreateRenderTarget
	opCreateRenderPass
	opCreateRenderPipeline
	opCreateComputePipeline
	opCreateSampler
	opCreateShaderCode
	opUpload
	opCopyBuffer
	opCopyTexture
	opCopyTextureArray
	opBlitColor
	opBlitDepth
	opBlitStencil
	opBeginPass
	opFinishPass
	opClearColor
	opClearDepth
	opSetViewport
	opBindPipeline
	opBindComputePipeline
	opBindVertexArrayObject
	opBindShaderResources
	opComputeExecute
	opDrawArray
	opDrawIndexed
	opDrawArrayInstanced
	opDrawIndexedInstanced
	opDrawArrayMulti
	opDrawIndexedMulti
	opDrawIndexedBaseVertex
	opDrawIndexedInstancedBaseVertex
	opDrawIndexedMultiBaseVertex
)

// passRecord is one pass's name plus its recorded ops, in the order
// Builder.Build visited the passes.
type passRecord struct {
	name string
	ops  []op
}

// Graph is the value a Builder produces: an ordered list of recorded
// passes plus cross-frame bookkeeping.
type Graph struct {
	backBuffer BackBufferDesc
	passes     []passRecord
	persist    map[Handle]bool
	slots      map[FrameGraphSlot]Handle
}

// Builder records one frame's declarative per-pass calls. It is not
// safe for concurrent use; set-up is single-threaded-cooperative.
type Builder struct {
	backBuffer BackBufferDesc
	limits     gpu.Limits
	scene      *scene.Scene
	settings   Settings

	persisted map[Handle]bool
	next      Handle

	// slots holds this frame's AssignSlot calls; carriedSlots seeds
	// GetSlot with whatever a previous frame assigned and persisted,
	// so a slot producer does not have to run every frame for its
	// consumers to still resolve it.
	slots        map[FrameGraphSlot]Handle
	carriedSlots map[FrameGraphSlot]Handle
	persist      map[Handle]bool

	passes []passRecord
	cur    *passRecord
}

// NewBuilder constructs a Builder for one frame. persisted is the set
// of handles that survived from the previous frame (as reported by
// Allocator.PersistedHandles); persistedSlots is the previous frame's
// slot table (as reported by Allocator.PersistedSlots). Both may be
// nil for the first frame.
func NewBuilder(backBuffer BackBufferDesc, limits gpu.Limits, sc *scene.Scene, settings Settings, persisted map[Handle]bool, persistedSlots map[FrameGraphSlot]Handle) *Builder {
	if persisted == nil {
		persisted = map[Handle]bool{}
	}
	carried := make(map[FrameGraphSlot]Handle, len(persistedSlots))
	for slot, h := range persistedSlots {
		carried[slot] = h
	}
	return &Builder{
		backBuffer:   backBuffer,
		limits:       limits,
		scene:        sc,
		settings:     settings,
		persisted:    persisted,
		next:         1,
		slots:        map[FrameGraphSlot]Handle{},
		carriedSlots: carried,
		persist:      map[Handle]bool{},
	}
}

// Scene returns the const scene reference the frame draws from.
func (b *Builder) Scene() *scene.Scene { return b.scene }

// Settings returns the frame's settings.
func (b *Builder) Settings() Settings { return b.settings }

// Limits returns the device limits the builder was constructed with.
func (b *Builder) Limits() gpu.Limits { return b.limits }

// BackBufferDesc returns the persisted back-buffer description.
func (b *Builder) BackBufferDesc() BackBufferDesc { return b.backBuffer }

// Build records every pass's declarative calls, in the given order,
// and returns the resulting frame-graph value. Passes are recorded
// into one shared Builder so that a later pass's getSlot sees an
// earlier pass's assignSlot within the same frame, or one carried
// over from the previous frame via persistedSlots.
func Build(backBuffer BackBufferDesc, limits gpu.Limits, sc *scene.Scene, settings Settings, persisted map[Handle]bool, persistedSlots map[FrameGraphSlot]Handle, passes []Pass) *Graph {
	b := NewBuilder(backBuffer, limits, sc, settings, persisted, persistedSlots)
	for _, p := range passes {
		b.passes = append(b.passes, passRecord{name: p.Name()})
		b.cur = &b.passes[len(b.passes)-1]
		p.Setup(b)
	}
	b.cur = nil
	return &Graph{backBuffer: backBuffer, passes: b.passes, persist: b.persist, slots: b.mergedSlots()}
}

// mergedSlots returns the frame's effective slot table: carriedSlots
// overridden by whatever this frame's passes assigned.
func (b *Builder) mergedSlots() map[FrameGraphSlot]Handle {
	out := make(map[FrameGraphSlot]Handle, len(b.carriedSlots)+len(b.slots))
	for slot, h := range b.carriedSlots {
		out[slot] = h
	}
	for slot, h := range b.slots {
		out[slot] = h
	}
	return out
}

func (b *Builder) record(o op) {
	b.cur.ops = append(b.cur.ops, o)
}

// alloc returns a fresh frame-local handle: a monotonic counter,
// skipping any IDs still alive as persistent handles from a
// previous frame.
func (b *Builder) alloc() Handle {
	for b.persisted[b.next] {
		b.next++
	}
	h := b.next
	b.next++
	return h
}

// CreateTexture records a texture creation and returns its handle.
func (b *Builder) CreateTexture(desc gpu.TextureDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateTexture, handle: h, textureDesc: desc})
	return h
}

// CreateTextureArrayBuffer records a texture array creation.
func (b *Builder) CreateTextureArrayBuffer(desc gpu.TextureArrayDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateTextureArray, handle: h, textureArrayDesc: desc})
	return h
}

// CreateVertexBuffer records a vertex buffer creation.
func (b *Builder) CreateVertexBuffer(desc gpu.BufferDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateVertexBuffer, handle: h, bufferDesc: desc})
	return h
}

// CreateIndexBuffer records an index buffer creation.
func (b *Builder) CreateIndexBuffer(desc gpu.BufferDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateIndexBuffer, handle: h, bufferDesc: desc})
	return h
}

// CreateShaderUniformBuffer records a uniform buffer creation.
func (b *Builder) CreateShaderUniformBuffer(desc gpu.BufferDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateUniformBuffer, handle: h, bufferDesc: desc})
	return h
}

// CreateShaderStorageBuffer records a storage buffer creation.
func (b *Builder) CreateShaderStorageBuffer(desc gpu.BufferDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateStorageBuffer, handle: h, bufferDesc: desc})
	return h
}

// CreateVertexArrayObject records a VAO creation binding the given
// buffer handles (instance/index may be noHandle if unused).
func (b *Builder) CreateVertexArrayObject(desc gpu.VAODesc, vertex, instance, index Handle) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateVertexArrayObject, handle: h, vaoDesc: desc, vertexH: vertex, instanceH: instance, indexH: index})
	return h
}

// CreateRenderTarget records a render target creation.
func (b *Builder) CreateRenderTarget(desc gpu.RenderTargetDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateRenderTarget, handle: h, renderTargetDesc: desc})
	return h
}

// CreateRenderPass records a render pass creation.
func (b *Builder) CreateRenderPass(desc gpu.RenderPassDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateRenderPass, handle: h, renderPassDesc: desc})
	return h
}

// CreateRenderPipeline records a render pipeline creation.
func (b *Builder) CreateRenderPipeline(desc RenderPipelineDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateRenderPipeline, handle: h, renderPipeline: desc})
	return h
}

// CreateComputePipeline records a compute pipeline creation.
func (b *Builder) CreateComputePipeline(desc ComputePipelineDesc) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateComputePipeline, handle: h, computePipeline: desc})
	return h
}

// CreateSampler records a sampler creation.
func (b *Builder) CreateSampler(s gpu.Sampling) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateSampler, handle: h, samplerDesc: s})
	return h
}

// CreateShaderCode records a shader code creation from data. data is
// copied by the allocator at realisation time, not by the builder.
func (b *Builder) CreateShaderCode(data []byte) Handle {
	h := b.alloc()
	b.record(op{kind: opCreateShaderCode, handle: h, shaderData: data})
	return h
}

// Upload records a deferred upload of src() into resource h, so that
// the callable is only invoked during the allocator's execution
// phase, permitting large CPU work to be deferred. Only buffer-kind
// handles (vertex, index, uniform, storage) are supported; texture
// contents are never uploaded directly, only via CopyTexture from a
// staging buffer-backed texture.
func (b *Builder) Upload(h Handle, src func() []byte) {
	b.record(op{kind: opUpload, handle: h, uploadFn: src})
}

// Copy records a byte-range copy between two buffer-kind handles.
func (b *Builder) Copy(src, dst Handle, readOff, writeOff, count int64) {
	b.record(op{kind: opCopyBuffer, handle: dst, handle2: src, readOff: readOff, writeOff: writeOff, count: count})
}

// CopyTexture records a region copy between two texture handles.
func (b *Builder) CopyTexture(src, dst Handle, srcOff, dstOff, extent gpu.Offset3D) {
	b.record(op{kind: opCopyTexture, handle: dst, handle2: src, copyTex: gpu.CopyTextureParam{SourceOffset: srcOff, TargetOffset: dstOff, Extent: extent}})
}

// CopyTextureArray records a region copy between two texture-array
// handles, at the given layers.
func (b *Builder) CopyTextureArray(src, dst Handle, srcOff, dstOff, extent gpu.Offset3D, srcLayer, dstLayer int) {
	b.record(op{
		kind:    opCopyTextureArray,
		handle:  dst,
		handle2: src,
		copyTex: gpu.CopyTextureParam{SourceOffset: srcOff, TargetOffset: dstOff, Extent: extent, SourceLayer: srcLayer, TargetLayer: dstLayer},
	})
}

// BlitColor records a color-aspect blit from src to dst. Either
// handle may be BackBuffer.
func (b *Builder) BlitColor(src, dst Handle, srcOffset, dstOffset, srcRect, dstRect [2]int, filter gpu.TextureFiltering) {
	b.record(op{kind: opBlitColor, handle: dst, handle2: src, blitSrcOffset: srcOffset, blitDstOffset: dstOffset, blitSrcRect: srcRect, blitDstRect: dstRect, filter: filter})
}

// BlitDepth is the depth-aspect equivalent of BlitColor.
func (b *Builder) BlitDepth(src, dst Handle, srcOffset, dstOffset, srcRect, dstRect [2]int, filter gpu.TextureFiltering) {
	b.record(op{kind: opBlitDepth, handle: dst, handle2: src, blitSrcOffset: srcOffset, blitDstOffset: dstOffset, blitSrcRect: srcRect, blitDstRect: dstRect, filter: filter})
}

// BlitStencil is the stencil-aspect equivalent of BlitColor.
func (b *Builder) BlitStencil(src, dst Handle, srcOffset, dstOffset, srcRect, dstRect [2]int, filter gpu.TextureFiltering) {
	b.record(op{kind: opBlitStencil, handle: dst, handle2: src, blitSrcOffset: srcOffset, blitDstOffset: dstOffset, blitSrcRect: srcRect, blitDstRect: dstRect, filter: filter})
}

// BeginPass records the start of a render pass against target.
// target may be BackBuffer.
func (b *Builder) BeginPass(pass, target Handle) {
	b.record(op{kind: opBeginPass, handle: pass, handle2: target})
}

// FinishPass records the end of the current render pass.
func (b *Builder) FinishPass() {
	b.record(op{kind: opFinishPass})
}

// ClearColor records a clear of every color attachment.
func (b *Builder) ClearColor(c gpu.ClearColorParam) {
	b.record(op{kind: opClearColor, clearColor: c})
}

// ClearDepth records a clear of the depth attachment.
func (b *Builder) ClearDepth(depth float32) {
	b.record(op{kind: opClearDepth, clearDepth: depth})
}

// SetViewport records a viewport change.
func (b *Builder) SetViewport(offset, size [2]int) {
	b.record(op{kind: opSetViewport, viewOffset: offset, viewSize: size})
}

// BindPipeline records binding a render pipeline handle as current.
// Use BindComputePipeline for compute pipelines.
func (b *Builder) BindPipeline(h Handle) {
	b.record(op{kind: opBindPipeline, handle: h})
}

// BindComputePipeline records binding a compute pipeline handle as
// current.
func (b *Builder) BindComputePipeline(h Handle) {
	b.record(op{kind: opBindComputePipeline, handle: h})
}

// Dispatch records a compute dispatch of numGroups work groups.
func (b *Builder) Dispatch(numGroups [3]int) {
	b.record(op{kind: opComputeExecute, numGroups: numGroups})
}

// BindVertexArrayObject records binding a VAO handle as current.
func (b *Builder) BindVertexArrayObject(h Handle) {
	b.record(op{kind: opBindVertexArrayObject, handle: h})
}

// BindShaderResources records binding a list of resource references.
func (b *Builder) BindShaderResources(res []ResourceRef) {
	b.record(op{kind: opBindShaderResources, resources: res})
}

// DrawArray records an unindexed, non-instanced draw.
func (b *Builder) DrawArray(offset, count int) {
	b.record(op{kind: opDrawArray, draw: gpu.DrawCall{Offset: offset, Count: count}})
}

// DrawIndexed records an indexed, non-instanced draw.
func (b *Builder) DrawIndexed(call gpu.DrawCall) {
	b.record(op{kind: opDrawIndexed, draw: call})
}

// DrawArrayInstanced records an unindexed, instanced draw.
func (b *Builder) DrawArrayInstanced(offset, count, instances int) {
	b.record(op{kind: opDrawArrayInstanced, draw: gpu.DrawCall{Offset: offset, Count: count}, instanceCount: instances})
}

// DrawIndexedInstanced records an indexed, instanced draw.
func (b *Builder) DrawIndexedInstanced(call gpu.DrawCall, instances int) {
	b.record(op{kind: opDrawIndexedInstanced, draw: call, instanceCount: instances})
}

// DrawArrayMulti records an unindexed multi-draw.
func (b *Builder) DrawArrayMulti(calls []gpu.DrawCall) {
	b.record(op{kind: opDrawArrayMulti, multiDraws: calls})
}

// DrawIndexedMulti records an indexed multi-draw.
func (b *Builder) DrawIndexedMulti(calls []gpu.DrawCall) {
	b.record(op{kind: opDrawIndexedMulti, multiDraws: calls})
}

// DrawIndexedBaseVertex records an indexed draw with a base-vertex
// offset.
func (b *Builder) DrawIndexedBaseVertex(call gpu.DrawCall, baseVertex int) {
	b.record(op{kind: opDrawIndexedBaseVertex, draw: call, baseVertex: baseVertex})
}

// DrawIndexedInstancedBaseVertex combines instancing with a
// base-vertex offset.
func (b *Builder) DrawIndexedInstancedBaseVertex(call gpu.DrawCall, instances, baseVertex int) {
	b.record(op{kind: opDrawIndexedInstancedBaseVertex, draw: call, instanceCount: instances, baseVertex: baseVertex})
}

// DrawIndexedMultiBaseVertex is the multi-draw, indexed,
// per-call-base-vertex variant.
func (b *Builder) DrawIndexedMultiBaseVertex(calls []gpu.DrawCall, baseVertices []int) {
	b.record(op{kind: opDrawIndexedMultiBaseVertex, multiDraws: calls, baseVertices: baseVertices})
}

// Persist marks h to survive into the next frame behind a stable
// handle. Persistence is a per-frame flag; it is not sticky and
// must be re-declared each frame to continue.
func (b *Builder) Persist(h Handle) {
	b.persist[h] = true
}

// AssignSlot binds slot to h for the remainder of the frame. It
// fails if slot was already assigned this frame.
func (b *Builder) AssignSlot(slot FrameGraphSlot, h Handle) error {
	if _, ok := b.slots[slot]; ok {
		return fmt.Errorf("%w: slot %d already assigned this frame", gpu.ErrUnboundSlot, slot)
	}
	b.slots[slot] = h
	return nil
}

// GetSlot resolves slot to the handle its producer assigned earlier
// in the same frame, or, failing that, to whatever handle a previous
// frame assigned and persisted. It fails if neither source has it.
func (b *Builder) GetSlot(slot FrameGraphSlot) (Handle, error) {
	if h, ok := b.slots[slot]; ok {
		return h, nil
	}
	if h, ok := b.carriedSlots[slot]; ok {
		return h, nil
	}
	return noHandle, fmt.Errorf("%w: slot %d has no producer this frame and none carried over from the previous one", gpu.ErrUnboundSlot, slot)
}
