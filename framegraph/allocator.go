package framegraph

import (
	"fmt"

	"github.com/gviegas/rgcore/gpu"
)

// resolved is the variant-typed device object a Handle maps to,
// mirroring gpu.ShaderResource's "one populated field" shape, reused
// here for the frame-local handle table.
type resolved struct {
	kind Kind

	vertex       *gpu.VertexBuffer
	index        *gpu.IndexBuffer
	uniform      *gpu.UniformBuffer
	storage      *gpu.StorageBuffer
	texture      *gpu.Texture
	textureArray *gpu.TextureArray
	vao          *gpu.VertexArrayObject
	target       *gpu.RenderTarget
	pass         *gpu.RenderPass
	renderPipe   *gpu.RenderPipeline
	computePipe  *gpu.ComputePipeline
	sampler      *gpu.Sampler
	shader       gpu.ShaderCode
}

// Kind identifies which field of resolved is populated.
type Kind int

// Resolved handle kinds.
const (
	KindNone Kind = iota
	KindVertexBuffer
	KindIndexBuffer
	KindUniformBuffer
	KindStorageBuffer
	KindTexture
	KindTextureArray
	KindVAO
	KindRenderTarget
	KindRenderPass
	KindRenderPipeline
	KindComputePipeline
	KindSampler
	KindShaderCode
)

func (r resolved) resource() gpu.Resource {
	switch r.kind {
	case KindVertexBuffer:
		return r.vertex
	case KindIndexBuffer:
		return r.index
	case KindUniformBuffer:
		return r.uniform
	case KindStorageBuffer:
		return r.storage
	case KindTexture:
		return r.texture
	case KindTextureArray:
		return r.textureArray
	case KindVAO:
		return r.vao
	case KindRenderTarget:
		return r.target
	case KindRenderPass:
		return r.pass
	case KindRenderPipeline:
		return r.renderPipe
	case KindComputePipeline:
		return r.computePipe
	case KindSampler:
		return r.sampler
	case KindShaderCode:
		return r.shader
	default:
		return nil
	}
}

// bufferBytes returns the host-visible byte slice backing a
// buffer-kind resolved value, or nil if it is not a buffer.
func (r resolved) bufferBytes() []byte {
	switch r.kind {
	case KindVertexBuffer:
		return r.vertex.Bytes()
	case KindIndexBuffer:
		return r.index.Bytes()
	case KindUniformBuffer:
		return r.uniform.Bytes()
	case KindStorageBuffer:
		return r.storage.Bytes()
	default:
		return nil
	}
}

// Allocator realises the declarations a Builder recorded against a
// real gpu.Device and runs them. It also carries the persistence
// table across frames: a resource marked Persist in frame F_k is
// kept alive (and its resolved handle retained) for F_{k+1}.
type Allocator struct {
	dev       *gpu.Device
	Decompile func([]byte) (string, error) // optional, forwarded to pipeline creation

	persisted map[Handle]resolved
	slots     map[FrameGraphSlot]Handle
}

// NewAllocator returns an Allocator that realises frame graphs
// against dev.
func NewAllocator(dev *gpu.Device) *Allocator {
	return &Allocator{dev: dev, persisted: map[Handle]resolved{}, slots: map[FrameGraphSlot]Handle{}}
}

// PersistedHandles returns the set of handles currently kept alive,
// for use as the persisted argument to the next frame's NewBuilder
// (or framegraph.Build).
func (a *Allocator) PersistedHandles() map[Handle]bool {
	out := make(map[Handle]bool, len(a.persisted))
	for h := range a.persisted {
		out[h] = true
	}
	return out
}

// PersistedSlots returns the slot table carried over from the last
// Execute call, for use as the persistedSlots argument to the next
// frame's NewBuilder (or framegraph.Build). Only slots whose handle
// is still persisted survive; see commitPersistence.
func (a *Allocator) PersistedSlots() map[FrameGraphSlot]Handle {
	out := make(map[FrameGraphSlot]Handle, len(a.slots))
	for slot, h := range a.slots {
		out[slot] = h
	}
	return out
}

// Execute realises g's declared resources against the allocator's
// device, executes every pass in declaration order, and returns the
// frame's accumulated statistics. backBufferTarget is the real
// render target the BackBuffer handle resolves to.
//
// Any invariant violation fails the frame with a descriptive error;
// passes already submitted before the failure are left to complete,
// but no further pass in the frame runs.
func (a *Allocator) Execute(g *Graph, backBufferTarget *gpu.RenderTarget) (gpu.Stats, error) {
	res := make(map[Handle]resolved, len(a.persisted))
	for h, r := range a.persisted {
		res[h] = r
	}

	// Phase 1: resource realisation, across every pass, before any
	// pass executes.
	for pi := range g.passes {
		for oi := range g.passes[pi].ops {
			o := &g.passes[pi].ops[oi]
			if err := a.realize(o, res); err != nil {
				return gpu.Stats{}, fmt.Errorf("framegraph: pass %q: %w", g.passes[pi].name, err)
			}
		}
	}

	// Phase 2: pass execution, in declaration order.
	for pi := range g.passes {
		if err := a.runPass(&g.passes[pi], res, backBufferTarget); err != nil {
			return a.dev.GetFrameStats(), fmt.Errorf("framegraph: pass %q: %w", g.passes[pi].name, err)
		}
	}

	a.commitPersistence(g, res)
	return a.dev.GetFrameStats(), nil
}

func (a *Allocator) resolve(res map[Handle]resolved, h Handle) (resolved, error) {
	if h == BackBuffer {
		return resolved{}, fmt.Errorf("%w: BackBuffer must be resolved by the caller, not looked up", gpu.ErrUnknownResource)
	}
	r, ok := res[h]
	if !ok {
		return resolved{}, fmt.Errorf("%w: handle %d was not created this frame and is not persisted", gpu.ErrUnknownResource, h)
	}
	return r, nil
}

// realize instantiates a create* op against the device, storing the
// result in res. Non-create ops are left untouched.
func (a *Allocator) realize(o *op, res map[Handle]resolved) error {
	switch o.kind {
	case opCreateTexture:
		t, err := a.dev.NewTextureBuffer(o.textureDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindTexture, texture: t}

	case opCreateTextureArray:
		t, err := a.dev.NewTextureArrayBuffer(o.textureArrayDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindTextureArray, textureArray: t}

	case opCreateVertexBuffer:
		buf, err := a.dev.NewVertexBuffer(o.bufferDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindVertexBuffer, vertex: buf}

	case opCreateIndexBuffer:
		buf, err := a.dev.NewIndexBuffer(o.bufferDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindIndexBuffer, index: buf}

	case opCreateUniformBuffer:
		buf, err := a.dev.NewShaderUniformBuffer(o.bufferDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindUniformBuffer, uniform: buf}

	case opCreateStorageBuffer:
		buf, err := a.dev.NewShaderStorageBuffer(o.bufferDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindStorageBuffer, storage: buf}

	case opCreateVertexArrayObject:
		var vertex *gpu.VertexBuffer
		var instance *gpu.VertexBuffer
		var index *gpu.IndexBuffer
		if o.vertexH != noHandle {
			r, err := a.resolve(res, o.vertexH)
			if err != nil {
				return err
			}
			vertex = r.vertex
		}
		if o.instanceH != noHandle {
			r, err := a.resolve(res, o.instanceH)
			if err != nil {
				return err
			}
			instance = r.vertex
		}
		if o.indexH != noHandle {
			r, err := a.resolve(res, o.indexH)
			if err != nil {
				return err
			}
			index = r.index
		}
		vao, err := a.dev.NewVertexArrayObject(o.vaoDesc, vertex, instance, index)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindVAO, vao: vao}

	case opCreateRenderTarget:
		rt, err := a.dev.NewRenderTarget(o.renderTargetDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindRenderTarget, target: rt}

	case opCreateRenderPass:
		p, err := a.dev.NewRenderPass(o.renderPassDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindRenderPass, pass: p}

	case opCreateSampler:
		s, err := a.dev.NewSampler(o.samplerDesc)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindSampler, sampler: s}

	case opCreateShaderCode:
		s, err := a.dev.NewShaderCode(o.shaderData)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindShaderCode, shader: s}

	case opCreateRenderPipeline:
		desc, err := a.resolveRenderPipelineDesc(o.renderPipeline, res)
		if err != nil {
			return err
		}
		p, err := a.dev.NewRenderPipeline(desc, a.Decompile)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindRenderPipeline, renderPipe: p}

	case opCreateComputePipeline:
		stage, err := a.resolveShaderStage(o.computePipeline.Shader, res)
		if err != nil {
			return err
		}
		desc := gpu.ComputePipelineDesc{Shader: stage, Bindings: o.computePipeline.Bindings}
		p, err := a.dev.NewComputePipeline(desc, a.Decompile)
		if err != nil {
			return err
		}
		res[o.handle] = resolved{kind: KindComputePipeline, computePipe: p}
	}
	return nil
}

func (a *Allocator) resolveShaderStage(s ShaderStage, res map[Handle]resolved) (gpu.ShaderEntry, error) {
	r, err := a.resolve(res, s.Code)
	if err != nil {
		return gpu.ShaderEntry{}, err
	}
	return gpu.ShaderEntry{Code: r.shader, Entry: s.Entry}, nil
}

func (a *Allocator) resolveRenderPipelineDesc(d RenderPipelineDesc, res map[Handle]resolved) (gpu.RenderPipelineDesc, error) {
	stages := make(map[gpu.Stage]gpu.ShaderEntry, len(d.Stages))
	for stage, s := range d.Stages {
		entry, err := a.resolveShaderStage(s, res)
		if err != nil {
			return gpu.RenderPipelineDesc{}, err
		}
		stages[stage] = entry
	}
	return gpu.RenderPipelineDesc{
		Stages:         stages,
		Bindings:       d.Bindings,
		Primitive:      d.Primitive,
		VertexLayout:   d.VertexLayout,
		InstanceLayout: d.InstanceLayout,
		Raster:         d.Raster,
		DepthStencil:   d.DepthStencil,
		Blend:          d.Blend,
		Multisample:    d.Multisample,
	}, nil
}

// runPass translates op to pass's recorded ops into real gpu.Command
// values, submits them as one command buffer, and waits for the
// resulting fence.
func (a *Allocator) runPass(p *passRecord, res map[Handle]resolved, backBufferTarget *gpu.RenderTarget) error {
	cb, err := a.dev.NewCmdBuffer()
	if err != nil {
		return err
	}
	if err := cb.Begin(); err != nil {
		return err
	}

	for i := range p.ops {
		o := &p.ops[i]
		cmd, upload, err := a.translate(o, res, backBufferTarget)
		if err != nil {
			return err
		}
		if upload != nil {
			if err := upload(); err != nil {
				return err
			}
			continue
		}
		if cmd == nil {
			continue
		}
		if err := cb.Add(*cmd); err != nil {
			return err
		}
	}
	if err := cb.End(); err != nil {
		return err
	}

	queues := a.dev.RenderQueues()
	if len(queues) == 0 {
		return fmt.Errorf("framegraph: device has no render queue")
	}
	fence, err := queues[0].Submit([]*gpu.CmdBuffer{cb}, nil, nil)
	if err != nil {
		return err
	}
	return fence.Wait()
}

// targetOf resolves a handle that may be BackBuffer into a real
// render target.
func (a *Allocator) targetOf(res map[Handle]resolved, h Handle, backBufferTarget *gpu.RenderTarget) (*gpu.RenderTarget, error) {
	if h == BackBuffer {
		return backBufferTarget, nil
	}
	r, err := a.resolve(res, h)
	if err != nil {
		return nil, err
	}
	return r.target, nil
}

// translate converts one recorded op into a real gpu.Command, or
// into a deferred upload closure. create* ops were already realised
// in phase 1 and translate to nothing here.
func (a *Allocator) translate(o *op, res map[Handle]resolved, backBufferTarget *gpu.RenderTarget) (cmd *gpu.Command, upload func() error, err error) {
	switch o.kind {
	case opCreateTexture, opCreateTextureArray, opCreateVertexBuffer, opCreateIndexBuffer,
		opCreateUniformBuffer, opCreateStorageBuffer, opCreateVertexArrayObject, opCreateRenderTarget,
		opCreateRenderPass, opCreateRenderPipeline, opCreateComputePipeline, opCreateSampler, opCreateShaderCode:
		return nil, nil, nil

	case opUpload:
		target, err := a.resolve(res, o.handle)
		if err != nil {
			return nil, nil, err
		}
		dst := target.bufferBytes()
		if dst == nil {
			return nil, nil, fmt.Errorf("framegraph: upload target handle %d is not a host-visible buffer", o.handle)
		}
		fn := o.uploadFn
		return nil, func() error {
			src := fn()
			if len(src) > len(dst) {
				return fmt.Errorf("%w: upload of %d bytes exceeds buffer size %d", gpu.ErrInvalidRange, len(src), len(dst))
			}
			copy(dst, src)
			return nil
		}, nil

	case opCopyBuffer:
		dst, err := a.resolve(res, o.handle)
		if err != nil {
			return nil, nil, err
		}
		src, err := a.resolve(res, o.handle2)
		if err != nil {
			return nil, nil, err
		}
		c, err := copyBufferCmd(src, dst, o.readOff, o.writeOff, o.count)
		return &c, nil, err

	case opCopyTexture:
		dst, err := a.resolve(res, o.handle)
		if err != nil {
			return nil, nil, err
		}
		src, err := a.resolve(res, o.handle2)
		if err != nil {
			return nil, nil, err
		}
		c := gpu.CopyTexture(src.texture, dst.texture, o.copyTex.SourceOffset, o.copyTex.TargetOffset, o.copyTex.Extent)
		return &c, nil, nil

	case opCopyTextureArray:
		dst, err := a.resolve(res, o.handle)
		if err != nil {
			return nil, nil, err
		}
		src, err := a.resolve(res, o.handle2)
		if err != nil {
			return nil, nil, err
		}
		c := gpu.CopyTextureArray(src.textureArray, dst.textureArray, o.copyTex.SourceOffset, o.copyTex.TargetOffset, o.copyTex.Extent, o.copyTex.SourceLayer, o.copyTex.TargetLayer)
		return &c, nil, nil

	case opBlitColor, opBlitDepth, opBlitStencil:
		dst, err := a.targetOf(res, o.handle, backBufferTarget)
		if err != nil {
			return nil, nil, err
		}
		src, err := a.targetOf(res, o.handle2, backBufferTarget)
		if err != nil {
			return nil, nil, err
		}
		var c gpu.Command
		switch o.kind {
		case opBlitColor:
			c = gpu.BlitColor(src, dst, o.blitSrcOffset, o.blitDstOffset, o.blitSrcRect, o.blitDstRect, o.filter)
		case opBlitDepth:
			c = gpu.BlitDepth(src, dst, o.blitSrcOffset, o.blitDstOffset, o.blitSrcRect, o.blitDstRect, o.filter)
		default:
			c = gpu.BlitStencil(src, dst, o.blitSrcOffset, o.blitDstOffset, o.blitSrcRect, o.blitDstRect, o.filter)
		}
		return &c, nil, nil

	case opBeginPass:
		passR, err := a.resolve(res, o.handle)
		if err != nil {
			return nil, nil, err
		}
		target, err := a.targetOf(res, o.handle2, backBufferTarget)
		if err != nil {
			return nil, nil, err
		}
		c := passR.pass.Begin(target)
		return &c, nil, nil

	case opFinishPass:
		c := (&gpu.RenderPass{}).End()
		return &c, nil, nil

	case opClearColor:
		c := (&gpu.RenderPass{}).ClearColorAttachments(o.clearColor)
		return &c, nil, nil

	case opClearDepth:
		c := (&gpu.RenderPass{}).ClearDepthAttachment(o.clearDepth)
		return &c, nil, nil

	case opSetViewport:
		c := (&gpu.RenderPass{}).SetViewport(o.viewOffset, o.viewSize)
		return &c, nil, nil

	case opBindPipeline:
		r, err := a.resolve(res, o.handle)
		if err != nil {
			return nil, nil, err
		}
		pl := r.resource()
		c := (&gpu.RenderPass{}).BindPipeline(pl)
		return &c, nil, nil

	case opBindComputePipeline:
		r, err := a.resolve(res, o.handle)
		if err != nil {
			return nil, nil, err
		}
		c := gpu.ComputeBindPipeline(r.computePipe)
		return &c, nil, nil

	case opComputeExecute:
		c := gpu.ComputeExecute(o.numGroups)
		return &c, nil, nil

	case opBindVertexArrayObject:
		r, err := a.resolve(res, o.handle)
		if err != nil {
			return nil, nil, err
		}
		c := (&gpu.RenderPass{}).BindVertexArrayObject(r.vao)
		return &c, nil, nil

	case opBindShaderResources:
		resources := make([]gpu.ShaderResource, len(o.resources))
		for i, ref := range o.resources {
			r, err := a.resolve(res, ref.Handle)
			if err != nil {
				return nil, nil, err
			}
			sr := gpu.ShaderResource{Access: ref.Access}
			switch r.kind {
			case KindTexture:
				if ref.AsImage {
					sr.Image = r.texture
				} else {
					sr.Texture = r.texture
				}
			case KindTextureArray:
				sr.TextureArray = r.textureArray
			case KindUniformBuffer:
				sr.Uniform = r.uniform
			case KindStorageBuffer:
				sr.Storage = r.storage
			}
			resources[i] = sr
		}
		c := (&gpu.RenderPass{}).BindShaderResources(resources)
		return &c, nil, nil

	case opDrawArray:
		c := (&gpu.RenderPass{}).DrawArray(o.draw.Offset, o.draw.Count)
		return &c, nil, nil
	case opDrawIndexed:
		c := (&gpu.RenderPass{}).DrawIndexed(o.draw)
		return &c, nil, nil
	case opDrawArrayInstanced:
		c := (&gpu.RenderPass{}).DrawArrayInstanced(o.draw.Offset, o.draw.Count, o.instanceCount)
		return &c, nil, nil
	case opDrawIndexedInstanced:
		c := (&gpu.RenderPass{}).DrawIndexedInstanced(o.draw, o.instanceCount)
		return &c, nil, nil
	case opDrawArrayMulti:
		c := (&gpu.RenderPass{}).DrawArrayMulti(o.multiDraws)
		return &c, nil, nil
	case opDrawIndexedMulti:
		c := (&gpu.RenderPass{}).DrawIndexedMulti(o.multiDraws)
		return &c, nil, nil
	case opDrawIndexedBaseVertex:
		c := (&gpu.RenderPass{}).DrawIndexedBaseVertex(o.draw, o.baseVertex)
		return &c, nil, nil
	case opDrawIndexedInstancedBaseVertex:
		c := (&gpu.RenderPass{}).DrawIndexedInstancedBaseVertex(o.draw, o.instanceCount, o.baseVertex)
		return &c, nil, nil
	case opDrawIndexedMultiBaseVertex:
		c := (&gpu.RenderPass{}).DrawIndexedMultiBaseVertex(o.multiDraws, o.baseVertices)
		return &c, nil, nil
	}
	return nil, nil, fmt.Errorf("framegraph: unhandled op kind %d", o.kind)
}

// copyBufferCmd builds the right gpu copy command for whichever
// buffer kind src/dst resolve to. Both must resolve to the same
// kind.
func copyBufferCmd(src, dst resolved, readOff, writeOff, count int64) (gpu.Command, error) {
	switch {
	case src.kind == KindVertexBuffer && dst.kind == KindVertexBuffer:
		return gpu.CopyVertexBuffer(src.vertex, dst.vertex, readOff, writeOff, count), nil
	case src.kind == KindIndexBuffer && dst.kind == KindIndexBuffer:
		return gpu.CopyIndexBuffer(src.index, dst.index, readOff, writeOff, count), nil
	case src.kind == KindUniformBuffer && dst.kind == KindUniformBuffer:
		return gpu.CopyShaderUniformBuffer(src.uniform, dst.uniform, readOff, writeOff, count), nil
	case src.kind == KindStorageBuffer && dst.kind == KindStorageBuffer:
		return gpu.CopyShaderStorageBuffer(src.storage, dst.storage, readOff, writeOff, count), nil
	default:
		return gpu.Command{}, fmt.Errorf("framegraph: copy between mismatched or non-buffer handle kinds")
	}
}

// commitPersistence drops every previously-persisted handle that g
// did not re-declare persist on this frame, and keeps the rest:
// non-persisted handles from the previous frame are dropped. Slots
// whose handle did not survive are dropped along with it, so a slot
// only carries into the next frame's Builder if both the slot
// assignment and the handle it names were persisted this frame.
func (a *Allocator) commitPersistence(g *Graph, res map[Handle]resolved) {
	next := make(map[Handle]resolved, len(g.persist))
	for h := range g.persist {
		if r, ok := res[h]; ok {
			next[h] = r
		}
	}
	for h, r := range a.persisted {
		if !g.persist[h] {
			if res := r.resource(); res != nil {
				res.Destroy()
			}
		}
	}
	a.persisted = next

	nextSlots := make(map[FrameGraphSlot]Handle, len(g.slots))
	for slot, h := range g.slots {
		if g.persist[h] {
			nextSlots[slot] = h
		}
	}
	a.slots = nextSlots
}
