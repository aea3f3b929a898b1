package gpu

import "sync"

// QueueState is the transient state a CommandQueue carries between
// commands within (and across) submissions: the current render and
// compute pipeline, current VAO, current shader-resource bindings,
// and whether a render pass is in progress.
type QueueState struct {
	Pipeline     Resource // *RenderPipeline, nil if none bound
	CompPipeline *ComputePipeline
	VAO          *VertexArrayObject
	Resources    []ShaderResource
	InPass       bool
	Target       *RenderTarget
	Pass         *RenderPass
}

// reset clears the transient binding state, leaving the queue as
// "no pass running, no pipeline bound"; submission errors roll the
// queue back to this state.
func (s *QueueState) reset() { *s = QueueState{} }

// CommandQueue interprets a submission -- a list of command buffers
// -- in the order given, and within each buffer, in the order
// recorded.
type CommandQueue struct {
	base
	mu    sync.Mutex
	state QueueState
}

func newCommandQueue(dev *Device) *CommandQueue {
	return &CommandQueue{base: base{kind: KCommandQueue, dev: dev}}
}

func (q *CommandQueue) Destroy() {
	if q.dropped {
		return
	}
	q.dropped = true
}

// Submit interprets every command buffer in cb, in order, against
// the queue's backend. Semaphores carry no state: wait and signal
// are accepted but not read, and Submit neither blocks on wait nor
// marks signal. Execution is synchronous, so all work of earlier
// submissions has completed before a later one begins, and
// submissions to the same queue execute in submission order.
//
// Submission-time errors (invalid state, invalid range,
// incompatible target, unknown resource) surface synchronously:
// Submit returns a nil Fence and a non-nil error, and the queue's
// transient state is rolled back to "no pass running, no pipeline
// bound" so the caller may retry with a fresh submission.
func (q *CommandQueue) Submit(cb []*CmdBuffer, wait, signal []*Semaphore) (*Fence, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, b := range cb {
		if !b.sealed {
			return nil, errf(ErrInvalidState, "Submit: command buffer not ended")
		}
	}

	var batch Stats
	for _, b := range cb {
		for i := range b.cmds {
			cmd := &b.cmds[i]
			if err := q.validate(cmd); err != nil {
				q.state.reset()
				return nil, err
			}
			if err := q.dev.backend.Exec(cmd, &q.state); err != nil {
				q.state.reset()
				return nil, errf(ErrBackendError, "%v", err)
			}
			q.apply(cmd, &batch)
		}
	}
	q.dev.addStats(batch)

	f := newFence(q.dev)
	// Every backend here executes synchronously within Exec, so the
	// batch is already complete by this point; signal immediately
	// rather than leaving the fence to be signaled by a separate
	// completion callback.
	f.signal(nil)
	return f, nil
}

// validate checks cmd against the object model's invariants and the
// pass state machine, using only command/handle data (no backend
// call).
func (q *CommandQueue) validate(cmd *Command) error {
	switch cmd.Kind {
	case CmdBeginPass:
		if q.state.InPass {
			return errf(ErrInvalidState, "BeginPass: a pass is already running")
		}
		if cmd.Pass.Signature() != cmd.Target.Signature() {
			return errf(ErrIncompatibleTarget,
				"render target signature %+v does not match pass signature %+v",
				cmd.Target.Signature(), cmd.Pass.Signature())
		}
		return nil

	case CmdEndPass:
		if !q.state.InPass {
			return errf(ErrInvalidState, "EndPass: no pass running")
		}
		return nil

	case CmdClearColor, CmdClearDepth, CmdSetViewport,
		CmdDrawArray, CmdDrawIndexed, CmdDrawArrayInstanced, CmdDrawIndexedInstanced,
		CmdDrawArrayMulti, CmdDrawIndexedMulti, CmdDrawIndexedBaseVertex,
		CmdDrawIndexedInstancedBaseVertex, CmdDrawIndexedMultiBaseVertex,
		CmdBindPipeline, CmdBindShaderResources, CmdBindVertexArrayObject,
		CmdDebugBeginGroup, CmdDebugEndGroup:
		if !q.state.InPass {
			return errf(ErrInvalidState, "%v: not legal outside a render pass", cmd.Kind)
		}
		if isDraw(cmd.Kind) {
			return q.validateDraw(cmd)
		}
		return nil

	case CmdCopyTexture, CmdCopyTextureArray, CmdCopyIndexBuffer, CmdCopyVertexBuffer,
		CmdCopyShaderStorageBuffer, CmdCopyShaderUniformBuffer,
		CmdBlitColor, CmdBlitDepth, CmdBlitStencil:
		if q.state.InPass {
			return errf(ErrInvalidState, "%v: not legal inside a render pass", cmd.Kind)
		}
		if isBlit(cmd.Kind) {
			return validateBlit(&cmd.Blit)
		}
		return validateCopyBuf(&cmd.CopyBuf)

	case CmdComputeBindPipeline, CmdComputeExecute:
		return nil

	default:
		return nil
	}
}

func isDraw(k CmdKind) bool {
	switch k {
	case CmdDrawArray, CmdDrawIndexed, CmdDrawArrayInstanced, CmdDrawIndexedInstanced,
		CmdDrawArrayMulti, CmdDrawIndexedMulti, CmdDrawIndexedBaseVertex,
		CmdDrawIndexedInstancedBaseVertex, CmdDrawIndexedMultiBaseVertex:
		return true
	default:
		return false
	}
}

func isBlit(k CmdKind) bool {
	switch k {
	case CmdBlitColor, CmdBlitDepth, CmdBlitStencil:
		return true
	default:
		return false
	}
}

func isIndexedDraw(k CmdKind) bool {
	switch k {
	case CmdDrawIndexed, CmdDrawIndexedInstanced, CmdDrawIndexedMulti,
		CmdDrawIndexedBaseVertex, CmdDrawIndexedInstancedBaseVertex, CmdDrawIndexedMultiBaseVertex:
		return true
	default:
		return false
	}
}

// validateDraw checks binding compatibility for a draw command
// against the queue's current bindings.
func (q *CommandQueue) validateDraw(cmd *Command) error {
	pl, ok := q.state.Pipeline.(*RenderPipeline)
	if !ok || pl == nil {
		return errf(ErrInvalidState, "draw: no render pipeline bound")
	}
	vao := q.state.VAO
	if vao == nil {
		return errf(ErrInvalidState, "draw: no vertex array object bound")
	}
	if vao.vertex == nil {
		return errf(ErrInvalidState, "draw: vertex array object has no vertex buffer")
	}
	if isIndexedDraw(cmd.Kind) && vao.index == nil {
		return errf(ErrInvalidState, "draw: indexed draw requires an index buffer")
	}
	if !vao.desc.VertexLayout.Equal(pl.desc.VertexLayout) {
		return errf(ErrInvalidState, "draw: VAO vertex layout does not match pipeline vertex layout")
	}
	bindings := pl.desc.Bindings
	res := q.state.Resources
	if len(res) < len(bindings) {
		return errf(ErrInvalidState, "draw: %d resources bound, pipeline declares %d bindings", len(res), len(bindings))
	}
	for i, bk := range bindings {
		rk, ok := res[i].kind()
		if !ok || !bindingCompatible(bk, rk) {
			return errf(ErrInvalidState, "draw: binding %d expects %v, got incompatible resource", i, bk)
		}
	}
	return nil
}

// bindingCompatible reports whether a resource of kind rk may be
// bound against a pipeline binding declared as bk. Every kind
// matches itself; BindImage additionally accepts a BindTexture
// resource, since a sampled texture can always be bound for
// read/write image access without a separate descriptor.
func bindingCompatible(bk, rk BindingKind) bool {
	if bk == rk {
		return true
	}
	return bk == BindImage && rk == BindTexture
}

// validateBlit checks that negative offsets/rectangles fail, and
// that bounds fit within source/target size.
func validateBlit(b *BlitParam) error {
	if neg2(b.SourceRect.Offset) || neg2(b.SourceRect.Extent) ||
		neg2(b.TargetRect.Offset) || neg2(b.TargetRect.Extent) {
		return errf(ErrInvalidRange, "blit: negative offset or rectangle")
	}
	if b.SourceRect.Offset[0]+b.SourceRect.Extent[0] > b.SourceSize.Width ||
		b.SourceRect.Offset[1]+b.SourceRect.Extent[1] > b.SourceSize.Height {
		return errf(ErrInvalidRange, "blit: source rectangle exceeds source bounds")
	}
	if b.TargetRect.Offset[0]+b.TargetRect.Extent[0] > b.TargetSize.Width ||
		b.TargetRect.Offset[1]+b.TargetRect.Extent[1] > b.TargetSize.Height {
		return errf(ErrInvalidRange, "blit: target rectangle exceeds target bounds")
	}
	return nil
}

func neg2(v [2]int) bool { return v[0] < 0 || v[1] < 0 }

// validateCopyBuf checks that readOffset+count does not exceed the
// source size, and writeOffset+count does not exceed the target
// size.
func validateCopyBuf(c *CopyBufferParam) error {
	if c.ReadOffset < 0 || c.WriteOffset < 0 || c.Count < 0 {
		return errf(ErrInvalidRange, "copy: negative offset or count")
	}
	if c.ReadOffset+c.Count > c.SourceSize {
		return errf(ErrInvalidRange, "copy: readOffset+count (%d) exceeds source size %d",
			c.ReadOffset+c.Count, c.SourceSize)
	}
	if c.WriteOffset+c.Count > c.TargetSize {
		return errf(ErrInvalidRange, "copy: writeOffset+count (%d) exceeds target size %d",
			c.WriteOffset+c.Count, c.TargetSize)
	}
	return nil
}

// apply updates the queue's transient state after a command has
// executed successfully, and accumulates draw statistics. Ending a
// pass unbinds all shader resources and the current pipeline/VAO.
func (q *CommandQueue) apply(cmd *Command, stats *Stats) {
	switch cmd.Kind {
	case CmdBeginPass:
		q.state.InPass = true
		q.state.Pass = cmd.Pass
		q.state.Target = cmd.Target
	case CmdEndPass:
		q.state.InPass = false
		q.state.Pass = nil
		q.state.Target = nil
		q.state.Pipeline = nil
		q.state.VAO = nil
		q.state.Resources = nil
	case CmdBindPipeline:
		q.state.Pipeline = cmd.Pipeline
	case CmdBindVertexArrayObject:
		q.state.VAO = cmd.VAO
	case CmdBindShaderResources:
		q.state.Resources = cmd.Resources
	case CmdComputeBindPipeline:
		if cp, ok := cmd.Pipeline.(*ComputePipeline); ok {
			q.state.CompPipeline = cp
		}

	case CmdDrawArray:
		stats.DrawCalls++
		stats.Polys += polys(q.state.Pipeline, cmd.Draw.Count, 1)
	case CmdDrawIndexed:
		stats.DrawCalls++
		stats.Polys += polys(q.state.Pipeline, cmd.Draw.Count, 1)
	case CmdDrawArrayInstanced, CmdDrawIndexedInstanced,
		CmdDrawIndexedBaseVertex, CmdDrawIndexedInstancedBaseVertex:
		stats.DrawCalls++
		inst := cmd.InstanceCount
		if inst == 0 {
			inst = 1
		}
		stats.Polys += polys(q.state.Pipeline, cmd.Draw.Count, inst)
	case CmdDrawArrayMulti, CmdDrawIndexedMulti, CmdDrawIndexedMultiBaseVertex:
		stats.DrawCalls++
		for _, c := range cmd.MultiDraws {
			stats.Polys += polys(q.state.Pipeline, c.Count, 1)
		}

	case CmdCopyVertexBuffer, CmdCopyIndexBuffer, CmdCopyShaderUniformBuffer, CmdCopyShaderStorageBuffer:
		stats.BytesUploaded += cmd.CopyBuf.Count
	}
}

// polys derives the polygon count from an element count and the
// bound pipeline's primitive topology: polys = elements / primitive-size.
func polys(pipeline Resource, count, instances int) int {
	pl, ok := pipeline.(*RenderPipeline)
	if !ok || pl == nil {
		return 0
	}
	vc := pl.desc.Primitive.vertCount()
	if vc == 0 {
		return 0
	}
	return (count / vc) * instances
}
