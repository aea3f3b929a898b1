package gpu

// RenderPass is a value whose equality is its attachment signature.
// It exposes command-factory helpers that return Command values for
// use with CmdBuffer.Add; it does not itself record anything.
type RenderPass struct {
	base
	desc RenderPassDesc
	raw  any
}

// Description returns p's descriptor.
func (p *RenderPass) Description() RenderPassDesc { return p.desc }

// Signature returns p's attachment signature.
func (p *RenderPass) Signature() AttachmentSignature { return p.desc.Signature() }

func (p *RenderPass) Destroy() {
	if p.dropped {
		return
	}
	p.dropped = true
}

// Begin returns the command that begins the pass against target.
func (p *RenderPass) Begin(target *RenderTarget) Command {
	return Command{Kind: CmdBeginPass, Pass: p, Target: target}
}

// End returns the command that ends the pass.
func (p *RenderPass) End() Command { return Command{Kind: CmdEndPass} }

// SetViewport returns the command that sets the viewport.
func (p *RenderPass) SetViewport(offset, size [2]int) Command {
	return Command{Kind: CmdSetViewport, Viewport: ViewportParam{Offset: offset, Size: size}}
}

// ClearColorAttachments returns the command that clears all color
// attachments to color.
func (p *RenderPass) ClearColorAttachments(color ClearColorParam) Command {
	return Command{Kind: CmdClearColor, Clear: color}
}

// ClearDepthAttachment returns the command that clears the
// depth attachment to depth.
func (p *RenderPass) ClearDepthAttachment(depth float32) Command {
	return Command{Kind: CmdClearDepth, Depth: depth}
}

// BindPipeline returns the command that binds pl (a *RenderPipeline
// or *ComputePipeline) as current.
func (p *RenderPass) BindPipeline(pl Resource) Command {
	return Command{Kind: CmdBindPipeline, Pipeline: pl}
}

// BindVertexArrayObject returns the command that binds vao.
func (p *RenderPass) BindVertexArrayObject(vao *VertexArrayObject) Command {
	return Command{Kind: CmdBindVertexArrayObject, VAO: vao}
}

// BindShaderResources returns the command that binds res starting
// at binding index 0.
func (p *RenderPass) BindShaderResources(res []ShaderResource) Command {
	return Command{Kind: CmdBindShaderResources, Resources: res}
}

// DrawArray returns an unindexed, non-instanced draw command.
func (p *RenderPass) DrawArray(offset, count int) Command {
	return Command{Kind: CmdDrawArray, Draw: DrawCall{Offset: offset, Count: count}}
}

// DrawIndexed returns an indexed, non-instanced draw command.
func (p *RenderPass) DrawIndexed(call DrawCall) Command {
	return Command{Kind: CmdDrawIndexed, Draw: call}
}

// DrawArrayInstanced returns an unindexed, instanced draw command.
func (p *RenderPass) DrawArrayInstanced(offset, count, instances int) Command {
	return Command{
		Kind:          CmdDrawArrayInstanced,
		Draw:          DrawCall{Offset: offset, Count: count},
		InstanceCount: instances,
	}
}

// DrawIndexedInstanced returns an indexed, instanced draw command.
func (p *RenderPass) DrawIndexedInstanced(call DrawCall, instances int) Command {
	return Command{Kind: CmdDrawIndexedInstanced, Draw: call, InstanceCount: instances}
}

// DrawArrayMulti returns a multi-draw, unindexed command.
func (p *RenderPass) DrawArrayMulti(calls []DrawCall) Command {
	return Command{Kind: CmdDrawArrayMulti, MultiDraws: calls}
}

// DrawIndexedMulti returns a multi-draw, indexed command.
func (p *RenderPass) DrawIndexedMulti(calls []DrawCall) Command {
	return Command{Kind: CmdDrawIndexedMulti, MultiDraws: calls}
}

// DrawIndexedBaseVertex returns an indexed draw command with a
// base-vertex offset applied to every index.
func (p *RenderPass) DrawIndexedBaseVertex(call DrawCall, baseVertex int) Command {
	return Command{Kind: CmdDrawIndexedBaseVertex, Draw: call, BaseVertex: baseVertex}
}

// DrawIndexedInstancedBaseVertex combines instancing with a
// base-vertex offset.
func (p *RenderPass) DrawIndexedInstancedBaseVertex(call DrawCall, instances, baseVertex int) Command {
	return Command{
		Kind:          CmdDrawIndexedInstancedBaseVertex,
		Draw:          call,
		InstanceCount: instances,
		BaseVertex:    baseVertex,
	}
}

// DrawIndexedMultiBaseVertex is the multi-draw, indexed,
// per-call-base-vertex variant.
func (p *RenderPass) DrawIndexedMultiBaseVertex(calls []DrawCall, baseVertices []int) Command {
	return Command{Kind: CmdDrawIndexedMultiBaseVertex, MultiDraws: calls, BaseVertices: baseVertices}
}

// DebugBeginGroup returns the command that opens a named debug
// marker group.
func (p *RenderPass) DebugBeginGroup(name string) Command {
	return Command{Kind: CmdDebugBeginGroup, DebugName: name}
}

// DebugEndGroup returns the command that closes the innermost
// debug marker group.
func (p *RenderPass) DebugEndGroup() Command { return Command{Kind: CmdDebugEndGroup} }
