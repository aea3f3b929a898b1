package gpu

// The copies and blits in this file are legal only outside a render
// pass. The compute commands at the end of the file are accepted
// whether or not a pass is running.

// BlitColor returns a command that blits the color attachments of
// src into dst. sourceRect/targetRect are extents (sizes), not a
// second corner.
func BlitColor(src, dst *RenderTarget, srcOffset, dstOffset [2]int, srcRect, dstRect [2]int, filter TextureFiltering) Command {
	return Command{
		Kind: CmdBlitColor,
		Blit: BlitParam{
			Source:     src,
			Target:     dst,
			SourceRect: Rect{Offset: srcOffset, Extent: srcRect},
			TargetRect: Rect{Offset: dstOffset, Extent: dstRect},
			SourceSize: src.desc.Size,
			TargetSize: dst.desc.Size,
			Filter:     filter,
		},
	}
}

// BlitDepth is the depth-aspect equivalent of BlitColor.
func BlitDepth(src, dst *RenderTarget, srcOffset, dstOffset [2]int, srcRect, dstRect [2]int, filter TextureFiltering) Command {
	c := BlitColor(src, dst, srcOffset, dstOffset, srcRect, dstRect, filter)
	c.Kind = CmdBlitDepth
	return c
}

// BlitStencil is the stencil-aspect equivalent of BlitColor.
func BlitStencil(src, dst *RenderTarget, srcOffset, dstOffset [2]int, srcRect, dstRect [2]int, filter TextureFiltering) Command {
	c := BlitColor(src, dst, srcOffset, dstOffset, srcRect, dstRect, filter)
	c.Kind = CmdBlitStencil
	return c
}

// copyBuf builds the common payload for the four buffer-copy
// command kinds.
func copyBuf(kind CmdKind, src, dst Resource, srcSize, dstSize, readOff, writeOff, count int64) Command {
	return Command{
		Kind:       kind,
		CopySrcBuf: src,
		CopyDstBuf: dst,
		CopyBuf: CopyBufferParam{
			ReadOffset:  readOff,
			WriteOffset: writeOff,
			Count:       count,
			SourceSize:  srcSize,
			TargetSize:  dstSize,
		},
	}
}

// CopyVertexBuffer returns a command that copies count bytes from
// src to dst.
func CopyVertexBuffer(src, dst *VertexBuffer, readOff, writeOff, count int64) Command {
	return copyBuf(CmdCopyVertexBuffer, src, dst, src.desc.Size, dst.desc.Size, readOff, writeOff, count)
}

// CopyIndexBuffer returns a command that copies count bytes from
// src to dst.
func CopyIndexBuffer(src, dst *IndexBuffer, readOff, writeOff, count int64) Command {
	return copyBuf(CmdCopyIndexBuffer, src, dst, src.desc.Size, dst.desc.Size, readOff, writeOff, count)
}

// CopyShaderUniformBuffer returns a command that copies count
// bytes from src to dst.
func CopyShaderUniformBuffer(src, dst *UniformBuffer, readOff, writeOff, count int64) Command {
	return copyBuf(CmdCopyShaderUniformBuffer, src, dst, src.desc.Size, dst.desc.Size, readOff, writeOff, count)
}

// CopyShaderStorageBuffer returns a command that copies count
// bytes from src to dst.
func CopyShaderStorageBuffer(src, dst *StorageBuffer, readOff, writeOff, count int64) Command {
	return copyBuf(CmdCopyShaderStorageBuffer, src, dst, src.desc.Size, dst.desc.Size, readOff, writeOff, count)
}

// CopyTexture returns a command that copies a region from src to
// dst.
func CopyTexture(src, dst *Texture, srcOff, dstOff, extent Offset3D) Command {
	return Command{
		Kind:       CmdCopyTexture,
		CopySrcTex: src,
		CopyDstTex: dst,
		CopyTex:    CopyTextureParam{SourceOffset: srcOff, TargetOffset: dstOff, Extent: extent},
	}
}

// CopyTextureArray returns a command that copies a region from
// layer srcLayer of src to layer dstLayer of dst.
func CopyTextureArray(src, dst *TextureArray, srcOff, dstOff, extent Offset3D, srcLayer, dstLayer int) Command {
	return Command{
		Kind:       CmdCopyTextureArray,
		CopySrcTex: src,
		CopyDstTex: dst,
		CopyTex: CopyTextureParam{
			SourceOffset: srcOff,
			TargetOffset: dstOff,
			Extent:       extent,
			SourceLayer:  srcLayer,
			TargetLayer:  dstLayer,
		},
	}
}

// ComputeBindPipeline returns the command that binds pl as the
// current compute pipeline.
func ComputeBindPipeline(pl *ComputePipeline) Command {
	return Command{Kind: CmdComputeBindPipeline, Pipeline: pl}
}

// ComputeExecute returns the command that dispatches numGroups
// compute work groups.
func ComputeExecute(numGroups [3]int) Command {
	return Command{Kind: CmdComputeExecute, NumGroups: numGroups}
}
