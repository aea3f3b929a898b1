// Package mem implements an in-memory reference gpu.Backend. It
// performs no real rendering: buffers are plain byte slices,
// textures are opaque byte blobs sized from their descriptor, and
// Exec only moves bytes for buffer-copy commands. It exists so that gpu,
// framegraph and scene can be exercised by tests without real GPU
// hardware, backend-agnostic and free of cgo.
package mem

import (
	"fmt"
	"sync"

	"github.com/gviegas/rgcore/gpu"
)

// Backend is an in-memory gpu.Backend.
type Backend struct {
	limits gpu.Limits

	mu  sync.Mutex
	log []gpu.CmdKind
}

// New returns a Backend with the given limits. Passing a zero
// Limits uses generous defaults suitable for tests.
func New(limits gpu.Limits) *Backend {
	if limits == (gpu.Limits{}) {
		limits = gpu.Limits{
			MaxUniformBufferSize: 64 << 10,
			MaxStorageBufferSize: 256 << 20,
			MaxColorAttachments:  8,
			MaxTextureSize:       8192,
			MaxMipMapLevels:      14,
		}
	}
	return &Backend{limits: limits}
}

func (b *Backend) Name() string      { return "mem" }
func (b *Backend) Limits() gpu.Limits { return b.limits }

// buffer is the raw representation backing every buffer kind.
type buffer struct{ data []byte }

func (b *Backend) NewBuffer(size int64, visible bool, usage gpu.Usage) (any, []byte, error) {
	if size < 0 {
		return nil, nil, fmt.Errorf("mem: negative buffer size %d", size)
	}
	buf := &buffer{data: make([]byte, size)}
	return buf, buf.data, nil
}

// image is the raw representation backing Texture/TextureArray.
type image struct {
	desc gpu.TextureDesc
	data []byte
}

func imageSize(desc *gpu.TextureDesc) int {
	bpp := bytesPerPixel(desc.Format)
	n := desc.Size.Width * desc.Size.Height * bpp
	if desc.Samples > 1 {
		n *= desc.Samples
	}
	return n
}

// bytesPerPixel is a coarse estimate used only to size the backing
// blob realistically; it does not need to be exact since mem never
// interprets pixel contents.
func bytesPerPixel(f gpu.ColorFormat) int {
	switch f {
	case gpu.FormatR, gpu.FormatR8Unorm:
		return 1
	case gpu.FormatRG, gpu.FormatRG8Unorm, gpu.FormatDepth, gpu.FormatR16Unorm, gpu.FormatR16Float:
		return 2
	case gpu.FormatRGB:
		return 3
	case gpu.FormatRGBA, gpu.FormatRGBA8Unorm, gpu.FormatDepthStencil,
		gpu.FormatRG16Unorm, gpu.FormatRG16Float, gpu.FormatR32Float, gpu.FormatR32Int, gpu.FormatR32Uint:
		return 4
	case gpu.FormatRGBA16Unorm, gpu.FormatRGBA16Float, gpu.FormatRG32Float:
		return 8
	case gpu.FormatRGBA32Float, gpu.FormatRGBA32Int, gpu.FormatRGBA32Uint:
		return 16
	case gpu.FormatCompressedRGB, gpu.FormatCompressedRGBA:
		return 1
	default:
		return 4
	}
}

func (b *Backend) NewImage(desc *gpu.TextureDesc) (any, error) {
	if desc.MipMapLevels > b.limits.MaxMipMapLevels {
		return nil, fmt.Errorf("mem: mipmap level count %d exceeds limit %d", desc.MipMapLevels, b.limits.MaxMipMapLevels)
	}
	if desc.Size.Width > b.limits.MaxTextureSize || desc.Size.Height > b.limits.MaxTextureSize {
		return nil, fmt.Errorf("mem: texture size %dx%d exceeds limit %d", desc.Size.Width, desc.Size.Height, b.limits.MaxTextureSize)
	}
	return &image{desc: *desc, data: make([]byte, imageSize(desc))}, nil
}

func (b *Backend) NewImageArray(desc *gpu.TextureArrayDesc) (any, error) {
	raw, err := b.NewImage(&desc.TextureDesc)
	if err != nil {
		return nil, err
	}
	img := raw.(*image)
	arr := make([]byte, len(img.data)*max(desc.TextureCount, 1))
	return &image{desc: desc.TextureDesc, data: arr}, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type sampler struct{ desc gpu.Sampling }

func (b *Backend) NewSampler(s *gpu.Sampling) (any, error) { return &sampler{desc: *s}, nil }

type shaderCode struct{ data []byte }

func (b *Backend) NewShaderCode(data []byte) (any, error) {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &shaderCode{data: cp}, nil
}

type renderPipeline struct{ desc gpu.RenderPipelineDesc }

func (b *Backend) NewRenderPipeline(desc *gpu.RenderPipelineDesc) (any, error) {
	return &renderPipeline{desc: *desc}, nil
}

type computePipeline struct{ desc gpu.ComputePipelineDesc }

func (b *Backend) NewComputePipeline(desc *gpu.ComputePipelineDesc) (any, error) {
	return &computePipeline{desc: *desc}, nil
}

type vertexArray struct{ desc gpu.VAODesc }

func (b *Backend) NewVertexArray(desc *gpu.VAODesc) (any, error) {
	return &vertexArray{desc: *desc}, nil
}

type renderTarget struct{ desc gpu.RenderTargetDesc }

func (b *Backend) NewRenderTarget(desc *gpu.RenderTargetDesc) (any, error) {
	if desc.NumColorAttachments > b.limits.MaxColorAttachments {
		return nil, fmt.Errorf("mem: color attachment count %d exceeds limit %d", desc.NumColorAttachments, b.limits.MaxColorAttachments)
	}
	return &renderTarget{desc: *desc}, nil
}

// Exec interprets a single already-validated command. Every command
// is recorded to an internal log for test introspection. Buffer-copy
// commands also move bytes between the referenced buffers'
// host-visible storage; every other command, texture copies and
// blits included, has no further effect, since mem models no actual
// framebuffer.
func (b *Backend) Exec(cmd *gpu.Command, state *gpu.QueueState) error {
	b.mu.Lock()
	b.log = append(b.log, cmd.Kind)
	b.mu.Unlock()

	switch cmd.Kind {
	case gpu.CmdCopyVertexBuffer, gpu.CmdCopyIndexBuffer,
		gpu.CmdCopyShaderUniformBuffer, gpu.CmdCopyShaderStorageBuffer:
		return b.execCopyBuf(cmd)
	default:
		return nil
	}
}

// bytesOf returns the host-visible byte slice of a buffer handle,
// or nil if src is not host-visible (mem always allocates
// host-visible storage, so this only returns nil for an unrecognized
// handle type).
func bytesOf(r gpu.Resource) []byte {
	switch v := r.(type) {
	case *gpu.VertexBuffer:
		return v.Bytes()
	case *gpu.IndexBuffer:
		return v.Bytes()
	case *gpu.UniformBuffer:
		return v.Bytes()
	case *gpu.StorageBuffer:
		return v.Bytes()
	default:
		return nil
	}
}

func (b *Backend) execCopyBuf(cmd *gpu.Command) error {
	src := bytesOf(cmd.CopySrcBuf)
	dst := bytesOf(cmd.CopyDstBuf)
	if src == nil || dst == nil {
		return fmt.Errorf("mem: copy: unrecognized buffer handle")
	}
	p := cmd.CopyBuf
	copy(dst[p.WriteOffset:p.WriteOffset+p.Count], src[p.ReadOffset:p.ReadOffset+p.Count])
	return nil
}

// Log returns the sequence of command kinds executed so far, for
// test assertions.
func (b *Backend) Log() []gpu.CmdKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]gpu.CmdKind, len(b.log))
	copy(out, b.log)
	return out
}
