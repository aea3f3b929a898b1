package gpu

import "sync"

// Device is the factory for all GPU object model resources. It
// exposes queue lists and owns per-frame statistics. A Device is
// obtained by opening a Driver.
type Device struct {
	backend Backend

	render   []*CommandQueue
	compute  []*CommandQueue
	transfer []*CommandQueue

	statsMu sync.Mutex
	stats   Stats
}

// NewDevice wraps a Backend in a Device with a single queue that
// serves as both the render and compute queue, and no dedicated
// transfer queue (mirroring the reference backend's single-queue
// shape).
func NewDevice(backend Backend) *Device {
	dev := &Device{backend: backend}
	q := newCommandQueue(dev)
	dev.render = []*CommandQueue{q}
	dev.compute = []*CommandQueue{q}
	dev.transfer = nil
	return dev
}

// Limits returns the backend's implementation limits.
func (d *Device) Limits() Limits { return d.backend.Limits() }

// RenderQueues returns the device's render queues.
func (d *Device) RenderQueues() []*CommandQueue { return d.render }

// ComputeQueues returns the device's compute queues.
func (d *Device) ComputeQueues() []*CommandQueue { return d.compute }

// TransferQueues returns the device's transfer queues.
func (d *Device) TransferQueues() []*CommandQueue { return d.transfer }

// NewCmdBuffer creates a new command buffer.
func (d *Device) NewCmdBuffer() (*CmdBuffer, error) {
	return newCmdBuffer(d), nil
}

// NewSemaphore creates a new semaphore.
func (d *Device) NewSemaphore() (*Semaphore, error) {
	return &Semaphore{base: base{kind: KSemaphore, dev: d}}, nil
}

// NewRenderPass creates a new render pass.
func (d *Device) NewRenderPass(desc RenderPassDesc) (*RenderPass, error) {
	return &RenderPass{base: base{kind: KRenderPass, dev: d}, desc: desc}, nil
}

// NewVertexBuffer creates a new vertex buffer.
func (d *Device) NewVertexBuffer(desc BufferDesc) (*VertexBuffer, error) {
	raw, bytes, err := d.backend.NewBuffer(desc.Size, desc.BufferType == HostVisible, UVertexData)
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{bufferHandle{base{kind: KVertexBuffer, dev: d}, desc, raw, bytes}}, nil
}

// NewIndexBuffer creates a new index buffer.
func (d *Device) NewIndexBuffer(desc BufferDesc) (*IndexBuffer, error) {
	raw, bytes, err := d.backend.NewBuffer(desc.Size, desc.BufferType == HostVisible, UIndexData)
	if err != nil {
		return nil, err
	}
	return &IndexBuffer{bufferHandle{base{kind: KIndexBuffer, dev: d}, desc, raw, bytes}}, nil
}

// NewShaderUniformBuffer creates a new uniform buffer. It fails
// with ErrCapacity if desc.Size exceeds the device's uniform
// buffer size limit.
func (d *Device) NewShaderUniformBuffer(desc BufferDesc) (*UniformBuffer, error) {
	if desc.Size > d.backend.Limits().MaxUniformBufferSize {
		return nil, errf(ErrCapacity, "uniform buffer size %d exceeds device limit %d",
			desc.Size, d.backend.Limits().MaxUniformBufferSize)
	}
	raw, bytes, err := d.backend.NewBuffer(desc.Size, desc.BufferType == HostVisible, UShaderRead)
	if err != nil {
		return nil, err
	}
	return &UniformBuffer{bufferHandle{base{kind: KUniformBuffer, dev: d}, desc, raw, bytes}}, nil
}

// NewShaderStorageBuffer creates a new storage buffer. It fails
// with ErrCapacity if desc.Size exceeds the device's storage
// buffer size limit.
func (d *Device) NewShaderStorageBuffer(desc BufferDesc) (*StorageBuffer, error) {
	if desc.Size > d.backend.Limits().MaxStorageBufferSize {
		return nil, errf(ErrCapacity, "storage buffer size %d exceeds device limit %d",
			desc.Size, d.backend.Limits().MaxStorageBufferSize)
	}
	raw, bytes, err := d.backend.NewBuffer(desc.Size, desc.BufferType == HostVisible, UShaderRead|UShaderWrite)
	if err != nil {
		return nil, err
	}
	return &StorageBuffer{bufferHandle{base{kind: KStorageBuffer, dev: d}, desc, raw, bytes}}, nil
}

// NewTextureBuffer creates a new texture. If the requested
// MipMapLevels count cannot be backed for the given size, a single
// retry is performed with one mipmap level before propagating a
// failure.
func (d *Device) NewTextureBuffer(desc TextureDesc) (*Texture, error) {
	raw, err := d.backend.NewImage(&desc)
	if err != nil && desc.MipMapLevels > 1 {
		retry := desc
		retry.MipMapLevels = 1
		raw, err = d.backend.NewImage(&retry)
		if err == nil {
			desc = retry
		}
	}
	if err != nil {
		return nil, err
	}
	return &Texture{base: base{kind: KTextureBuffer, dev: d}, desc: desc, raw: raw}, nil
}

// NewTextureArrayBuffer creates a new texture array, with the same
// single-mipmap-level retry policy as NewTextureBuffer.
func (d *Device) NewTextureArrayBuffer(desc TextureArrayDesc) (*TextureArray, error) {
	raw, err := d.backend.NewImageArray(&desc)
	if err != nil && desc.MipMapLevels > 1 {
		retry := desc
		retry.MipMapLevels = 1
		raw, err = d.backend.NewImageArray(&retry)
		if err == nil {
			desc = retry
		}
	}
	if err != nil {
		return nil, err
	}
	return &TextureArray{base: base{kind: KTextureArrayBuffer, dev: d}, desc: desc, raw: raw}, nil
}

// NewVertexArrayObject creates a new VAO, binding the given
// vertex/instance/index buffers.
func (d *Device) NewVertexArrayObject(desc VAODesc, vertex *VertexBuffer, instance *VertexBuffer, index *IndexBuffer) (*VertexArrayObject, error) {
	raw, err := d.backend.NewVertexArray(&desc)
	if err != nil {
		return nil, err
	}
	return &VertexArrayObject{
		base:     base{kind: KVertexArrayObject, dev: d},
		desc:     desc,
		vertex:   vertex,
		instance: instance,
		index:    index,
		raw:      raw,
	}, nil
}

// NewRenderTarget creates a new render target.
func (d *Device) NewRenderTarget(desc RenderTargetDesc) (*RenderTarget, error) {
	raw, err := d.backend.NewRenderTarget(&desc)
	if err != nil {
		return nil, err
	}
	return &RenderTarget{base: base{kind: KRenderTarget, dev: d}, desc: desc, raw: raw}, nil
}

// NewShaderCode creates a new shader code object from data. If the
// backend cannot ingest data directly (e.g. it is not SPIR-V), the
// caller should invoke decompile first and pass the resulting
// backend-native source bytes instead; NewShaderCode itself never
// invokes a decompiler: the decompiler is a hook supplied by the
// caller, not bundled.
func (d *Device) NewShaderCode(data []byte) (ShaderCode, error) {
	raw, err := d.backend.NewShaderCode(data)
	if err != nil {
		return nil, errf(ErrCompileLink, "%v", err)
	}
	return &shaderCode{base: base{kind: KVideoMemory, dev: d}, raw: raw}, nil
}

// NewRenderPipeline creates a new render pipeline. decompile is
// accepted but never invoked: neither Device nor
// Backend.NewRenderPipeline calls it, and every stage's code is
// handed to the backend as it was created. It may be nil.
func (d *Device) NewRenderPipeline(desc RenderPipelineDesc, decompile func([]byte) (string, error)) (*RenderPipeline, error) {
	_ = decompile // not passed to the backend
	raw, err := d.backend.NewRenderPipeline(&desc)
	if err != nil {
		return nil, errf(ErrCompileLink, "%v", err)
	}
	return &RenderPipeline{base: base{kind: KRenderPipeline, dev: d}, desc: desc, raw: raw}, nil
}

// NewComputePipeline creates a new compute pipeline.
func (d *Device) NewComputePipeline(desc ComputePipelineDesc, decompile func([]byte) (string, error)) (*ComputePipeline, error) {
	_ = decompile
	raw, err := d.backend.NewComputePipeline(&desc)
	if err != nil {
		return nil, errf(ErrCompileLink, "%v", err)
	}
	return &ComputePipeline{base: base{kind: KComputePipeline, dev: d}, desc: desc, raw: raw}, nil
}

// NewMemory allocates a block of device video memory explicitly
// (e.g. for a backend that models memory separately from the
// resources bound to it).
func (d *Device) NewMemory(size int64) (*Memory, error) {
	raw, _, err := d.backend.NewBuffer(size, false, UGeneric)
	if err != nil {
		return nil, err
	}
	return &Memory{base: base{kind: KVideoMemory, dev: d}, size: size, raw: raw}, nil
}

// NewSampler creates a new sampler.
func (d *Device) NewSampler(s Sampling) (*Sampler, error) {
	raw, err := d.backend.NewSampler(&s)
	if err != nil {
		return nil, err
	}
	return &Sampler{base: base{kind: KVideoMemory, dev: d}, desc: s, raw: raw}, nil
}

// GetFrameStats returns the statistics accumulated since the last
// call and resets them atomically.
func (d *Device) GetFrameStats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	s := d.stats
	d.stats = Stats{}
	return s
}

// addStats accumulates per-submission counters into the device's
// statistics block.
func (d *Device) addStats(s Stats) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.stats.DrawCalls += s.DrawCalls
	d.stats.Polys += s.Polys
	d.stats.BytesUploaded += s.BytesUploaded
	d.stats.BytesDownloaded += s.BytesDownloaded
}

// Stats holds accumulated per-frame draw statistics.
type Stats struct {
	DrawCalls       int
	Polys           int
	BytesUploaded   int64
	BytesDownloaded int64
}
