package gpu

// Backend is the interface a concrete backend implements to
// realise GPU resources and interpret command execution on behalf
// of a Device/CommandQueue. The object model is the ABI; backends
// implement it.
//
// Device delegates resource creation to a Backend and performs all
// invariant checks (capacity, attachment compatibility, etc.)
// itself so that those checks are identical across backends.
// CommandQueue likewise validates bindings/ranges/pass legality
// itself before calling Exec, so Exec only needs to perform the
// already-validated operation.
type Backend interface {
	// Name identifies the backend (e.g. "mem", "wgpu").
	Name() string

	// Limits returns the implementation limits. They are
	// immutable for the lifetime of the Backend.
	Limits() Limits

	NewBuffer(size int64, visible bool, usage Usage) (raw any, bytes []byte, err error)
	NewImage(desc *TextureDesc) (raw any, err error)
	NewImageArray(desc *TextureArrayDesc) (raw any, err error)
	NewSampler(s *Sampling) (raw any, err error)
	NewShaderCode(data []byte) (raw any, err error)
	NewRenderPipeline(desc *RenderPipelineDesc) (raw any, err error)
	NewComputePipeline(desc *ComputePipelineDesc) (raw any, err error)
	NewVertexArray(desc *VAODesc) (raw any, err error)
	NewRenderTarget(desc *RenderTargetDesc) (raw any, err error)

	// Exec interprets a single already-validated command. state
	// carries the queue's current binding state for the backend's
	// own bookkeeping; the backend must not use it to perform
	// validation (that already happened).
	Exec(cmd *Command, state *QueueState) error
}

// Limits describes implementation limits. These vary across
// backends and devices; exceeding one surfaces as a capacity error.
type Limits struct {
	MaxUniformBufferSize int64
	MaxStorageBufferSize int64
	MaxColorAttachments  int
	MaxTextureSize       int
	MaxMipMapLevels      int
}
