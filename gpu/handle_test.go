package gpu_test

import (
	"testing"

	"github.com/gviegas/rgcore/gpu"
)

func TestBufferHandleBytesAndRaw(t *testing.T) {
	dev := newTestDevice(t)

	vb, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 32, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	if vb.Kind() != gpu.KVertexBuffer {
		t.Errorf("Kind: got %v, want KVertexBuffer", vb.Kind())
	}
	if got := len(vb.Bytes()); got != 32 {
		t.Errorf("Bytes length: got %d, want 32", got)
	}
	if vb.Raw() == nil {
		t.Error("Raw: got nil, want the backend-specific buffer value")
	}

	ib, err := dev.NewIndexBuffer(gpu.BufferDesc{Size: 16})
	if err != nil {
		t.Fatalf("NewIndexBuffer: %v", err)
	}
	if ib.Kind() != gpu.KIndexBuffer {
		t.Errorf("Kind: got %v, want KIndexBuffer", ib.Kind())
	}
	if got := len(ib.Bytes()); got != 16 {
		t.Errorf("Bytes length: got %d, want 16", got)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	dev := newTestDevice(t)
	vb, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 16, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	vb.Destroy()
	vb.Destroy() // must not panic
}

func TestShaderCodeRaw(t *testing.T) {
	dev := newTestDevice(t)
	code, err := dev.NewShaderCode([]byte("fake-bytecode"))
	if err != nil {
		t.Fatalf("NewShaderCode: %v", err)
	}
	code.Destroy()
	code.Destroy() // must not panic
}

func TestVertexArrayObjectAccessors(t *testing.T) {
	dev := newTestDevice(t)
	layout := gpu.Layout{{Type: gpu.AttribVec3, Component: gpu.CompF32}}

	vb, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 64, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	ib, err := dev.NewIndexBuffer(gpu.BufferDesc{Size: 16})
	if err != nil {
		t.Fatalf("NewIndexBuffer: %v", err)
	}

	vao, err := dev.NewVertexArrayObject(gpu.VAODesc{VertexLayout: layout}, vb, nil, ib)
	if err != nil {
		t.Fatalf("NewVertexArrayObject: %v", err)
	}
	if vao.VertexBuffer() != vb {
		t.Error("VertexBuffer: got a different buffer than the one passed to NewVertexArrayObject")
	}
	if vao.InstanceBuffer() != nil {
		t.Error("InstanceBuffer: got non-nil, want nil (none was bound)")
	}
	if vao.IndexBuffer() != ib {
		t.Error("IndexBuffer: got a different buffer than the one passed to NewVertexArrayObject")
	}
}

func TestRenderTargetSignatureMatchesDescription(t *testing.T) {
	dev := newTestDevice(t)
	rt, err := dev.NewRenderTarget(gpu.RenderTargetDesc{
		Size:                  gpu.Dim2D{Width: 8, Height: 8},
		NumColorAttachments:   2,
		HasDepthStencilAttach: true,
	})
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}
	sig := rt.Signature()
	if sig.NumColorAttachments != 2 || !sig.HasDepthStencilAttach {
		t.Errorf("Signature: got %+v, want {NumColorAttachments:2 HasDepthStencilAttach:true}", sig)
	}
	desc := rt.Description()
	if sig != desc.Signature() {
		t.Error("Signature() and Description().Signature() disagree")
	}
}

func TestMemorySize(t *testing.T) {
	dev := newTestDevice(t)
	mem, err := dev.NewMemory(4096)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	if mem.Size() != 4096 {
		t.Errorf("Size: got %d, want 4096", mem.Size())
	}
	if mem.Kind() != gpu.KVideoMemory {
		t.Errorf("Kind: got %v, want KVideoMemory", mem.Kind())
	}
}

func TestSamplerDescription(t *testing.T) {
	dev := newTestDevice(t)
	s := gpu.Sampling{Min: gpu.FilterLinear, Mag: gpu.FilterNearest}
	smp, err := dev.NewSampler(s)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	if smp.Description() != s {
		t.Errorf("Description: got %+v, want %+v", smp.Description(), s)
	}
}
