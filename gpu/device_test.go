package gpu_test

import (
	"errors"
	"testing"

	"github.com/gviegas/rgcore/gpu"
)

func TestNewShaderUniformBufferCapacity(t *testing.T) {
	dev := newTestDevice(t)
	limits := dev.Limits()

	_, err := dev.NewShaderUniformBuffer(gpu.BufferDesc{Size: limits.MaxUniformBufferSize + 1})
	if !errors.Is(err, gpu.ErrCapacity) {
		t.Fatalf("oversized uniform buffer: got %v, want an error wrapping ErrCapacity", err)
	}

	buf, err := dev.NewShaderUniformBuffer(gpu.BufferDesc{Size: 64, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("in-budget uniform buffer: %v", err)
	}
	if buf.Kind() != gpu.KUniformBuffer {
		t.Errorf("Kind: got %v, want KUniformBuffer", buf.Kind())
	}
}

func TestNewShaderStorageBufferCapacity(t *testing.T) {
	dev := newTestDevice(t)
	limits := dev.Limits()

	_, err := dev.NewShaderStorageBuffer(gpu.BufferDesc{Size: limits.MaxStorageBufferSize + 1})
	if !errors.Is(err, gpu.ErrCapacity) {
		t.Fatalf("oversized storage buffer: got %v, want an error wrapping ErrCapacity", err)
	}
}

func TestNewTextureBufferMipmapRetry(t *testing.T) {
	dev := newTestDevice(t)
	limits := dev.Limits()

	desc := gpu.TextureDesc{
		Size:         gpu.Dim2D{Width: 64, Height: 64},
		MipMapLevels: limits.MaxMipMapLevels + 4,
	}
	tex, err := dev.NewTextureBuffer(desc)
	if err != nil {
		t.Fatalf("NewTextureBuffer: got error %v, want the single-mipmap retry to succeed", err)
	}
	if got := tex.Description().MipMapLevels; got != 1 {
		t.Errorf("MipMapLevels after retry: got %d, want 1", got)
	}
}

func TestDeviceQueueShape(t *testing.T) {
	dev := newTestDevice(t)
	if len(dev.RenderQueues()) != 1 {
		t.Errorf("RenderQueues: got %d, want 1", len(dev.RenderQueues()))
	}
	if len(dev.ComputeQueues()) != 1 {
		t.Errorf("ComputeQueues: got %d, want 1", len(dev.ComputeQueues()))
	}
	if dev.RenderQueues()[0] != dev.ComputeQueues()[0] {
		t.Error("RenderQueues()[0] and ComputeQueues()[0]: got distinct queues, want the same queue")
	}
	if len(dev.TransferQueues()) != 0 {
		t.Errorf("TransferQueues: got %d, want 0", len(dev.TransferQueues()))
	}
}
