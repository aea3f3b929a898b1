package framegraph

import (
	"errors"
	"testing"

	"github.com/gviegas/rgcore/gpu"
	"github.com/gviegas/rgcore/gpu/backend/mem"
)

func newTestDevice() *gpu.Device {
	return gpu.NewDevice(mem.New(gpu.Limits{}))
}

// TestExecuteTriangle runs a single pass that clears the back buffer
// and draws one triangle, and checks the frame's accumulated
// statistics, mirroring the simplest end-to-end draw scenario.
func TestExecuteTriangle(t *testing.T) {
	dev := newTestDevice()
	backBuffer, err := dev.NewRenderTarget(gpu.RenderTargetDesc{
		Size:                gpu.Dim2D{Width: 800, Height: 600},
		NumColorAttachments: 1,
	})
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}

	layout := gpu.Layout{{Type: gpu.AttribVec3, Component: gpu.CompF32}}

	triangle := &fakePass{name: "triangle", setup: func(b *Builder) {
		vb := b.CreateVertexBuffer(gpu.BufferDesc{Size: 3 * 3 * 4, BufferType: gpu.HostVisible})
		b.Upload(vb, func() []byte { return make([]byte, 3*3*4) })
		code := b.CreateShaderCode([]byte("passthrough"))
		vao := b.CreateVertexArrayObject(gpu.VAODesc{VertexLayout: layout}, vb, noHandle, noHandle)
		pipe := b.CreateRenderPipeline(RenderPipelineDesc{
			Stages:       map[gpu.Stage]ShaderStage{gpu.StageVertex: {Code: code, Entry: "main"}},
			Primitive:    gpu.PrimTriangle,
			VertexLayout: layout,
			Blend:        []gpu.BlendState{{}},
		})
		pass := b.CreateRenderPass(gpu.RenderPassDesc{NumColorAttachments: 1})

		b.BeginPass(pass, BackBuffer)
		b.ClearColor(gpu.ClearColorParam{})
		b.SetViewport([2]int{0, 0}, [2]int{800, 600})
		b.BindPipeline(pipe)
		b.BindVertexArrayObject(vao)
		b.DrawArray(0, 3)
		b.FinishPass()
	}}

	g := Build(BackBufferDesc{Size: gpu.Dim2D{Width: 800, Height: 600}, NumColorAttachments: 1},
		dev.Limits(), nil, DefaultSettings(), nil, nil, []Pass{triangle})

	alloc := NewAllocator(dev)
	stats, err := alloc.Execute(g, backBuffer)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stats.DrawCalls != 1 {
		t.Errorf("got %d draw calls, want 1", stats.DrawCalls)
	}
	if stats.Polys != 1 {
		t.Errorf("got %d polys, want 1", stats.Polys)
	}
}

// TestExecuteUnknownHandle checks that referencing a handle with no
// producer in the frame (and no persisted entry) fails the frame
// instead of panicking.
func TestExecuteUnknownHandle(t *testing.T) {
	dev := newTestDevice()
	p := &fakePass{name: "dangling", setup: func(b *Builder) {
		b.BindPipeline(Handle(999))
	}}
	g := Build(BackBufferDesc{}, dev.Limits(), nil, DefaultSettings(), nil, nil, []Pass{p})

	alloc := NewAllocator(dev)
	_, err := alloc.Execute(g, nil)
	if !errors.Is(err, gpu.ErrUnknownResource) {
		t.Fatalf("got %v, want an error wrapping gpu.ErrUnknownResource", err)
	}
}

// TestPersistenceAcrossFrames checks that a handle persisted in one
// frame is visible to the next frame's Builder/Allocator pair without
// being recreated, and is dropped once a later frame stops persisting
// it.
func TestPersistenceAcrossFrames(t *testing.T) {
	dev := newTestDevice()
	alloc := NewAllocator(dev)

	var produced Handle
	init := &fakePass{name: "init", setup: func(b *Builder) {
		produced = b.CreateVertexBuffer(gpu.BufferDesc{Size: 12, BufferType: gpu.HostVisible})
		b.Upload(produced, func() []byte { return []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12} })
		b.Persist(produced)
	}}
	g1 := Build(BackBufferDesc{}, dev.Limits(), nil, DefaultSettings(), nil, nil, []Pass{init})
	if _, err := alloc.Execute(g1, nil); err != nil {
		t.Fatalf("frame 1: %v", err)
	}

	persisted := alloc.PersistedHandles()
	if !persisted[produced] {
		t.Fatalf("handle %d not reported persisted after frame 1: %v", produced, persisted)
	}

	copyPass := &fakePass{name: "copy", setup: func(b *Builder) {
		dst := b.CreateVertexBuffer(gpu.BufferDesc{Size: 12, BufferType: gpu.HostVisible})
		b.Copy(produced, dst, 0, 0, 12)
	}}
	g2 := Build(BackBufferDesc{}, dev.Limits(), nil, DefaultSettings(), persisted, nil, []Pass{copyPass})
	if _, err := alloc.Execute(g2, nil); err != nil {
		t.Fatalf("frame 2: %v", err)
	}

	if got := alloc.PersistedHandles(); len(got) != 0 {
		t.Errorf("got %v persisted after frame 2 dropped persistence, want none", got)
	}
}

// TestGetSlotResolvesPersistedSlotAcrossFrames exercises the literal
// scenario of a slot assigned and persisted in one frame being resolved
// by GetSlot in the following frame, without any producer pass running
// again: frame 1 assigns a slot and persists its handle; frame 2 never
// calls AssignSlot for that slot, only GetSlot, fed by the Allocator's
// PersistedSlots/PersistedHandles from frame 1.
func TestGetSlotResolvesPersistedSlotAcrossFrames(t *testing.T) {
	dev := newTestDevice()
	alloc := NewAllocator(dev)

	var produced Handle
	producer := &fakePass{name: "gbuffer", setup: func(b *Builder) {
		produced = b.CreateTexture(gpu.TextureDesc{Size: gpu.Dim2D{Width: 4, Height: 4}})
		if err := b.AssignSlot(SlotGBufferAlbedo, produced); err != nil {
			t.Fatalf("AssignSlot: %v", err)
		}
		b.Persist(produced)
	}}
	g1 := Build(BackBufferDesc{}, dev.Limits(), nil, DefaultSettings(), nil, nil, []Pass{producer})
	if _, err := alloc.Execute(g1, nil); err != nil {
		t.Fatalf("frame 1: %v", err)
	}

	persistedHandles := alloc.PersistedHandles()
	persistedSlots := alloc.PersistedSlots()
	if persistedSlots[SlotGBufferAlbedo] != produced {
		t.Fatalf("PersistedSlots after frame 1: got %v, want slot %d -> handle %d", persistedSlots, SlotGBufferAlbedo, produced)
	}

	var resolved Handle
	consumer := &fakePass{name: "lighting", setup: func(b *Builder) {
		h, err := b.GetSlot(SlotGBufferAlbedo)
		if err != nil {
			t.Fatalf("GetSlot in frame 2: %v", err)
		}
		resolved = h
	}}
	g2 := Build(BackBufferDesc{}, dev.Limits(), nil, DefaultSettings(), persistedHandles, persistedSlots, []Pass{consumer})
	if _, err := alloc.Execute(g2, nil); err != nil {
		t.Fatalf("frame 2: %v", err)
	}

	if resolved != produced {
		t.Errorf("GetSlot in frame 2: got handle %d, want %d (carried over from frame 1)", resolved, produced)
	}
}

func TestCopyBufferCmdRejectsMismatchedKinds(t *testing.T) {
	src := resolved{kind: KindVertexBuffer}
	dst := resolved{kind: KindIndexBuffer}
	if _, err := copyBufferCmd(src, dst, 0, 0, 0); err == nil {
		t.Fatal("copyBufferCmd: got nil error for mismatched buffer kinds")
	}
}
