package gpu_test

import (
	"errors"
	"testing"

	"github.com/gviegas/rgcore/gpu"
)

func submitOne(t *testing.T, dev *gpu.Device, cmds ...gpu.Command) error {
	t.Helper()
	cb, err := dev.NewCmdBuffer()
	if err != nil {
		t.Fatalf("NewCmdBuffer: %v", err)
	}
	if err := cb.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := cb.Add(cmds...); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := cb.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	_, err = dev.RenderQueues()[0].Submit([]*gpu.CmdBuffer{cb}, nil, nil)
	return err
}

func newTarget(t *testing.T, dev *gpu.Device, colorAttachments int) *gpu.RenderTarget {
	t.Helper()
	rt, err := dev.NewRenderTarget(gpu.RenderTargetDesc{
		Size:                gpu.Dim2D{Width: 4, Height: 4},
		NumColorAttachments: colorAttachments,
	})
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}
	return rt
}

func newPass(t *testing.T, dev *gpu.Device, colorAttachments int) *gpu.RenderPass {
	t.Helper()
	p, err := dev.NewRenderPass(gpu.RenderPassDesc{NumColorAttachments: colorAttachments})
	if err != nil {
		t.Fatalf("NewRenderPass: %v", err)
	}
	return p
}

func TestBeginPassSignatureMismatch(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 2)

	err := submitOne(t, dev, pass.Begin(target))
	if !errors.Is(err, gpu.ErrIncompatibleTarget) {
		t.Fatalf("BeginPass with mismatched signatures: got %v, want an error wrapping ErrIncompatibleTarget", err)
	}
}

func TestBeginPassTwiceFails(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 1)

	err := submitOne(t, dev, pass.Begin(target), pass.Begin(target))
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("BeginPass twice: got %v, want an error wrapping ErrInvalidState", err)
	}
}

func TestEndPassWithoutBeginFails(t *testing.T) {
	dev := newTestDevice(t)
	pass := newPass(t, dev, 1)

	err := submitOne(t, dev, pass.End())
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("EndPass without BeginPass: got %v, want an error wrapping ErrInvalidState", err)
	}
}

func TestDrawOutsidePassFails(t *testing.T) {
	dev := newTestDevice(t)
	pass := newPass(t, dev, 1)

	err := submitOne(t, dev, pass.DrawArray(0, 3))
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("draw outside a pass: got %v, want an error wrapping ErrInvalidState", err)
	}
}

func TestDrawWithoutPipelineFails(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 1)

	err := submitOne(t, dev, pass.Begin(target), pass.DrawArray(0, 3))
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("draw without a bound pipeline: got %v, want an error wrapping ErrInvalidState", err)
	}
}

func TestDrawWithoutVAOFails(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 1)
	layout := gpu.Layout{{Type: gpu.AttribVec3, Component: gpu.CompF32}}
	pl, err := dev.NewRenderPipeline(gpu.RenderPipelineDesc{
		Primitive:    gpu.PrimTriangle,
		VertexLayout: layout,
		Blend:        []gpu.BlendState{{}},
	}, nil)
	if err != nil {
		t.Fatalf("NewRenderPipeline: %v", err)
	}

	err = submitOne(t, dev, pass.Begin(target), pass.BindPipeline(pl), pass.DrawArray(0, 3))
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("draw without a bound VAO: got %v, want an error wrapping ErrInvalidState", err)
	}
}

func TestDrawVertexLayoutMismatchFails(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 1)

	plLayout := gpu.Layout{{Type: gpu.AttribVec3, Component: gpu.CompF32}}
	vaoLayout := gpu.Layout{{Type: gpu.AttribVec2, Component: gpu.CompF32}}

	pl, err := dev.NewRenderPipeline(gpu.RenderPipelineDesc{
		Primitive:    gpu.PrimTriangle,
		VertexLayout: plLayout,
		Blend:        []gpu.BlendState{{}},
	}, nil)
	if err != nil {
		t.Fatalf("NewRenderPipeline: %v", err)
	}
	vb, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 64, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	vao, err := dev.NewVertexArrayObject(gpu.VAODesc{VertexLayout: vaoLayout}, vb, nil, nil)
	if err != nil {
		t.Fatalf("NewVertexArrayObject: %v", err)
	}

	err = submitOne(t, dev, pass.Begin(target), pass.BindPipeline(pl), pass.BindVertexArrayObject(vao), pass.DrawArray(0, 3))
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("draw with mismatched vertex layouts: got %v, want an error wrapping ErrInvalidState", err)
	}
}

func TestDrawBindImageAcceptsTextureAndImage(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	layout := gpu.Layout{{Type: gpu.AttribVec3, Component: gpu.CompF32}}

	tex, err := dev.NewTextureBuffer(gpu.TextureDesc{Size: gpu.Dim2D{Width: 4, Height: 4}})
	if err != nil {
		t.Fatalf("NewTextureBuffer: %v", err)
	}
	vb, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 9 * 4, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	vao, err := dev.NewVertexArrayObject(gpu.VAODesc{VertexLayout: layout}, vb, nil, nil)
	if err != nil {
		t.Fatalf("NewVertexArrayObject: %v", err)
	}

	for _, tc := range []struct {
		name string
		res  gpu.ShaderResource
	}{
		{"image-tagged resource", gpu.ShaderResource{Image: tex}},
		{"plain texture resource", gpu.ShaderResource{Texture: tex}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pass := newPass(t, dev, 1)
			pl, err := dev.NewRenderPipeline(gpu.RenderPipelineDesc{
				Bindings:     []gpu.BindingKind{gpu.BindImage},
				Primitive:    gpu.PrimTriangle,
				VertexLayout: layout,
				Blend:        []gpu.BlendState{{}},
			}, nil)
			if err != nil {
				t.Fatalf("NewRenderPipeline: %v", err)
			}

			err = submitOne(t, dev,
				pass.Begin(target),
				pass.BindPipeline(pl),
				pass.BindVertexArrayObject(vao),
				pass.BindShaderResources([]gpu.ShaderResource{tc.res}),
				pass.DrawArray(0, 9),
				pass.End(),
			)
			if err != nil {
				t.Fatalf("draw with a BindImage binding and %s: %v", tc.name, err)
			}
		})
	}
}

func TestDrawBindImageRejectsUniformResource(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 1)
	layout := gpu.Layout{{Type: gpu.AttribVec3, Component: gpu.CompF32}}

	pl, err := dev.NewRenderPipeline(gpu.RenderPipelineDesc{
		Bindings:     []gpu.BindingKind{gpu.BindImage},
		Primitive:    gpu.PrimTriangle,
		VertexLayout: layout,
		Blend:        []gpu.BlendState{{}},
	}, nil)
	if err != nil {
		t.Fatalf("NewRenderPipeline: %v", err)
	}
	vb, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 9 * 4, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	vao, err := dev.NewVertexArrayObject(gpu.VAODesc{VertexLayout: layout}, vb, nil, nil)
	if err != nil {
		t.Fatalf("NewVertexArrayObject: %v", err)
	}
	ub, err := dev.NewShaderUniformBuffer(gpu.BufferDesc{Size: 16, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewShaderUniformBuffer: %v", err)
	}

	err = submitOne(t, dev,
		pass.Begin(target),
		pass.BindPipeline(pl),
		pass.BindVertexArrayObject(vao),
		pass.BindShaderResources([]gpu.ShaderResource{{Uniform: ub}}),
		pass.DrawArray(0, 9),
	)
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("draw with a BindImage binding and a uniform resource: got %v, want an error wrapping ErrInvalidState", err)
	}
}

func TestDrawAccumulatesStats(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 1)
	layout := gpu.Layout{{Type: gpu.AttribVec3, Component: gpu.CompF32}}

	pl, err := dev.NewRenderPipeline(gpu.RenderPipelineDesc{
		Primitive:    gpu.PrimTriangle,
		VertexLayout: layout,
		Blend:        []gpu.BlendState{{}},
	}, nil)
	if err != nil {
		t.Fatalf("NewRenderPipeline: %v", err)
	}
	vb, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 9 * 4, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	vao, err := dev.NewVertexArrayObject(gpu.VAODesc{VertexLayout: layout}, vb, nil, nil)
	if err != nil {
		t.Fatalf("NewVertexArrayObject: %v", err)
	}

	err = submitOne(t, dev,
		pass.Begin(target),
		pass.BindPipeline(pl),
		pass.BindVertexArrayObject(vao),
		pass.DrawArray(0, 9), // 9 vertices / 3 per triangle = 3 polys
		pass.DrawArrayInstanced(0, 3, 4), // 3/3 * 4 instances = 4 polys
		pass.End(),
	)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	stats := dev.GetFrameStats()
	if stats.DrawCalls != 2 {
		t.Errorf("DrawCalls: got %d, want 2", stats.DrawCalls)
	}
	if stats.Polys != 7 {
		t.Errorf("Polys: got %d, want 7", stats.Polys)
	}

	// GetFrameStats resets the accumulator.
	if again := dev.GetFrameStats(); again.DrawCalls != 0 || again.Polys != 0 {
		t.Errorf("GetFrameStats did not reset: got %+v", again)
	}
}

func TestCopyOutsidePassOnly(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 1)

	src, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 16, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	dst, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 16, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	cmd := gpu.CopyVertexBuffer(src, dst, 0, 0, 16)

	err = submitOne(t, dev, pass.Begin(target), cmd)
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("copy inside a pass: got %v, want an error wrapping ErrInvalidState", err)
	}
}

func TestCopyBufferRangeValidation(t *testing.T) {
	dev := newTestDevice(t)
	src, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 16, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	dst, err := dev.NewVertexBuffer(gpu.BufferDesc{Size: 16, BufferType: gpu.HostVisible})
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}

	err = submitOne(t, dev, gpu.CopyVertexBuffer(src, dst, 0, 0, 32))
	if !errors.Is(err, gpu.ErrInvalidRange) {
		t.Fatalf("copy exceeding source size: got %v, want an error wrapping ErrInvalidRange", err)
	}

	err = submitOne(t, dev, gpu.CopyVertexBuffer(src, dst, 0, 8, 16))
	if !errors.Is(err, gpu.ErrInvalidRange) {
		t.Fatalf("copy exceeding target size: got %v, want an error wrapping ErrInvalidRange", err)
	}
}

func TestBlitNegativeRectFails(t *testing.T) {
	dev := newTestDevice(t)
	src := newTarget(t, dev, 1)
	dst := newTarget(t, dev, 1)

	err := submitOne(t, dev, gpu.BlitColor(src, dst, [2]int{-1, 0}, [2]int{0, 0}, [2]int{4, 4}, [2]int{4, 4}, gpu.FilterLinear))
	if !errors.Is(err, gpu.ErrInvalidRange) {
		t.Fatalf("blit with negative offset: got %v, want an error wrapping ErrInvalidRange", err)
	}
}

func TestSubmitRollsBackStateOnError(t *testing.T) {
	dev := newTestDevice(t)
	target := newTarget(t, dev, 1)
	pass := newPass(t, dev, 1)

	// First submission fails mid-way (draw with no pipeline bound);
	// the queue's state must roll back so a later, valid submission
	// is not corrupted by it.
	if err := submitOne(t, dev, pass.Begin(target), pass.DrawArray(0, 3)); err == nil {
		t.Fatal("expected the first submission to fail")
	}

	if err := submitOne(t, dev, pass.End()); !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("EndPass after a rolled-back failure: got %v, want an error wrapping ErrInvalidState (no pass should be running)", err)
	}
}
