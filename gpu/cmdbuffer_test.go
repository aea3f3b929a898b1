package gpu_test

import (
	"errors"
	"testing"

	"github.com/gviegas/rgcore/gpu"
	"github.com/gviegas/rgcore/gpu/backend/mem"
)

func newTestDevice(t *testing.T) *gpu.Device {
	t.Helper()
	return gpu.NewDevice(mem.New(gpu.Limits{}))
}

func TestCmdBufferRecordReplay(t *testing.T) {
	dev := newTestDevice(t)
	cb, err := dev.NewCmdBuffer()
	if err != nil {
		t.Fatalf("NewCmdBuffer: %v", err)
	}

	if err := cb.Add(gpu.Command{}); err == nil {
		t.Fatal("Add before Begin: got nil error")
	}

	if err := cb.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := cb.Begin(); err == nil {
		t.Fatal("Begin while recording: got nil error")
	}
	if err := cb.Add(gpu.Command{Kind: gpu.CmdDebugBeginGroup, DebugName: "a"}, gpu.Command{Kind: gpu.CmdDebugEndGroup}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n := len(cb.Recorded()); n != 2 {
		t.Fatalf("Recorded: got %d commands, want 2", n)
	}
	if cb.Sealed() {
		t.Fatal("Sealed: got true before End")
	}
	if err := cb.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if !cb.Sealed() {
		t.Fatal("Sealed: got false after End")
	}
	if err := cb.Add(gpu.Command{}); err == nil {
		t.Fatal("Add after End: got nil error")
	}
	if err := cb.End(); err == nil {
		t.Fatal("End while not recording: got nil error")
	}

	// Begin again clears the prior recording.
	if err := cb.Begin(); err != nil {
		t.Fatalf("Begin (second): %v", err)
	}
	if n := len(cb.Recorded()); n != 0 {
		t.Fatalf("Recorded after re-Begin: got %d commands, want 0", n)
	}
}

func TestFenceWaitSignal(t *testing.T) {
	dev := newTestDevice(t)
	cb, _ := dev.NewCmdBuffer()
	cb.Begin()
	cb.End()

	f, err := dev.RenderQueues()[0].Submit([]*gpu.CmdBuffer{cb}, nil, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !f.IsComplete() {
		t.Error("IsComplete: got false for a synchronously-executed submission")
	}
	if err := f.Wait(); err != nil {
		t.Errorf("Wait: got %v, want nil", err)
	}
	if err := f.GetException(); err != nil {
		t.Errorf("GetException: got %v, want nil", err)
	}
}

func TestSubmitRejectsUnsealedBuffer(t *testing.T) {
	dev := newTestDevice(t)
	cb, _ := dev.NewCmdBuffer()
	cb.Begin()

	_, err := dev.RenderQueues()[0].Submit([]*gpu.CmdBuffer{cb}, nil, nil)
	if !errors.Is(err, gpu.ErrInvalidState) {
		t.Fatalf("Submit on unsealed buffer: got %v, want an error wrapping ErrInvalidState", err)
	}
}
