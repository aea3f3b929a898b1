package mem_test

import (
	"testing"

	"github.com/gviegas/rgcore/gpu"
	_ "github.com/gviegas/rgcore/gpu/backend/mem"
)

func TestDriverRegisteredByName(t *testing.T) {
	for _, d := range gpu.Drivers() {
		if d.Name() == "mem" {
			return
		}
	}
	t.Fatal(`Drivers: "mem" not found among registered drivers (import init side effect missing)`)
}

func TestDriverOpenCaches(t *testing.T) {
	var drv gpu.Driver
	for _, d := range gpu.Drivers() {
		if d.Name() == "mem" {
			drv = d
			break
		}
	}
	if drv == nil {
		t.Fatal(`"mem" driver not registered`)
	}

	dev1, err := drv.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dev2, err := drv.Open()
	if err != nil {
		t.Fatalf("Open (second call): %v", err)
	}
	if dev1 != dev2 {
		t.Error("Open: second call returned a different Device than the first")
	}

	drv.Close()
	dev3, err := drv.Open()
	if err != nil {
		t.Fatalf("Open (after Close): %v", err)
	}
	if dev3 == dev1 {
		t.Error("Open after Close: got the same Device, want a freshly constructed one")
	}
}
