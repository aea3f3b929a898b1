package wgpubk

import (
	"fmt"

	"github.com/gogpu/wgpu"
	"github.com/gviegas/rgcore/gpu"
)

const driverName = "wgpu"

// Driver opens the default wgpu instance/adapter/device chain and
// wraps the result in a gpu.Device, mirroring the reference Vulkan
// driver's open-once/Name/Close contract.
type Driver struct {
	inst *wgpu.Instance
	adpt *wgpu.Adapter
	wdev *wgpu.Device
	dev  *gpu.Device
}

func init() { gpu.Register(&Driver{}) }

// Open requests the default adapter and device on first call and
// returns the same *gpu.Device thereafter.
func (d *Driver) Open() (*gpu.Device, error) {
	if d.dev != nil {
		return d.dev, nil
	}
	inst, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpubk: CreateInstance: %w", err)
	}
	adpt, err := inst.RequestAdapter(nil)
	if err != nil {
		inst.Release()
		return nil, fmt.Errorf("wgpubk: RequestAdapter: %w", err)
	}
	wdev, err := adpt.RequestDevice(nil)
	if err != nil {
		adpt.Release()
		inst.Release()
		return nil, fmt.Errorf("wgpubk: RequestDevice: %w", err)
	}
	d.inst, d.adpt, d.wdev = inst, adpt, wdev
	d.dev = gpu.NewDevice(New(wdev))
	return d.dev, nil
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close releases the device, adapter and instance acquired by Open
// and drops the cached gpu.Device. Closing
// a driver that was never opened has no effect.
func (d *Driver) Close() {
	if d.wdev != nil {
		d.wdev.Release()
	}
	if d.adpt != nil {
		d.adpt.Release()
	}
	if d.inst != nil {
		d.inst.Release()
	}
	d.inst, d.adpt, d.wdev, d.dev = nil, nil, nil, nil
}
