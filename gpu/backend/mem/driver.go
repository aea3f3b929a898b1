package mem

import "github.com/gviegas/rgcore/gpu"

const driverName = "mem"

// Driver registers the in-memory reference backend for selection via
// gpu.Drivers, following the same open-once/Name/Close contract every
// gpu.Driver implements.
type Driver struct {
	dev *gpu.Device
}

func init() { gpu.Register(&Driver{}) }

// Open constructs the backend's Device on first call and returns the
// same instance thereafter.
func (d *Driver) Open() (*gpu.Device, error) {
	if d.dev == nil {
		d.dev = gpu.NewDevice(New(gpu.Limits{}))
	}
	return d.dev, nil
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close drops the cached Device; a later Open constructs a new one.
func (d *Driver) Close() { d.dev = nil }
