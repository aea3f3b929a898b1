// Package gpu defines the GPU object model: a closed set of
// GPU-resident resource kinds, their descriptors, the handles
// that own them, and the command buffer/queue/render-pass
// machinery used to record and submit work against a backend.
//
// The package is the ABI; concrete backends (see gpu/backend/mem
// and gpu/backend/wgpubk) implement the Backend interface and are
// selected through a Driver: client code imports a backend package
// for its init side effect, then opens a Driver to obtain a Device.
package gpu

import (
	"errors"
	"log"
	"sync"
)

// Driver is the interface that provides methods for loading and
// unloading an underlying backend implementation.
type Driver interface {
	// Open initializes the backend and returns a Device.
	// If it succeeds, further calls with the same receiver
	// have no effect and must return the same Device.
	Open() (*Device, error)

	// Name returns the name of the driver.
	// It must not cause the driver to be opened.
	Name() string

	// Close deinitializes the driver.
	// Closing a driver that is not open has no effect.
	Close()
}

// ErrNotInstalled means that a platform-specific library required
// for the driver to work is not present in the system.
var ErrNotInstalled = errors.New("gpu: missing required library")

// ErrNoDevice means that no suitable device could be found.
var ErrNoDevice = errors.New("gpu: no suitable device found")

// Drivers returns the registered Drivers.
// Backend packages call Register from an init function; drivers
// that never register themselves are not considered for selection.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Register registers a Driver.
// If a driver with the same name has already been registered, it
// is replaced by drv.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Name() == drv.Name() {
			drivers[i] = drv
			log.Printf("[!] backend '%s' replaced", drv.Name())
			return
		}
	}
	drivers = append(drivers, drv)
	log.Printf("backend '%s' registered", drv.Name())
}

var (
	mu      sync.Mutex
	drivers []Driver = make([]Driver, 0, 1)
)
