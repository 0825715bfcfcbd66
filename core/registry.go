package core

// DriverSource yields the currently bound driver.
type DriverSource interface {
	Driver() (GPIODriver, bool)
}

// Registry holds a single non-owning reference to the bound driver.
// Register is expected once, before the main loop starts; it is not
// synchronised.
type Registry struct {
	driver GPIODriver
}

// NewRegistry returns a registry with d bound (d may be nil).
func NewRegistry(d GPIODriver) *Registry {
	return &Registry{driver: d}
}

// Register binds d, overwriting any previous driver.
func (r *Registry) Register(d GPIODriver) {
	r.driver = d
}

// Driver returns the bound driver, or false if none is registered.
func (r *Registry) Driver() (GPIODriver, bool) {
	if r == nil || r.driver == nil {
		return nil, false
	}
	return r.driver, true
}

// Global registry used by firmware entry points.
var gpioRegistry Registry

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioRegistry.Register(d)
}

// ActiveGPIO returns the process-wide registry.
func ActiveGPIO() *Registry {
	return &gpioRegistry
}
