package core

// Direction of a GPIO pin
type Direction uint8

const (
	DirInput Direction = iota
	DirOutput
)

func (d Direction) String() string {
	if d == DirOutput {
		return "output"
	}
	return "input"
}

// Pull configuration of a GPIO pin
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return "none"
	}
}

// MappingKind tags the platform payload carried by a PinConfig.
type MappingKind string

const (
	MappingNone     MappingKind = ""
	MappingRegmap   MappingKind = "regmap"   // port register bank: Port + Bit
	MappingPeriph   MappingKind = "periph"   // host GPIO line name: Line
	MappingRP2040   MappingKind = "rp2040"   // machine.Pin number: Bit
	MappingArduino  MappingKind = "arduino"  // digital pin number: Bit
	MappingExpander MappingKind = "expander" // I2C expander: Port + Bit
)

// Mapping is the optional platform-specific location of a pin.
// A driver only reads the mapping whose Kind it understands.
type Mapping struct {
	Kind MappingKind
	Port uint8
	Bit  uint8
	Line string
}

// PinConfig describes one configured pin.
type PinConfig struct {
	Name      string
	Direction Direction
	Pull      Pull
	Mappings  []Mapping
}

// MappingFor returns the mapping of the given kind.
func (c PinConfig) MappingFor(kind MappingKind) (Mapping, bool) {
	for _, m := range c.Mappings {
		if m.Kind == kind {
			return m, true
		}
	}
	return Mapping{}, false
}

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware or simulator
// access. Read returns the physical sample of the pin.
type GPIODriver interface {
	// Read reads the current pin state
	Read(name string) (bool, error)

	// Write sets the pin to high (true) or low (false)
	Write(name string, value bool) error
}

// Initializer is implemented by drivers that need setup before use.
// Init enumerates the pin configuration source.
type Initializer interface {
	Init() error
}

// Configurer is implemented by drivers that can (re)configure a pin.
type Configurer interface {
	Configure(cfg PinConfig) error
}

// TwinTarget is implemented by register-access drivers whose physical
// samples are merged with a digital-twin override.
type TwinTarget interface {
	// SetSimulated stores the injected value for the pin.
	SetSimulated(name string, value bool) error

	// Simulated returns the injected value and the pin's pull.
	Simulated(name string) (bool, Pull, error)
}

// DriverFuncs is a capability table built from plain functions.
// Any nil slot behaves as a missing capability.
type DriverFuncs struct {
	InitFunc      func() error
	ConfigureFunc func(cfg PinConfig) error
	ReadFunc      func(name string) (bool, error)
	WriteFunc     func(name string, value bool) error
}

func (d *DriverFuncs) Init() error {
	if d.InitFunc == nil {
		return nil
	}
	return d.InitFunc()
}

func (d *DriverFuncs) Configure(cfg PinConfig) error {
	if d.ConfigureFunc == nil {
		return Errf(DriverMissing, "configure", cfg.Name, nil)
	}
	return d.ConfigureFunc(cfg)
}

func (d *DriverFuncs) Read(name string) (bool, error) {
	if d.ReadFunc == nil {
		return false, Errf(DriverMissing, "read", name, nil)
	}
	return d.ReadFunc(name)
}

func (d *DriverFuncs) Write(name string, value bool) error {
	if d.WriteFunc == nil {
		return Errf(DriverMissing, "write", name, nil)
	}
	return d.WriteFunc(name, value)
}
