// Package periph drives pins through Linux host GPIO using periph.io.
package periph

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"gpiotwin/core"
)

// Resolver finds a host GPIO by line name.
type Resolver func(name string) gpio.PinIO

// Driver is a register-access GPIO driver backed by periph.io host pins.
// Pins are located by their periph mapping line (e.g. "GPIO17"), or by
// pin name when no mapping is given.
type Driver struct {
	cfgs     []core.PinConfig
	table    *core.PinTable
	pins     []gpio.PinIO // parallel to table
	resolve  Resolver
	hostInit func() error
	log      zerolog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithResolver replaces gpioreg.ByName.
func WithResolver(r Resolver) Option {
	return func(d *Driver) { d.resolve = r }
}

// WithoutHostInit skips periph host driver loading.
func WithoutHostInit() Option {
	return func(d *Driver) { d.hostInit = func() error { return nil } }
}

// New creates a driver for cfgs.
func New(cfgs []core.PinConfig, log zerolog.Logger, opts ...Option) *Driver {
	d := &Driver{
		cfgs:    cfgs,
		resolve: gpioreg.ByName,
		hostInit: func() error {
			_, err := host.Init()
			return err
		},
		log: log.With().Str("driver", "periph").Logger(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Init loads the periph host drivers and configures every pin.
func (d *Driver) Init() error {
	if err := d.hostInit(); err != nil {
		return core.Errf(core.NotInitialized, "init", "", fmt.Errorf("periph host: %w", err))
	}

	table, skipped := core.NewPinTable(d.cfgs)
	for _, name := range skipped {
		d.log.Warn().Str("pin", name).Msg("pin table full, skipping")
	}
	d.table = table
	d.pins = make([]gpio.PinIO, table.Len())

	for i := 0; i < table.Len(); i++ {
		cfg := table.At(i).Config
		if err := d.Configure(cfg); err != nil {
			d.log.Warn().Err(err).Str("pin", cfg.Name).Msg("pin not configured")
		}
	}
	return nil
}

func (d *Driver) index(name string) int {
	for i := 0; i < d.table.Len(); i++ {
		if d.table.At(i).Config.Name == name {
			return i
		}
	}
	return -1
}

func lineName(cfg core.PinConfig) string {
	if m, ok := cfg.MappingFor(core.MappingPeriph); ok && m.Line != "" {
		return m.Line
	}
	return cfg.Name
}

func toPull(p core.Pull) gpio.Pull {
	switch p {
	case core.PullUp:
		return gpio.PullUp
	case core.PullDown:
		return gpio.PullDown
	default:
		return gpio.Float
	}
}

// Configure sets the direction and pull of cfg. Outputs start LOW.
func (d *Driver) Configure(cfg core.PinConfig) error {
	if d.table == nil {
		return core.Errf(core.NotInitialized, "configure", cfg.Name, nil)
	}
	if cfg.Name == "" {
		return core.Errf(core.NullParameter, "configure", "", nil)
	}
	i := d.index(cfg.Name)
	if i < 0 {
		return core.Errf(core.PinNotFound, "configure", cfg.Name, nil)
	}
	line := lineName(cfg)
	pin := d.resolve(line)
	if pin == nil {
		return core.Errf(core.InvalidParameter, "configure", cfg.Name, fmt.Errorf("no host gpio %q", line))
	}

	var err error
	if cfg.Direction == core.DirOutput {
		err = pin.Out(gpio.Low)
	} else {
		err = pin.In(toPull(cfg.Pull), gpio.NoEdge)
	}
	if err != nil {
		return core.Errf(core.TransientIO, "configure", cfg.Name, err)
	}

	p := d.table.At(i)
	p.Config = cfg
	p.Configured = true
	p.Value = false
	d.pins[i] = pin
	d.log.Debug().Str("pin", cfg.Name).Str("line", line).Str("dir", cfg.Direction.String()).Msg("configured")
	return nil
}

func (d *Driver) lookup(op, name string) (*core.PinState, gpio.PinIO, error) {
	if d.table == nil {
		return nil, nil, core.Errf(core.NotInitialized, op, name, nil)
	}
	p, err := d.table.Lookup(op, name)
	if err != nil {
		return nil, nil, err
	}
	return p, d.pins[d.index(name)], nil
}

// Read samples the pin level.
func (d *Driver) Read(name string) (bool, error) {
	p, pin, err := d.lookup("read", name)
	if err != nil {
		return false, err
	}
	v := pin.Read() == gpio.High
	p.Value = v
	return v, nil
}

// Write drives an output pin.
func (d *Driver) Write(name string, value bool) error {
	p, pin, err := d.lookup("write", name)
	if err != nil {
		return err
	}
	if p.Config.Direction != core.DirOutput {
		return core.Errf(core.InvalidState, "write", name, nil)
	}
	if err := pin.Out(gpio.Level(value)); err != nil {
		return core.Errf(core.TransientIO, "write", name, err)
	}
	p.Value = value
	return nil
}

// SetSimulated stores the digital-twin override for name.
func (d *Driver) SetSimulated(name string, value bool) error {
	if d.table == nil {
		return core.Errf(core.NotInitialized, "set_simulated", name, nil)
	}
	return d.table.SetSimulated(name, value)
}

// Simulated returns the digital-twin override and pull of name.
func (d *Driver) Simulated(name string) (bool, core.Pull, error) {
	if d.table == nil {
		return false, core.PullNone, core.Errf(core.NotInitialized, "simulated", name, nil)
	}
	return d.table.Simulated(name)
}
