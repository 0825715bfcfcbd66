package regmap

import (
	"github.com/rs/zerolog"

	"gpiotwin/core"
)

// Driver is a register-access GPIO driver. Reads of output pins return
// the latch and reads of input pins return the input register. It keeps
// a digital-twin override per pin for reconciliation.
type Driver struct {
	bank  RegisterBank
	kind  core.MappingKind
	cfgs  []core.PinConfig
	table *core.PinTable
	log   zerolog.Logger
}

// New creates a driver for cfgs over bank. kind selects which pin mapping
// gives the port and bit (core.MappingRegmap or core.MappingExpander).
func New(bank RegisterBank, kind core.MappingKind, cfgs []core.PinConfig, log zerolog.Logger) *Driver {
	return &Driver{
		bank: bank,
		kind: kind,
		cfgs: cfgs,
		log:  log.With().Str("driver", "regmap").Str("mapping", string(kind)).Logger(),
	}
}

// Init builds the pin table and configures every pin that has a mapping
// for this driver. Pins without one are left unconfigured.
func (d *Driver) Init() error {
	table, skipped := core.NewPinTable(d.cfgs)
	for _, name := range skipped {
		d.log.Warn().Str("pin", name).Msg("pin table full, skipping")
	}
	d.table = table

	for i := 0; i < table.Len(); i++ {
		cfg := table.At(i).Config
		if err := d.Configure(cfg); err != nil {
			d.log.Warn().Err(err).Str("pin", cfg.Name).Msg("pin not configured")
		}
	}
	return nil
}

// Configure applies cfg to the registers. Outputs start LOW. Pull-up sets
// the pull bit; pull-down only clears it since the port has no internal
// pull-down.
func (d *Driver) Configure(cfg core.PinConfig) error {
	if d.table == nil {
		return core.Errf(core.NotInitialized, "configure", cfg.Name, nil)
	}
	if cfg.Name == "" {
		return core.Errf(core.NullParameter, "configure", "", nil)
	}
	p, ok := d.table.Find(cfg.Name)
	if !ok {
		return core.Errf(core.PinNotFound, "configure", cfg.Name, nil)
	}
	m, ok := cfg.MappingFor(d.kind)
	if !ok || m.Bit > 7 || m.Port >= d.bank.Ports() {
		return core.Errf(core.InvalidParameter, "configure", cfg.Name, nil)
	}

	var err error
	if cfg.Direction == core.DirOutput {
		if err = updateBit(d.bank, m.Port, RegLatch, m.Bit, false); err == nil {
			err = updateBit(d.bank, m.Port, RegDir, m.Bit, true)
		}
	} else {
		if err = updateBit(d.bank, m.Port, RegDir, m.Bit, false); err == nil {
			err = updateBit(d.bank, m.Port, RegPull, m.Bit, cfg.Pull == core.PullUp)
		}
	}
	if err != nil {
		return core.Errf(core.TransientIO, "configure", cfg.Name, err)
	}

	p.Config = cfg
	p.Configured = true
	p.Value = false
	d.log.Debug().Str("pin", cfg.Name).Str("dir", cfg.Direction.String()).Str("pull", cfg.Pull.String()).
		Uint8("port", m.Port).Uint8("bit", m.Bit).Msg("configured")
	return nil
}

func (d *Driver) lookup(op, name string) (*core.PinState, core.Mapping, error) {
	if d.table == nil {
		return nil, core.Mapping{}, core.Errf(core.NotInitialized, op, name, nil)
	}
	p, err := d.table.Lookup(op, name)
	if err != nil {
		return nil, core.Mapping{}, err
	}
	m, _ := p.Config.MappingFor(d.kind)
	return p, m, nil
}

// Read returns the physical level of name.
func (d *Driver) Read(name string) (bool, error) {
	p, m, err := d.lookup("read", name)
	if err != nil {
		return false, err
	}
	reg := RegInput
	if p.Config.Direction == core.DirOutput {
		reg = RegLatch
	}
	v, err := readBit(d.bank, m.Port, reg, m.Bit)
	if err != nil {
		return false, core.Errf(core.TransientIO, "read", name, err)
	}
	p.Value = v
	return v, nil
}

// Write drives an output pin.
func (d *Driver) Write(name string, value bool) error {
	p, m, err := d.lookup("write", name)
	if err != nil {
		return err
	}
	if p.Config.Direction != core.DirOutput {
		return core.Errf(core.InvalidState, "write", name, nil)
	}
	if err := updateBit(d.bank, m.Port, RegLatch, m.Bit, value); err != nil {
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

// Pins returns the pin table, or nil before Init.
func (d *Driver) Pins() *core.PinTable {
	return d.table
}
