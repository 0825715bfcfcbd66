//go:build rp2040

package main

import (
	"machine"

	"gpiotwin/core"
)

// RPGPIODriver implements core.GPIODriver on the RP2040 GPIO block. The
// rp2040 mapping's Bit is the GPIO number.
type RPGPIODriver struct {
	cfgs  []core.PinConfig
	table *core.PinTable
	pins  [core.MaxPins]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver(cfgs []core.PinConfig) *RPGPIODriver {
	return &RPGPIODriver{cfgs: cfgs}
}

func (d *RPGPIODriver) Init() error {
	d.table, _ = core.NewPinTable(d.cfgs)
	for i := 0; i < d.table.Len(); i++ {
		// Pins without an rp2040 mapping stay unconfigured.
		_ = d.Configure(d.table.At(i).Config)
	}
	return nil
}

func (d *RPGPIODriver) Configure(cfg core.PinConfig) error {
	if d.table == nil {
		return core.Errf(core.NotInitialized, "configure", cfg.Name, nil)
	}
	if cfg.Name == "" {
		return core.Errf(core.NullParameter, "configure", "", nil)
	}
	idx := d.index(cfg.Name)
	if idx < 0 {
		return core.Errf(core.PinNotFound, "configure", cfg.Name, nil)
	}
	m, ok := cfg.MappingFor(core.MappingRP2040)
	if !ok || m.Bit > 29 {
		return core.Errf(core.InvalidParameter, "configure", cfg.Name, nil)
	}

	pin := machine.Pin(m.Bit)
	mode := machine.PinInput
	switch {
	case cfg.Direction == core.DirOutput:
		mode = machine.PinOutput
	case cfg.Pull == core.PullUp:
		mode = machine.PinInputPullup
	case cfg.Pull == core.PullDown:
		mode = machine.PinInputPulldown
	}
	pin.Configure(machine.PinConfig{Mode: mode})
	if mode == machine.PinOutput {
		pin.Low()
	}

	d.pins[idx] = pin
	p := d.table.At(idx)
	p.Config = cfg
	p.Configured = true
	p.Value = false
	return nil
}

func (d *RPGPIODriver) index(name string) int {
	for i := 0; i < d.table.Len(); i++ {
		if d.table.At(i).Config.Name == name {
			return i
		}
	}
	return -1
}

func (d *RPGPIODriver) lookup(op, name string) (*core.PinState, machine.Pin, error) {
	if d.table == nil {
		return nil, 0, core.Errf(core.NotInitialized, op, name, nil)
	}
	p, err := d.table.Lookup(op, name)
	if err != nil {
		return nil, 0, err
	}
	return p, d.pins[d.index(name)], nil
}

func (d *RPGPIODriver) Read(name string) (bool, error) {
	p, pin, err := d.lookup("read", name)
	if err != nil {
		return false, err
	}
	p.Value = pin.Get()
	return p.Value, nil
}

func (d *RPGPIODriver) Write(name string, value bool) error {
	p, pin, err := d.lookup("write", name)
	if err != nil {
		return err
	}
	if p.Config.Direction != core.DirOutput {
		return core.Errf(core.InvalidState, "write", name, nil)
	}
	pin.Set(value)
	p.Value = value
	return nil
}

func (d *RPGPIODriver) SetSimulated(name string, value bool) error {
	if d.table == nil {
		return core.Errf(core.NotInitialized, "set_simulated", name, nil)
	}
	return d.table.SetSimulated(name, value)
}

func (d *RPGPIODriver) Simulated(name string) (bool, core.Pull, error) {
	if d.table == nil {
		return false, core.PullNone, core.Errf(core.NotInitialized, "simulated", name, nil)
	}
	return d.table.Simulated(name)
}
