// Package filesim keeps simulated pin levels in one text file per pin,
// <dir>/<PIN>.txt holding "0" or "1", so other tools can watch or poke
// them.
package filesim

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"gpiotwin/core"
)

// Driver is a file-backed simulated GPIO driver.
type Driver struct {
	dir   string
	cfgs  []core.PinConfig
	table *core.PinTable
	log   zerolog.Logger
}

// New creates a driver storing state under dir.
func New(dir string, cfgs []core.PinConfig, log zerolog.Logger) *Driver {
	return &Driver{
		dir:  dir,
		cfgs: cfgs,
		log:  log.With().Str("driver", "filesim").Str("dir", dir).Logger(),
	}
}

// Path returns the state file of pin.
func (d *Driver) Path(pin string) string {
	return filepath.Join(d.dir, pin+".txt")
}

// Init creates the state directory and configures every pin.
func (d *Driver) Init() error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return core.Errf(core.NotInitialized, "init", "", err)
	}

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

// Configure marks cfg configured. Outputs are reset to LOW; an input's
// file is created at its idle level if it does not exist yet.
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

	if cfg.Direction == core.DirOutput {
		if err := d.store(cfg.Name, false); err != nil {
			return core.Errf(core.TransientIO, "configure", cfg.Name, err)
		}
	} else if _, err := os.Stat(d.Path(cfg.Name)); os.IsNotExist(err) {
		if err := d.store(cfg.Name, cfg.Pull == core.PullUp); err != nil {
			return core.Errf(core.TransientIO, "configure", cfg.Name, err)
		}
	}
	p.Config = cfg
	p.Configured = true
	p.Value = false
	return nil
}

// Read returns the level stored in the pin's file.
func (d *Driver) Read(name string) (bool, error) {
	p, err := d.lookup("read", name)
	if err != nil {
		return false, err
	}
	v, err := d.load(name)
	if err != nil {
		return false, core.Errf(core.TransientIO, "read", name, err)
	}
	p.Value = v
	return v, nil
}

// Write stores the level of an output pin.
func (d *Driver) Write(name string, value bool) error {
	p, err := d.lookup("write", name)
	if err != nil {
		return err
	}
	if p.Config.Direction != core.DirOutput {
		return core.Errf(core.InvalidState, "write", name, nil)
	}
	if err := d.store(name, value); err != nil {
		return core.Errf(core.TransientIO, "write", name, err)
	}
	p.Value = value
	return nil
}

func (d *Driver) lookup(op, name string) (*core.PinState, error) {
	if d.table == nil {
		return nil, core.Errf(core.NotInitialized, op, name, nil)
	}
	return d.table.Lookup(op, name)
}

func (d *Driver) store(name string, v bool) error {
	b := []byte("0\n")
	if v {
		b[0] = '1'
	}
	// Write then rename so readers never see a partial file.
	tmp := d.Path(name) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, d.Path(name))
}

func (d *Driver) load(name string) (bool, error) {
	b, err := os.ReadFile(d.Path(name))
	if err != nil {
		return false, err
	}
	switch string(bytes.TrimSpace(b)) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("%s: unexpected content %q", d.Path(name), bytes.TrimSpace(b))
}
