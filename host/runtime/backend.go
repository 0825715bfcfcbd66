package runtime

import (
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"gpiotwin/config"
	"gpiotwin/core"
	"gpiotwin/targets/filesim"
	"gpiotwin/targets/httpsim"
	"gpiotwin/targets/periph"
	"gpiotwin/targets/regmap"
)

// memoryPorts is the minimum size of the emulated register bank.
const memoryPorts = 3

// NewDriver builds the GPIO driver selected by cfg.Backend. The returned
// closer releases backend resources and may be nil.
func NewDriver(cfg *config.Config, pins []core.PinConfig, log zerolog.Logger) (core.GPIODriver, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendRegmap:
		return regmap.New(regmap.NewMemoryBank(bankPorts(pins)), core.MappingRegmap, pins, log), nil, nil

	case config.BackendExpander:
		if _, err := host.Init(); err != nil {
			return nil, nil, fmt.Errorf("periph host init: %w", err)
		}
		bus, err := i2creg.Open(cfg.Expander.Bus)
		if err != nil {
			return nil, nil, fmt.Errorf("open i2c bus %q: %w", cfg.Expander.Bus, err)
		}
		bank := regmap.NewExpanderBank(bus, cfg.Expander.Address)
		return regmap.New(bank, core.MappingExpander, pins, log), bus, nil

	case config.BackendPeriph:
		return periph.New(pins, log), nil, nil

	case config.BackendHTTP:
		return httpsim.New(pins, httpsim.Options{
			BaseURL:    cfg.HTTP.BaseURL,
			Attempts:   cfg.HTTP.Attempts,
			RetryDelay: cfg.HTTP.RetryDelay,
			Client:     &http.Client{Timeout: cfg.HTTP.Timeout},
		}, log), nil, nil

	case config.BackendFile:
		return filesim.New(cfg.File.Dir, pins, log), nil, nil
	}
	return nil, nil, core.Errf(core.ConfigInvalid, "new_driver", "", fmt.Errorf("unknown backend %q", cfg.Backend))
}

// bankPorts sizes the emulated bank to cover every regmap mapping.
func bankPorts(pins []core.PinConfig) uint8 {
	n := uint8(memoryPorts)
	for _, p := range pins {
		if m, ok := p.MappingFor(core.MappingRegmap); ok && m.Port >= n {
			n = m.Port + 1
		}
	}
	return n
}
