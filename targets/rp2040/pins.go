//go:build rp2040

package main

import "gpiotwin/core"

// boardPins is the Pico pin table. It mirrors config/pins.yaml for the
// rp2040 mapping; the firmware avoids parsing YAML at boot.
var boardPins = []core.PinConfig{
	{
		Name:      "LED1",
		Direction: core.DirOutput,
		Pull:      core.PullNone,
		Mappings:  []core.Mapping{{Kind: core.MappingRP2040, Bit: 25}},
	},
	{
		Name:      "BUTTON1",
		Direction: core.DirInput,
		Pull:      core.PullUp,
		Mappings:  []core.Mapping{{Kind: core.MappingRP2040, Bit: 15}},
	},
}
