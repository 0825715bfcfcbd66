package regmap

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// MCP23017 registers, IOCON.BANK = 0 (A/B interleaved)
const (
	mcpIODIRA = 0x00
	mcpGPPUA  = 0x0C
	mcpGPIOA  = 0x12
	mcpOLATA  = 0x14
)

// DefaultExpanderAddress is the MCP23017 address with A0-A2 tied low.
const DefaultExpanderAddress = 0x20

// ExpanderBank exposes the two ports of an MCP23017 as a RegisterBank.
// IODIR uses 1 for input; it is inverted here so RegDir keeps 1 = output.
type ExpanderBank struct {
	bus  drivers.I2C
	addr uint16
	w    [2]byte
	r    [1]byte
}

// NewExpanderBank creates a bank on bus at addr.
func NewExpanderBank(bus drivers.I2C, addr uint16) *ExpanderBank {
	if addr == 0 {
		addr = DefaultExpanderAddress
	}
	return &ExpanderBank{bus: bus, addr: addr}
}

func (e *ExpanderBank) Ports() uint8 { return 2 }

func (e *ExpanderBank) register(port uint8, r Reg) (byte, error) {
	if port > 1 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	var base byte
	switch r {
	case RegDir:
		base = mcpIODIRA
	case RegLatch:
		base = mcpOLATA
	case RegInput:
		base = mcpGPIOA
	case RegPull:
		base = mcpGPPUA
	default:
		return 0, fmt.Errorf("unknown register %d", r)
	}
	return base + port, nil
}

func (e *ExpanderBank) ReadReg(port uint8, r Reg) (uint8, error) {
	reg, err := e.register(port, r)
	if err != nil {
		return 0, err
	}
	e.w[0] = reg
	if err := e.bus.Tx(e.addr, e.w[:1], e.r[:]); err != nil {
		return 0, fmt.Errorf("mcp23017 read %#02x: %w", reg, err)
	}
	v := e.r[0]
	if r == RegDir {
		v = ^v
	}
	return v, nil
}

func (e *ExpanderBank) WriteReg(port uint8, r Reg, v uint8) error {
	reg, err := e.register(port, r)
	if err != nil {
		return err
	}
	if r == RegDir {
		v = ^v
	}
	e.w[0], e.w[1] = reg, v
	if err := e.bus.Tx(e.addr, e.w[:], nil); err != nil {
		return fmt.Errorf("mcp23017 write %#02x: %w", reg, err)
	}
	return nil
}
