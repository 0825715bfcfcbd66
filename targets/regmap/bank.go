// Package regmap drives pins through 8-bit port registers: a direction
// register, an output latch, an input register and a pull-up enable.
//
// The in-memory bank follows the AVR DDR/PORT/PIN layout; the expander
// bank talks to an MCP23017 over I2C.
package regmap

// Reg selects one register of a port.
type Reg uint8

const (
	RegDir   Reg = iota // bit set = output
	RegLatch            // output latch
	RegInput            // sampled pin levels
	RegPull             // pull-up enable for input bits
)

func (r Reg) String() string {
	switch r {
	case RegDir:
		return "dir"
	case RegLatch:
		return "latch"
	case RegInput:
		return "input"
	case RegPull:
		return "pull"
	default:
		return "reg?"
	}
}

// RegisterBank is a set of 8-bit GPIO ports.
type RegisterBank interface {
	Ports() uint8
	ReadReg(port uint8, r Reg) (uint8, error)
	WriteReg(port uint8, r Reg, v uint8) error
}

func updateBit(b RegisterBank, port uint8, r Reg, bit uint8, set bool) error {
	v, err := b.ReadReg(port, r)
	if err != nil {
		return err
	}
	if set {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	return b.WriteReg(port, r, v)
}

func readBit(b RegisterBank, port uint8, r Reg, bit uint8) (bool, error) {
	v, err := b.ReadReg(port, r)
	if err != nil {
		return false, err
	}
	return v&(1<<bit) != 0, nil
}
