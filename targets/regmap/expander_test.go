package regmap

import (
	"errors"
	"sync"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeMCP23017)(nil)

// fakeMCP23017 is a register file with the MCP23017 BANK=0 layout.
// GPIO reads return OLAT for output bits; input bits follow ext where
// driven and their pull-up otherwise.
type fakeMCP23017 struct {
	mu     sync.Mutex
	addr   uint16
	regs   [0x16]byte
	ext    [2]byte
	driven [2]byte
	fail   error
	txs    int
}

func newFakeMCP23017() *fakeMCP23017 {
	f := &fakeMCP23017{addr: DefaultExpanderAddress}
	// Power-on: all pins inputs.
	f.regs[mcpIODIRA] = 0xFF
	f.regs[mcpIODIRA+1] = 0xFF
	return f
}

func (f *fakeMCP23017) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.txs++
	if f.fail != nil {
		return f.fail
	}
	if addr != f.addr {
		return errors.New("nack")
	}
	if len(w) == 0 {
		return errors.New("no register")
	}
	reg := w[0]
	if int(reg) >= len(f.regs) {
		return errors.New("bad register")
	}
	if len(w) == 2 {
		f.regs[reg] = w[1]
	}
	if len(r) == 1 {
		if reg == mcpGPIOA || reg == mcpGPIOA+1 {
			port := reg - mcpGPIOA
			dir := f.regs[mcpIODIRA+port]
			pulled := f.regs[mcpGPPUA+port]
			in := (f.ext[port] & f.driven[port]) | (pulled &^ f.driven[port])
			r[0] = (f.regs[mcpOLATA+port] &^ dir) | (in & dir)
			return nil
		}
		r[0] = f.regs[reg]
	}
	return nil
}

func TestExpanderBankRegisters(t *testing.T) {
	bus := newFakeMCP23017()
	b := NewExpanderBank(bus, 0)

	if b.Ports() != 2 {
		t.Fatalf("Expected 2 ports, got %d", b.Ports())
	}

	// RegDir is inverted relative to IODIR.
	if v, err := b.ReadReg(0, RegDir); err != nil || v != 0 {
		t.Errorf("Power-on pins should be inputs, dir=%08b err=%v", v, err)
	}
	if err := b.WriteReg(1, RegDir, 0x01); err != nil {
		t.Fatal(err)
	}
	if bus.regs[mcpIODIRA+1] != 0xFE {
		t.Errorf("Expected IODIRB 0xFE, got %#02x", bus.regs[mcpIODIRA+1])
	}

	b.WriteReg(0, RegPull, 0x80)
	if bus.regs[mcpGPPUA] != 0x80 {
		t.Errorf("Expected GPPUA 0x80, got %#02x", bus.regs[mcpGPPUA])
	}
	b.WriteReg(1, RegLatch, 0x01)
	if bus.regs[mcpOLATA+1] != 0x01 {
		t.Errorf("Expected OLATB 0x01, got %#02x", bus.regs[mcpOLATA+1])
	}

	bus.ext[0], bus.driven[0] = 0x80, 0x80
	if v, _ := b.ReadReg(0, RegInput); v != 0x80 {
		t.Errorf("Expected GPIOA 0x80, got %#02x", v)
	}

	if _, err := b.ReadReg(2, RegInput); err == nil {
		t.Error("Expected error for port C")
	}
}

func TestExpanderBankBusError(t *testing.T) {
	bus := newFakeMCP23017()
	bus.fail = errors.New("arbitration lost")
	b := NewExpanderBank(bus, DefaultExpanderAddress)

	if _, err := b.ReadReg(0, RegInput); !errors.Is(err, bus.fail) {
		t.Errorf("Expected wrapped bus error, got %v", err)
	}
	if err := b.WriteReg(0, RegLatch, 1); !errors.Is(err, bus.fail) {
		t.Errorf("Expected wrapped bus error, got %v", err)
	}
}
