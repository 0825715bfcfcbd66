package regmap

import "testing"

func TestMemoryBankPinRegister(t *testing.T) {
	b := NewMemoryBank(3)

	// PB5 output high, PD2 input with pull-up, PD3 input floating.
	b.WriteReg(1, RegDir, 1<<5)
	b.WriteReg(1, RegLatch, 1<<5)
	b.WriteReg(2, RegPull, 1<<2)

	if v, _ := b.ReadReg(1, RegInput); v != 1<<5 {
		t.Errorf("Output bit should read back the latch, PINB=%08b", v)
	}
	if v, _ := b.ReadReg(2, RegInput); v != 1<<2 {
		t.Errorf("Pulled-up input should float high, PIND=%08b", v)
	}

	b.Drive(2, 2, false)
	b.Drive(2, 3, true)
	if v, _ := b.ReadReg(2, RegInput); v != 1<<3 {
		t.Errorf("Driven inputs should follow the outside, PIND=%08b", v)
	}

	b.Release(2, 2)
	if v, _ := b.ReadReg(2, RegInput); v != 1<<2|1<<3 {
		t.Errorf("Released input should float high again, PIND=%08b", v)
	}
}

func TestMemoryBankPinWriteToggles(t *testing.T) {
	b := NewMemoryBank(1)
	b.WriteReg(0, RegLatch, 0x0F)
	b.WriteReg(0, RegInput, 0x11)
	if v, _ := b.ReadReg(0, RegLatch); v != 0x1E {
		t.Errorf("Expected latch 0x1E after PIN write, got %#02x", v)
	}
}

func TestMemoryBankRange(t *testing.T) {
	b := NewMemoryBank(2)
	if b.Ports() != 2 {
		t.Errorf("Expected 2 ports, got %d", b.Ports())
	}
	if _, err := b.ReadReg(2, RegDir); err == nil {
		t.Error("Expected out of range error")
	}
	if err := b.WriteReg(5, RegLatch, 1); err == nil {
		t.Error("Expected out of range error")
	}
}
