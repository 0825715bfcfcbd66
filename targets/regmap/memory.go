package regmap

import (
	"fmt"
	"sync"
)

// MemoryBank emulates AVR-style ports in memory. As on AVR, the pull-up
// of an input bit is its PORT latch bit. Input bits that nothing drives
// read high when pulled up and low otherwise; Drive and Release let a
// test or a host harness act as the outside world.
type MemoryBank struct {
	mu     sync.Mutex
	ddr    []uint8
	port   []uint8
	ext    []uint8 // externally driven levels
	driven []uint8 // mask of externally driven bits
}

// NewMemoryBank creates a bank of n ports, all inputs without pull-up.
func NewMemoryBank(n uint8) *MemoryBank {
	return &MemoryBank{
		ddr:    make([]uint8, n),
		port:   make([]uint8, n),
		ext:    make([]uint8, n),
		driven: make([]uint8, n),
	}
}

func (m *MemoryBank) Ports() uint8 { return uint8(len(m.ddr)) }

func (m *MemoryBank) check(port uint8) error {
	if int(port) >= len(m.ddr) {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}

func (m *MemoryBank) ReadReg(port uint8, r Reg) (uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(port); err != nil {
		return 0, err
	}
	switch r {
	case RegDir:
		return m.ddr[port], nil
	case RegLatch, RegPull:
		return m.port[port], nil
	case RegInput:
		return m.pin(port), nil
	}
	return 0, fmt.Errorf("unknown register %d", r)
}

// pin computes the PIN register: outputs follow the latch, driven inputs
// follow the outside world, floating inputs follow their pull-up.
func (m *MemoryBank) pin(port uint8) uint8 {
	out := m.ddr[port]
	in := ^out
	return (m.port[port] & out) |
		(m.ext[port] & m.driven[port] & in) |
		(m.port[port] & ^m.driven[port] & in)
}

func (m *MemoryBank) WriteReg(port uint8, r Reg, v uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(port); err != nil {
		return err
	}
	switch r {
	case RegDir:
		m.ddr[port] = v
	case RegLatch, RegPull:
		m.port[port] = v
	case RegInput:
		// Writing PIN toggles the latch on AVR.
		m.port[port] ^= v
	default:
		return fmt.Errorf("unknown register %d", r)
	}
	return nil
}

// Drive forces an input bit to level from outside.
func (m *MemoryBank) Drive(port, bit uint8, level bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.driven[port] |= 1 << bit
	if level {
		m.ext[port] |= 1 << bit
	} else {
		m.ext[port] &^= 1 << bit
	}
}

// Release stops driving an input bit.
func (m *MemoryBank) Release(port, bit uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.driven[port] &^= 1 << bit
}
