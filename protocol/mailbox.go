package protocol

import "sync/atomic"

const (
	mailboxSlots = 3
	freshBit     = 1 << 2
	indexMask    = freshBit - 1
)

type mailboxSlot struct {
	buf [LinePayloadMax]byte
	n   int
}

// Mailbox is the single-line handoff cell between the byte producer
// (UART interrupt or host reader goroutine) and the main loop.
//
// It is a triple buffer: the producer owns one slot, the consumer owns
// another, and the third is exchanged through one atomic word holding its
// index and a fresh flag. Posting never blocks and never allocates. At most
// one unconsumed line is retained; a newer line replaces it.
//
// Exactly one producer and one consumer may use a Mailbox.
type Mailbox struct {
	slots   [mailboxSlots]mailboxSlot
	state   atomic.Uint32 // middle slot index | freshBit
	back    uint32        // producer owned
	front   uint32        // consumer owned
	dropped atomic.Uint32
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	m := &Mailbox{back: 0, front: 1}
	m.state.Store(2)
	return m
}

// Post publishes line, truncated to LinePayloadMax. It reports false when
// an unconsumed line was overwritten. Producer side only.
func (m *Mailbox) Post(line []byte) bool {
	s := &m.slots[m.back]
	s.n = copy(s.buf[:], line)

	old := m.state.Swap(m.back | freshBit)
	m.back = old & indexMask
	if old&freshBit != 0 {
		m.dropped.Add(1)
		return false
	}
	return true
}

// Take returns the most recently posted line if one is pending. The slice
// stays valid until the next call to Take. Consumer side only.
func (m *Mailbox) Take() ([]byte, bool) {
	if m.state.Load()&freshBit == 0 {
		return nil, false
	}
	old := m.state.Swap(m.front)
	m.front = old & indexMask
	s := &m.slots[m.front]
	return s.buf[:s.n], true
}

// Pending reports whether a line is waiting.
func (m *Mailbox) Pending() bool {
	return m.state.Load()&freshBit != 0
}

// Overwritten returns how many unconsumed lines were replaced.
func (m *Mailbox) Overwritten() uint32 {
	return m.dropped.Load()
}
