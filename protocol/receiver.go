package protocol

import "sync/atomic"

// Receiver assembles terminator-delimited lines from a byte stream into a
// Mailbox. Feed is safe to call from interrupt context: it only copies
// bytes and performs one atomic swap per completed line.
type Receiver struct {
	mb       *Mailbox
	acc      [LinePayloadMax]byte
	n        int
	overflow atomic.Uint32
}

// NewReceiver creates a receiver posting into mb.
func NewReceiver(mb *Mailbox) *Receiver {
	return &Receiver{mb: mb}
}

// Mailbox returns the receiver's mailbox.
func (r *Receiver) Mailbox() *Mailbox {
	return r.mb
}

// Feed consumes one byte.
func (r *Receiver) Feed(b byte) {
	if IsTerminator(b) {
		if r.n > 0 {
			r.mb.Post(r.acc[:r.n])
			r.n = 0
		}
		return
	}
	if r.n == len(r.acc) {
		// Line too long: drop what we have.
		r.n = 0
		r.overflow.Add(1)
		return
	}
	r.acc[r.n] = b
	r.n++
}

// Write feeds every byte of p. It always consumes all of p.
func (r *Receiver) Write(p []byte) (int, error) {
	for _, b := range p {
		r.Feed(b)
	}
	return len(p), nil
}

// Dropped returns the number of lines lost to overflow or overwrite.
func (r *Receiver) Dropped() uint32 {
	return r.overflow.Load() + r.mb.Overwritten()
}
