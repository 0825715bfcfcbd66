package core

import "gpiotwin/protocol"

// KindGPIO is the sync message kind for pin level changes.
const KindGPIO = "GPIO"

// SyncMessage is one digital-twin synchronisation event.
// On the wire: {"t":"<Kind>","p":"<Pin>","v":<Value>}
type SyncMessage struct {
	Kind  string
	Pin   string
	Value int
}

// SyncSink receives sync messages. No acknowledgement is expected.
type SyncSink interface {
	Emit(msg SyncMessage)
}

// SyncFunc adapts a function to SyncSink.
type SyncFunc func(msg SyncMessage)

func (f SyncFunc) Emit(msg SyncMessage) { f(msg) }

// DiscardSync drops every message.
var DiscardSync SyncSink = SyncFunc(func(SyncMessage) {})

// MaxHeldSync is the number of messages HeldSync queues while held.
const MaxHeldSync = 4

// HeldSync forwards messages to next, except between Hold and Release
// when they are queued so that a command response can go out first.
// It is main-context only.
type HeldSync struct {
	next  SyncSink
	held  bool
	queue [MaxHeldSync]SyncMessage
	n     int
}

// NewHeldSync wraps next.
func NewHeldSync(next SyncSink) *HeldSync {
	if next == nil {
		next = DiscardSync
	}
	return &HeldSync{next: next}
}

func (h *HeldSync) Emit(msg SyncMessage) {
	if !h.held || h.n == len(h.queue) {
		h.next.Emit(msg)
		return
	}
	h.queue[h.n] = msg
	h.n++
}

// Hold starts queueing.
func (h *HeldSync) Hold() {
	h.held = true
}

// Release stops queueing and flushes queued messages in order.
func (h *HeldSync) Release() {
	h.held = false
	for i := 0; i < h.n; i++ {
		h.next.Emit(h.queue[i])
		h.queue[i] = SyncMessage{}
	}
	h.n = 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LineSync writes sync messages to a protocol line writer.
type LineSync struct {
	W *protocol.LineWriter
}

func (s LineSync) Emit(msg SyncMessage) {
	if err := s.W.WriteSync(msg.Kind, msg.Pin, msg.Value); err != nil {
		logger.Error().Err(err).Str("pin", msg.Pin).Msg("write sync")
	}
}
