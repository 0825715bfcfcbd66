package core

const (
	MaxPins       = 32
	MaxPinNameLen = 31
)

// PinState is the runtime state of one configured pin.
type PinState struct {
	Config     PinConfig
	Configured bool
	Value      bool // last sampled or written level
	Simulated  bool // digital-twin override, register targets only
}

// PinTable is the per-driver arena of pin runtime state. It is built once
// from the pin configuration source and never grows past MaxPins.
// Lookups are a linear scan; the first entry with a matching name wins.
type PinTable struct {
	pins []PinState
}

// NewPinTable builds a table from cfgs. Entries past MaxPins are dropped
// and reported through skipped.
func NewPinTable(cfgs []PinConfig) (t *PinTable, skipped []string) {
	n := len(cfgs)
	if n > MaxPins {
		n = MaxPins
	}
	t = &PinTable{pins: make([]PinState, 0, n)}
	for _, c := range cfgs {
		if len(t.pins) == MaxPins {
			skipped = append(skipped, c.Name)
			continue
		}
		t.pins = append(t.pins, PinState{
			Config:    c,
			Simulated: DefaultSimulated(c.Pull),
		})
	}
	return t, skipped
}

// Len returns the number of pins in the table.
func (t *PinTable) Len() int { return len(t.pins) }

// At returns the pin at index i.
func (t *PinTable) At(i int) *PinState { return &t.pins[i] }

// Find returns the first pin named name.
func (t *PinTable) Find(name string) (*PinState, bool) {
	for i := range t.pins {
		if t.pins[i].Config.Name == name {
			return &t.pins[i], true
		}
	}
	return nil, false
}

// Lookup resolves name to a configured pin, mapping failures to codes.
func (t *PinTable) Lookup(op, name string) (*PinState, error) {
	if name == "" {
		return nil, Errf(NullParameter, op, name, nil)
	}
	p, ok := t.Find(name)
	if !ok || !p.Configured {
		return nil, Errf(PinNotFound, op, name, nil)
	}
	return p, nil
}

// Names returns the pin names in table order.
func (t *PinTable) Names() []string {
	out := make([]string, len(t.pins))
	for i := range t.pins {
		out[i] = t.pins[i].Config.Name
	}
	return out
}

// SetSimulated stores a digital-twin override for name.
func (t *PinTable) SetSimulated(name string, value bool) error {
	p, err := t.Lookup("set_simulated", name)
	if err != nil {
		return err
	}
	p.Simulated = value
	return nil
}

// Simulated returns the digital-twin override and pull for name.
func (t *PinTable) Simulated(name string) (bool, Pull, error) {
	p, err := t.Lookup("simulated", name)
	if err != nil {
		return false, PullNone, err
	}
	return p.Simulated, p.Config.Pull, nil
}

// TruncateName clips a pin or tool name to MaxPinNameLen bytes.
func TruncateName(s string) string {
	if len(s) > MaxPinNameLen {
		return s[:MaxPinNameLen]
	}
	return s
}

// ContainsPin reports whether names has an exact match for pin.
func ContainsPin(names []string, pin string) bool {
	for _, n := range names {
		if n == pin {
			return true
		}
	}
	return false
}
