package core

import "errors"

// fakeDriver is an in-memory register-access driver. Physical levels are
// set directly by tests; writes and reads are recorded.
type fakeDriver struct {
	table    *PinTable
	physical map[string]bool
	twin     bool
	failRead error
	failWr   error
	writes   []string
	inits    int
}

func newFakeDriver(twin bool, cfgs ...PinConfig) *fakeDriver {
	t, _ := NewPinTable(cfgs)
	for i := 0; i < t.Len(); i++ {
		t.At(i).Configured = true
	}
	return &fakeDriver{table: t, physical: map[string]bool{}, twin: twin}
}

func (f *fakeDriver) Init() error {
	f.inits++
	return nil
}

func (f *fakeDriver) Configure(cfg PinConfig) error {
	p, ok := f.table.Find(cfg.Name)
	if !ok {
		return Errf(PinNotFound, "configure", cfg.Name, nil)
	}
	p.Config = cfg
	p.Configured = true
	return nil
}

func (f *fakeDriver) Read(name string) (bool, error) {
	if f.failRead != nil {
		return false, f.failRead
	}
	if _, err := f.table.Lookup("read", name); err != nil {
		return false, err
	}
	return f.physical[name], nil
}

func (f *fakeDriver) Write(name string, value bool) error {
	if f.failWr != nil {
		return f.failWr
	}
	p, err := f.table.Lookup("write", name)
	if err != nil {
		return err
	}
	if p.Config.Direction != DirOutput {
		return Errf(InvalidState, "write", name, nil)
	}
	f.physical[name] = value
	f.writes = append(f.writes, name)
	return nil
}

// twinDriver adds the digital-twin capability to fakeDriver.
type twinDriver struct{ *fakeDriver }

func (t twinDriver) SetSimulated(name string, value bool) error {
	return t.table.SetSimulated(name, value)
}

func (t twinDriver) Simulated(name string) (bool, Pull, error) {
	return t.table.Simulated(name)
}

var errBus = errors.New("bus fault")

var (
	led1    = PinConfig{Name: "LED1", Direction: DirOutput, Pull: PullNone}
	button1 = PinConfig{Name: "BUTTON1", Direction: DirInput, Pull: PullUp}
	probe1  = PinConfig{Name: "PROBE1", Direction: DirInput, Pull: PullDown}
)

// syncRecorder collects emitted sync messages.
type syncRecorder struct {
	msgs []SyncMessage
}

func (r *syncRecorder) Emit(msg SyncMessage) { r.msgs = append(r.msgs, msg) }

// lineRecorder collects response lines, interleaved with sync messages
// when both are wired to it.
type lineRecorder struct {
	lines []string
}

func (r *lineRecorder) WriteLine(s string) error {
	r.lines = append(r.lines, s)
	return nil
}

func (r *lineRecorder) Emit(msg SyncMessage) {
	r.lines = append(r.lines, "sync "+msg.Pin+" "+string(rune('0'+msg.Value)))
}
