package periph

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"gpiotwin/core"
)

var testPins = []core.PinConfig{
	{
		Name: "LED1", Direction: core.DirOutput,
		Mappings: []core.Mapping{{Kind: core.MappingPeriph, Line: "GPIO17"}},
	},
	{
		Name: "BUTTON1", Direction: core.DirInput, Pull: core.PullUp,
		Mappings: []core.Mapping{{Kind: core.MappingPeriph, Line: "GPIO27"}},
	},
	{Name: "GPIO22", Direction: core.DirInput, Pull: core.PullDown},
	{Name: "MISSING", Direction: core.DirInput},
}

func newTestDriver(t *testing.T) (*Driver, map[string]*gpiotest.Pin) {
	t.Helper()
	pins := map[string]*gpiotest.Pin{
		"GPIO17": {N: "GPIO17", Num: 17},
		"GPIO27": {N: "GPIO27", Num: 27, L: gpio.High},
		"GPIO22": {N: "GPIO22", Num: 22},
	}
	resolve := func(name string) gpio.PinIO {
		if p, ok := pins[name]; ok {
			return p
		}
		return nil
	}
	d := New(testPins, zerolog.Nop(), WithResolver(resolve), WithoutHostInit())
	if err := d.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return d, pins
}

func TestInitConfiguresPins(t *testing.T) {
	_, pins := newTestDriver(t)

	if pins["GPIO27"].P != gpio.PullUp {
		t.Errorf("BUTTON1 should be pulled up, got %s", pins["GPIO27"].P)
	}
	if pins["GPIO22"].P != gpio.PullDown {
		t.Errorf("GPIO22 should be pulled down, got %s", pins["GPIO22"].P)
	}
	if pins["GPIO17"].L != gpio.Low {
		t.Error("LED1 should start LOW")
	}
}

func TestInitHostFailure(t *testing.T) {
	d := New(testPins, zerolog.Nop())
	d.hostInit = func() error { return errors.New("no gpio chips") }
	if err := d.Init(); !core.IsCode(err, core.NotInitialized) {
		t.Errorf("Expected not_initialized, got %v", err)
	}
}

func TestWriteRead(t *testing.T) {
	d, pins := newTestDriver(t)

	if err := d.Write("LED1", true); err != nil {
		t.Fatal(err)
	}
	if pins["GPIO17"].L != gpio.High {
		t.Error("Expected GPIO17 high")
	}
	if v, _ := d.Read("LED1"); !v {
		t.Error("Expected LED1 to read back high")
	}

	if v, _ := d.Read("BUTTON1"); !v {
		t.Error("Expected released button high")
	}
	pins["GPIO27"].L = gpio.Low
	if v, _ := d.Read("BUTTON1"); v {
		t.Error("Expected pressed button low")
	}

	if err := d.Write("BUTTON1", true); !core.IsCode(err, core.InvalidState) {
		t.Errorf("Expected invalid_state, got %v", err)
	}
	if _, err := d.Read("MISSING"); !core.IsCode(err, core.PinNotFound) {
		t.Errorf("Pins without a host gpio stay unconfigured, got %v", err)
	}
}

func TestTwinOverride(t *testing.T) {
	d, _ := newTestDriver(t)

	if s, pull, err := d.Simulated("BUTTON1"); err != nil || !s || pull != core.PullUp {
		t.Errorf("Unexpected twin state %v %v %v", s, pull, err)
	}
	if err := d.SetSimulated("BUTTON1", false); err != nil {
		t.Fatal(err)
	}
	if s, _, _ := d.Simulated("BUTTON1"); s {
		t.Error("Expected override to be stored")
	}
}
