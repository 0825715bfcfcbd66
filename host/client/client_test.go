package client

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gpiotwin/config"
	"gpiotwin/core"
	"gpiotwin/host/runtime"
)

// newDevice runs a regmap-backed device on one end of a pipe and returns
// a client on the other.
func newDevice(t *testing.T, onSync func([]byte)) *Client {
	t.Helper()
	pins, err := config.DefaultPins()
	if err != nil {
		t.Fatal(err)
	}
	host, dev := net.Pipe()

	drv, _, err := runtime.NewDriver(config.DefaultConfig(), pins, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	rt, err := runtime.New(drv, pins, dev, time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		rt.Run(ctx, dev)
	}()

	c := New(host, core.PinNames(pins), zerolog.Nop(), onSync, WithTimeout(time.Second))
	t.Cleanup(func() {
		cancel()
		c.Close()
		dev.Close()
		<-done
	})
	return c
}

func TestWriteAndRead(t *testing.T) {
	syncs := make(chan string, 8)
	c := newDevice(t, func(line []byte) { syncs <- string(line) })

	if err := c.WritePin("LED1", true); err != nil {
		t.Fatalf("WritePin failed: %v", err)
	}
	select {
	case s := <-syncs:
		if s != `{"t":"GPIO","p":"LED1","v":1}` {
			t.Errorf("Unexpected sync line %q", s)
		}
	case <-time.After(time.Second):
		t.Error("No sync line after write")
	}

	v, err := c.ReadPin("BUTTON1")
	if err != nil {
		t.Fatalf("ReadPin failed: %v", err)
	}
	if !v {
		t.Error("Expected released pull-up button to read high")
	}
}

func TestDeviceErrors(t *testing.T) {
	c := newDevice(t, nil)

	if err := c.WritePin("BUTTON1", true); err == nil || !strings.Contains(err.Error(), "ERR invalid_state") {
		t.Errorf("Expected invalid_state from device, got %v", err)
	}
	resp, err := c.Command("gpio_blink LED1")
	if err != nil {
		t.Fatal(err)
	}
	if resp != "ERR unknown tool gpio_blink" {
		t.Errorf("Unexpected response %q", resp)
	}
}

func TestPinValidatedLocally(t *testing.T) {
	c := newDevice(t, nil)

	if err := c.WritePin("LED9", true); !core.IsCode(err, core.PinNotFound) {
		t.Errorf("Expected pin_not_found, got %v", err)
	}
	if _, err := c.ReadPin("led1"); !core.IsCode(err, core.PinNotFound) {
		t.Errorf("Expected pin_not_found, got %v", err)
	}
}

func TestREPL(t *testing.T) {
	c := newDevice(t, nil)

	in := strings.NewReader("gpio_list\n\ngpio_read NOPE\nquit\ngpio_list\n")
	var out bytes.Buffer
	if err := c.REPL(in, &out); err != nil {
		t.Fatalf("REPL failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Response: PINS LED1 BUTTON1", "Error: ERR unknown pin NOPE"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output:\n%s", want, got)
		}
	}
	if strings.Count(got, "PINS") != 1 {
		t.Errorf("Expected REPL to stop at quit:\n%s", got)
	}
}

func TestParseRead(t *testing.T) {
	tests := []struct {
		resp string
		want bool
		ok   bool
	}{
		{"GPIO_READ LED1 1", true, true},
		{"GPIO_READ LED1 0", false, true},
		{"GPIO_READ BUTTON1 1", false, false},
		{"OK", false, false},
		{"GPIO_READ LED1 x", false, false},
	}
	for _, tt := range tests {
		got, err := parseRead("LED1", tt.resp)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseRead(%q) = %v, %v", tt.resp, got, err)
		}
	}
}
