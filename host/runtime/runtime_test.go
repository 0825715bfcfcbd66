package runtime

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"gpiotwin/config"
	"gpiotwin/core"
)

func newRuntime(t *testing.T, cfg *config.Config) (*Runtime, *bytes.Buffer) {
	t.Helper()
	pins, err := config.DefaultPins()
	if err != nil {
		t.Fatalf("DefaultPins failed: %v", err)
	}
	drv, closer, err := NewDriver(cfg, pins, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}
	if closer != nil {
		t.Cleanup(func() { closer.Close() })
	}
	out := &bytes.Buffer{}
	r, err := New(drv, pins, out, time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r, out
}

func lines(b *bytes.Buffer) []string {
	return strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
}

func TestRunUntilEOF(t *testing.T) {
	r, out := newRuntime(t, config.DefaultConfig())

	err := r.Run(context.Background(), strings.NewReader("gpio_write LED1 1\n"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := []string{"OK", `{"t":"GPIO","p":"LED1","v":1}`}
	if diff := cmp.Diff(want, lines(out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r, _ := newRuntime(t, config.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := &blockingReader{release: make(chan struct{})}
	defer close(blocked.release)

	if err := r.Run(ctx, blocked); err != nil {
		t.Errorf("Expected nil error on cancel, got %v", err)
	}
}

type blockingReader struct {
	release chan struct{}
}

func (b *blockingReader) Read(p []byte) (int, error) {
	<-b.release
	return 0, io.EOF
}

func TestOverrideThenRead(t *testing.T) {
	r, out := newRuntime(t, config.DefaultConfig())

	r.Feed([]byte("gpio_read BUTTON1\n"))
	r.Poll()
	r.Feed([]byte(`{"p":"BUTTON1","v":0}` + "\r\n"))
	r.Poll()
	r.Feed([]byte("gpio_read BUTTON1\n"))
	r.Poll()

	// A synthetic press alone is not physically active: no sync line.
	want := []string{"GPIO_READ BUTTON1 1", "GPIO_READ BUTTON1 0"}
	if diff := cmp.Diff(want, lines(out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestLastLineWins(t *testing.T) {
	r, out := newRuntime(t, config.DefaultConfig())

	r.Feed([]byte("gpio_write LED1 1\ngpio_list\n"))
	if !r.Poll() {
		t.Fatal("Expected a pending line")
	}
	if r.Poll() {
		t.Error("Expected a single retained line")
	}
	if diff := cmp.Diff([]string{"PINS LED1 BUTTON1"}, lines(out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if r.Dropped() != 1 {
		t.Errorf("Expected 1 dropped line, got %d", r.Dropped())
	}
}

func TestFileBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendFile
	cfg.File.Dir = t.TempDir()
	r, out := newRuntime(t, cfg)

	r.Feed([]byte("gpio_write LED1 1\n"))
	r.Poll()
	r.Feed([]byte("gpio_read LED1\n"))
	r.Poll()

	want := []string{"OK", `{"t":"GPIO","p":"LED1","v":1}`, "GPIO_READ LED1 1"}
	if diff := cmp.Diff(want, lines(out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDriverUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = "smoke-signals"
	if _, _, err := NewDriver(cfg, nil, zerolog.Nop()); !core.IsCode(err, core.ConfigInvalid) {
		t.Errorf("Expected config_invalid, got %v", err)
	}
}

func TestBankPorts(t *testing.T) {
	pins := []core.PinConfig{{
		Name:     "FAR",
		Mappings: []core.Mapping{{Kind: core.MappingRegmap, Port: 5, Bit: 1}},
	}}
	if got := bankPorts(pins); got != 6 {
		t.Errorf("Expected 6 ports, got %d", got)
	}
	if got := bankPorts(nil); got != memoryPorts {
		t.Errorf("Expected %d ports, got %d", memoryPorts, got)
	}
}
