// Package client talks to a gpiotwin device over its line protocol: one
// command line out, one response line back. Sync lines the device emits
// in between are passed to an optional handler and never taken as
// responses.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gpiotwin/core"
	"gpiotwin/host/serial"
	"gpiotwin/protocol"
)

// DefaultTimeout bounds the wait for one response line.
const DefaultTimeout = 2 * time.Second

// ErrNoResponse is returned when the device stays silent.
var ErrNoResponse = errors.New("no response from device")

// Client is a connection to a device running the line protocol
type Client struct {
	transport *protocol.HostTransport
	pins      []string
	timeout   time.Duration
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the response timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client over port. pins lists the configured pin names
// that gpio_write and gpio_read accept; onSync may be nil.
func New(port io.ReadWriteCloser, pins []string, log zerolog.Logger, onSync protocol.SyncHandler, opts ...Option) *Client {
	c := &Client{
		pins:    pins,
		timeout: DefaultTimeout,
		log:     log.With().Str("component", "client").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	if onSync == nil {
		onSync = func(line []byte) {
			c.log.Debug().Bytes("line", line).Msg("sync")
		}
	}
	c.transport = protocol.NewHostTransport(port, onSync)
	return c
}

// Connect opens the serial device described by cfg.
func Connect(cfg *serial.Config, pins []string, log zerolog.Logger, opts ...Option) (*Client, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	c := New(port, pins, log, nil, opts...)

	// Give the device time to initialize (if it just powered on)
	time.Sleep(100 * time.Millisecond)
	return c, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.transport.Close()
}

// Pins returns the pin names the client accepts.
func (c *Client) Pins() []string {
	return c.pins
}

// Command sends one raw line and returns the device's response line.
func (c *Client) Command(line string) (string, error) {
	line = strings.TrimSpace(line)
	resp, err := c.transport.Command(line, c.timeout)
	if errors.Is(err, protocol.ErrTimeout) {
		return "", fmt.Errorf("%w to %q", ErrNoResponse, line)
	}
	if err != nil {
		return "", err
	}
	c.log.Debug().Str("cmd", line).Str("resp", resp).Msg("command")
	return resp, nil
}

func (c *Client) checkPin(op, pin string) error {
	if !core.ContainsPin(c.pins, pin) {
		return core.Errf(core.PinNotFound, op, pin, fmt.Errorf("allowed: %s", strings.Join(c.pins, ", ")))
	}
	return nil
}

// responseErr turns an ERR response into an error.
func responseErr(op, pin, resp string) error {
	if strings.HasPrefix(resp, "ERR") {
		return core.Errf(core.Error, op, pin, errors.New(resp))
	}
	return nil
}

// WritePin drives pin on the device.
func (c *Client) WritePin(pin string, value bool) error {
	if err := c.checkPin("gpio_write", pin); err != nil {
		return err
	}
	v := 0
	if value {
		v = 1
	}
	resp, err := c.Command(fmt.Sprintf("gpio_write %s %d", pin, v))
	if err != nil {
		return err
	}
	if err := responseErr("gpio_write", pin, resp); err != nil {
		return err
	}
	if resp != "OK" {
		return core.Errf(core.Error, "gpio_write", pin, fmt.Errorf("unexpected response %q", resp))
	}
	return nil
}

// ReadPin reads the logical level of pin from the device.
func (c *Client) ReadPin(pin string) (bool, error) {
	if err := c.checkPin("gpio_read", pin); err != nil {
		return false, err
	}
	resp, err := c.Command("gpio_read " + pin)
	if err != nil {
		return false, err
	}
	if err := responseErr("gpio_read", pin, resp); err != nil {
		return false, err
	}
	return parseRead(pin, resp)
}

// parseRead parses "GPIO_READ <pin> <0|1>".
func parseRead(pin, resp string) (bool, error) {
	f := strings.Fields(resp)
	if len(f) != 3 || f[0] != "GPIO_READ" || f[1] != pin {
		return false, core.Errf(core.Error, "gpio_read", pin, fmt.Errorf("unexpected response %q", resp))
	}
	v, err := strconv.Atoi(f[2])
	if err != nil {
		return false, core.Errf(core.Error, "gpio_read", pin, err)
	}
	return v != 0, nil
}

// REPL reads command lines from in and prints each response to out until
// EOF, "quit" or "exit".
func (c *Client) REPL(in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Allowed pins: %s\n", strings.Join(c.pins, ", "))
	fmt.Fprintln(out, "Commands: gpio_write <pin> <0/1>, gpio_read <pin>, gpio_list, quit")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		resp, err := c.Command(line)
		switch {
		case err != nil:
			fmt.Fprintf(out, "Error: %v\n", err)
		case strings.HasPrefix(resp, "ERR"):
			fmt.Fprintf(out, "Error: %s\n", resp)
		default:
			fmt.Fprintf(out, "Response: %s\n", resp)
		}
	}
}
