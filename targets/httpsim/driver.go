// Package httpsim drives pins on the HTTP GPIO simulator.
package httpsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gpiotwin/core"
	"gpiotwin/protocol"
)

// Defaults of the simulator client
const (
	DefaultBaseURL    = "http://localhost:8080"
	DefaultAttempts   = 2
	DefaultRetryDelay = 10 * time.Millisecond
	DefaultTimeout    = 2 * time.Second
	ConfigureSpacing  = 10 * time.Millisecond
)

// Options configures a Driver.
type Options struct {
	BaseURL    string
	Attempts   int
	RetryDelay time.Duration
	Client     *http.Client
}

// Driver is a network-simulated GPIO driver. Reads return the simulator
// value unchanged. Configure and write are retried a fixed number of
// times with a fixed delay; reads are not retried.
type Driver struct {
	base       string
	attempts   int
	retryDelay time.Duration
	client     *http.Client
	cfgs       []core.PinConfig
	table      *core.PinTable
	log        zerolog.Logger
	sleep      func(time.Duration)
}

// New creates a driver for cfgs.
func New(cfgs []core.PinConfig, opts Options, log zerolog.Logger) *Driver {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Attempts < 1 {
		opts.Attempts = DefaultAttempts
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Driver{
		base:       strings.TrimRight(opts.BaseURL, "/"),
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
		client:     opts.Client,
		cfgs:       cfgs,
		log:        log.With().Str("driver", "httpsim").Logger(),
		sleep:      time.Sleep,
	}
}

// Init checks the simulator is reachable and configures every pin.
func (d *Driver) Init() error {
	err := d.retry(func() error {
		var h protocol.HealthStatus
		if err := d.do(context.Background(), http.MethodGet, protocol.HealthPath, nil, &h); err != nil {
			return err
		}
		if h.Status != "ok" {
			return fmt.Errorf("simulator status %q", h.Status)
		}
		return nil
	})
	if err != nil {
		return core.Errf(core.NotInitialized, "init", "", err)
	}

	table, skipped := core.NewPinTable(d.cfgs)
	for _, name := range skipped {
		d.log.Warn().Str("pin", name).Msg("pin table full, skipping")
	}
	d.table = table

	for i := 0; i < table.Len(); i++ {
		if i > 0 {
			d.sleep(ConfigureSpacing)
		}
		cfg := table.At(i).Config
		if err := d.Configure(cfg); err != nil {
			d.log.Warn().Err(err).Str("pin", cfg.Name).Msg("pin not configured")
		}
	}
	d.log.Info().Str("url", d.base).Int("pins", table.Len()).Msg("simulator ready")
	return nil
}

// Configure sends the direction and pull of cfg to the simulator.
func (d *Driver) Configure(cfg core.PinConfig) error {
	if d.table == nil {
		return core.Errf(core.NotInitialized, "configure", cfg.Name, nil)
	}
	if cfg.Name == "" {
		return core.Errf(core.NullParameter, "configure", "", nil)
	}
	p, ok := d.table.Find(cfg.Name)
	if !ok {
		return core.Errf(core.PinNotFound, "configure", cfg.Name, nil)
	}

	body := protocol.PinSetup{Direction: cfg.Direction.String(), Pull: cfg.Pull.String()}
	err := d.retry(func() error {
		return d.do(context.Background(), http.MethodPost, protocol.ConfigurePath(cfg.Name), body, nil)
	})
	if err != nil {
		return d.ioError("configure", cfg.Name, err)
	}
	p.Config = cfg
	p.Configured = true
	return nil
}

// Read fetches the simulated level of name.
func (d *Driver) Read(name string) (bool, error) {
	p, err := d.lookup("read", name)
	if err != nil {
		return false, err
	}
	var v protocol.PinValue
	if err := d.do(context.Background(), http.MethodGet, protocol.PinPath(name), nil, &v); err != nil {
		return false, d.ioError("read", name, err)
	}
	p.Value = v.Value != 0
	return p.Value, nil
}

// Write sets the simulated level of an output pin.
func (d *Driver) Write(name string, value bool) error {
	p, err := d.lookup("write", name)
	if err != nil {
		return err
	}
	if p.Config.Direction != core.DirOutput {
		return core.Errf(core.InvalidState, "write", name, nil)
	}
	body := protocol.PinValue{Value: 0}
	if value {
		body.Value = 1
	}
	err = d.retry(func() error {
		return d.do(context.Background(), http.MethodPost, protocol.PinPath(name), body, nil)
	})
	if err != nil {
		return d.ioError("write", name, err)
	}
	p.Value = value
	return nil
}

func (d *Driver) lookup(op, name string) (*core.PinState, error) {
	if d.table == nil {
		return nil, core.Errf(core.NotInitialized, op, name, nil)
	}
	return d.table.Lookup(op, name)
}

// statusError is a non-2xx reply.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.body)
}

func (d *Driver) ioError(op, pin string, err error) error {
	if se, ok := err.(*statusError); ok && se.code == http.StatusNotFound {
		return core.Errf(core.PinNotFound, op, pin, err)
	}
	return core.Errf(core.TransientIO, op, pin, err)
}

// retry runs fn up to d.attempts times, d.retryDelay apart. A 404 is final.
func (d *Driver) retry(fn func() error) error {
	var err error
	for i := 0; i < d.attempts; i++ {
		if i > 0 {
			d.sleep(d.retryDelay)
		}
		if err = fn(); err == nil {
			return nil
		}
		if se, ok := err.(*statusError); ok && se.code == http.StatusNotFound {
			return err
		}
		d.log.Debug().Err(err).Int("attempt", i+1).Msg("simulator request failed")
	}
	return err
}

func (d *Driver) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
