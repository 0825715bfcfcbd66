// Package runtime runs the device main loop on a host: one driver bound
// in a registry, the helper emitting sync lines, the dispatcher answering
// commands, and a reader goroutine feeding the line receiver.
package runtime

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"gpiotwin/core"
	"gpiotwin/protocol"
)

// Runtime is one device instance.
type Runtime struct {
	registry *core.Registry
	helper   *core.Helper
	tools    *core.ToolRegistry
	disp     *core.Dispatcher
	rx       *protocol.Receiver
	out      *protocol.LineWriter
	interval time.Duration
	log      zerolog.Logger
}

// New wires driver to the protocol stack writing to out and initializes
// it. interval is the mailbox poll period.
func New(driver core.GPIODriver, pins []core.PinConfig, out io.Writer, interval time.Duration, log zerolog.Logger) (*Runtime, error) {
	r := &Runtime{
		registry: core.NewRegistry(driver),
		rx:       protocol.NewReceiver(protocol.NewMailbox()),
		out:      protocol.NewLineWriter(out),
		interval: interval,
		log:      log.With().Str("component", "runtime").Logger(),
	}
	if r.interval <= 0 {
		r.interval = 10 * time.Millisecond
	}

	held := core.NewHeldSync(core.LineSync{W: r.out})
	r.helper = core.NewHelper(r.registry, held)
	if err := r.helper.Init(); err != nil {
		return nil, err
	}
	r.tools = core.NewToolRegistry(core.GPIOTools(r.helper, core.PinNames(pins))...)
	r.disp = core.NewDispatcher(r.tools, r.helper, held, r.out)

	r.log.Info().Strs("tools", r.tools.Names()).Int("pins", len(pins)).Msg("device ready")
	return r, nil
}

// Helper returns the helper bound to the runtime's driver.
func (r *Runtime) Helper() *core.Helper {
	return r.helper
}

// Tools returns the tool registry.
func (r *Runtime) Tools() *core.ToolRegistry {
	return r.tools
}

// Feed hands received bytes to the line receiver. It is the producer
// side and must not be called concurrently with itself.
func (r *Runtime) Feed(p []byte) {
	r.rx.Write(p)
}

// Poll handles at most one pending line.
func (r *Runtime) Poll() bool {
	return r.disp.Poll(r.rx.Mailbox())
}

// Dropped returns the number of lines lost to overflow or overwrite.
func (r *Runtime) Dropped() uint32 {
	return r.rx.Dropped()
}

// Run reads from in on a separate goroutine and polls the mailbox every
// interval until ctx is done or in reaches EOF. A read error other than
// EOF is returned.
func (r *Runtime) Run(ctx context.Context, in io.Reader) error {
	readErr := make(chan error, 1)
	go r.readLoop(in, readErr)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var dropped uint32
	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			r.Poll()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err

		case <-ticker.C:
			r.Poll()
			if d := r.Dropped(); d != dropped {
				r.log.Warn().Uint32("dropped", d).Msg("lines dropped")
				dropped = d
			}
		}
	}
}

func (r *Runtime) readLoop(in io.Reader, errc chan<- error) {
	buf := make([]byte, protocol.LineMax)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			r.Feed(buf[:n])
		}
		if err != nil {
			errc <- err
			return
		}
	}
}
