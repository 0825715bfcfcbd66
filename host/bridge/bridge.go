// Package bridge forwards digital-twin sync lines read from a device's
// serial line to the HTTP GPIO simulator.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gpiotwin/core"
	"gpiotwin/protocol"
)

// DefaultTimeout bounds one forward request.
const DefaultTimeout = time.Second

// Kinds forwarded to the simulator
var forwardKinds = []string{core.KindGPIO, "WRITE"}

type syncLine struct {
	T string `json:"t"`
	P string `json:"p"`
	V int    `json:"v"`
}

// Bridge posts pin levels to the simulator. Each forward runs in its own
// goroutine so a slow simulator never stalls the serial reader.
type Bridge struct {
	base   string
	client *http.Client
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// New creates a bridge to the simulator at baseURL. client may be nil.
func New(baseURL string, client *http.Client, log zerolog.Logger) *Bridge {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Bridge{
		base:   strings.TrimRight(baseURL, "/"),
		client: client,
		log:    log.With().Str("component", "bridge").Logger(),
	}
}

// HandleLine handles one line from the device. It is a
// protocol.SyncHandler.
func (b *Bridge) HandleLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	if !protocol.IsSyncLine(line) {
		b.log.Debug().Bytes("line", line).Msg("device output")
		return
	}

	var msg syncLine
	if err := json.Unmarshal(line, &msg); err != nil {
		b.log.Debug().Err(err).Bytes("line", line).Msg("skipping malformed sync line")
		return
	}
	if msg.P == "" || !forwarded(msg.T) {
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.Forward(context.Background(), msg.P, msg.V); err != nil {
			b.log.Error().Err(err).Str("pin", msg.P).Msg("forward failed")
			return
		}
		b.log.Info().Str("pin", msg.P).Int("value", msg.V).Msg("forwarded")
	}()
}

func forwarded(kind string) bool {
	for _, k := range forwardKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Forward posts one pin level to the simulator.
func (b *Bridge) Forward(ctx context.Context, pin string, v int) error {
	body, err := json.Marshal(protocol.PinValue{Value: v})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+protocol.PinPath(pin), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("simulator unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("simulator returned %d", resp.StatusCode)
	}
	return nil
}

// Run reads lines from r until it fails or ctx is done, then waits for
// pending forwards. r is closed when ctx ends. Lines longer than the
// line buffer are logged and skipped.
func (b *Bridge) Run(ctx context.Context, r io.ReadCloser) error {
	stop := context.AfterFunc(ctx, func() { r.Close() })
	defer stop()
	defer b.wg.Wait()

	lines := protocol.NewLineSplitter(4 * protocol.LineMax)
	buf := make([]byte, protocol.LineMax)
	dropped := 0
	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines.Write(buf[:n], b.HandleLine)
			if lines.Dropped() != dropped {
				dropped = lines.Dropped()
				b.log.Warn().Int("dropped", dropped).Msg("skipping over-long device line")
			}
		}
		if err != nil {
			lines.Flush(b.HandleLine)
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
