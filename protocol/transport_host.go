package protocol

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	ErrTimeout = errors.New("response timeout")
	ErrStopped = errors.New("transport stopped")
)

// SyncHandler is called from the read loop for every JSON line
type SyncHandler func(line []byte)

// HostTransport handles the line protocol from the host side: it writes
// command lines and splits the device output into responses and sync
// lines. Sync lines go to the handler and never count as responses.
type HostTransport struct {
	port io.ReadWriteCloser

	lines *LineSplitter

	// Channel for response lines
	responseChan chan string

	syncHandler SyncHandler

	writeMutex sync.Mutex
	cmdMutex   sync.Mutex

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
}

// NewHostTransport creates a new host-side transport and starts its
// background reader. onSync may be nil.
func NewHostTransport(port io.ReadWriteCloser, onSync SyncHandler) *HostTransport {
	t := &HostTransport{
		port:         port,
		lines:        NewLineSplitter(4 * LineMax),
		responseChan: make(chan string, 16),
		syncHandler:  onSync,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}

	go t.readLoop()

	return t
}

// SendLine writes one command line.
func (t *HostTransport) SendLine(line string) error {
	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()

	msg := make([]byte, 0, len(line)+1)
	msg = append(msg, line...)
	msg = append(msg, LF)
	n, err := t.port.Write(msg)
	if err != nil {
		return err
	}
	if n != len(msg) {
		return fmt.Errorf("incomplete write: %d/%d bytes", n, len(msg))
	}
	return nil
}

// Command sends line and returns the first response line after it.
// Responses left over from earlier commands are discarded first.
func (t *HostTransport) Command(line string, timeout time.Duration) (string, error) {
	t.cmdMutex.Lock()
	defer t.cmdMutex.Unlock()

	t.drainResponses()
	if err := t.SendLine(line); err != nil {
		return "", fmt.Errorf("failed to write command: %w", err)
	}
	return t.ReceiveResponse(timeout)
}

// ReceiveResponse receives a response line with timeout
func (t *HostTransport) ReceiveResponse(timeout time.Duration) (string, error) {
	select {
	case resp := <-t.responseChan:
		return resp, nil

	case <-time.After(timeout):
		return "", fmt.Errorf("%w after %v", ErrTimeout, timeout)

	case <-t.stopChan:
		return "", ErrStopped
	}
}

func (t *HostTransport) drainResponses() {
	for {
		select {
		case <-t.responseChan:
		default:
			return
		}
	}
}

// readLoop continuously reads from the port and splits lines
func (t *HostTransport) readLoop() {
	defer close(t.doneChan)

	buffer := make([]byte, LineMax)

	for {
		select {
		case <-t.stopChan:
			return
		default:
		}

		n, err := t.port.Read(buffer)
		if err != nil {
			if err == io.EOF {
				return
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if n > 0 {
			t.processLines(buffer[:n])
		}
	}
}

func (t *HostTransport) processLines(data []byte) {
	t.lines.Write(data, t.dispatchLine)
}

// dispatchLine routes a line to the sync handler or the response channel
func (t *HostTransport) dispatchLine(line []byte) {
	if IsSyncLine(line) {
		if t.syncHandler != nil {
			t.syncHandler(line)
		}
		return
	}

	resp := string(line)
	select {
	case t.responseChan <- resp:
	default:
		// Response channel full, drop oldest
		select {
		case <-t.responseChan:
		default:
		}
		t.responseChan <- resp
	}
}

// Done is closed when the read loop exits.
func (t *HostTransport) Done() <-chan struct{} {
	return t.doneChan
}

// Close stops the transport and closes the port
func (t *HostTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.stopChan)
		if t.port != nil {
			err = t.port.Close()
		}
		<-t.doneChan
	})
	return err
}
