package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

func TestLineWriterTruncates(t *testing.T) {
	var out bytes.Buffer
	w := NewLineWriter(&out)

	w.WriteLine(strings.Repeat("x", 300))
	if out.Len() != LineMax {
		t.Errorf("Expected %d bytes, got %d", LineMax, out.Len())
	}
	if !bytes.HasSuffix(out.Bytes(), []byte{LF}) {
		t.Error("Truncated line must still end with LF")
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestLineWriterErrors(t *testing.T) {
	if err := NewLineWriter(shortWriter{}).WriteLine("OK"); !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("Expected ErrShortWrite, got %v", err)
	}
	if err := NewLineWriter(failWriter{}).WriteLine("OK"); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Expected ErrClosedPipe, got %v", err)
	}
}

// lockedBuffer records each Write call as one chunk.
type lockedBuffer struct {
	mu     sync.Mutex
	chunks []string
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = append(b.chunks, string(p))
	return len(p), nil
}

func TestLineWriterConcurrent(t *testing.T) {
	buf := &lockedBuffer{}
	w := NewLineWriter(buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				w.WriteSync("GPIO", "LED1", j%2)
			}
		}()
	}
	wg.Wait()

	if len(buf.chunks) != 400 {
		t.Fatalf("Expected 400 writes, got %d", len(buf.chunks))
	}
	for _, c := range buf.chunks {
		if !strings.HasPrefix(c, `{"t":"GPIO"`) || !strings.HasSuffix(c, "}\n") {
			t.Fatalf("Interleaved or malformed line %q", c)
		}
	}
}
