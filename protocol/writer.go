package protocol

import (
	"io"
	"sync"
)

// LineWriter serialises response and sync lines onto one stream so that
// lines from different producers never interleave.
type LineWriter struct {
	mu  sync.Mutex
	w   io.Writer
	buf LineBuffer
}

// NewLineWriter creates a LineWriter over w
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// WriteLine writes s followed by LF. Lines longer than LinePayloadMax
// are truncated.
func (l *LineWriter) WriteLine(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf.Reset()
	AppendLine(&l.buf, s)
	return l.flush()
}

// WriteSync writes one sync line.
func (l *LineWriter) WriteSync(kind, pin string, v int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf.Reset()
	AppendSync(&l.buf, kind, pin, v)
	return l.flush()
}

func (l *LineWriter) flush() error {
	data := l.buf.Result()
	n, err := l.w.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return io.ErrShortWrite
	}
	return nil
}
