package protocol

import "bytes"

// LineSplitter cuts a byte stream into LF/CR terminated lines. A line that
// does not fit its buffer is dropped up to its terminator and splitting
// carries on with the next one. Empty lines are skipped.
type LineSplitter struct {
	fifo    *FifoBuffer
	discard bool
	dropped int
}

// NewLineSplitter creates a splitter holding at most capacity-1 bytes of
// an unterminated line.
func NewLineSplitter(capacity int) *LineSplitter {
	return &LineSplitter{fifo: NewFifoBuffer(capacity)}
}

// Write consumes data and calls fn for every completed line. The line is
// only valid during the call.
func (s *LineSplitter) Write(data []byte, fn func(line []byte)) {
	for len(data) > 0 {
		if s.discard {
			i := bytes.IndexAny(data, "\r\n")
			if i < 0 {
				return
			}
			data = data[i+1:]
			s.discard = false
			continue
		}

		w := s.fifo.Write(data)
		data = data[w:]
		for {
			line, ok := s.fifo.NextLine()
			if !ok {
				break
			}
			fn(line)
		}
		if w == 0 && s.fifo.Free() == 0 {
			// No terminator in a full buffer: drop the runaway line.
			s.fifo.Reset()
			s.discard = true
			s.dropped++
		}
	}
}

// Flush hands a pending unterminated line to fn, as at end of stream.
func (s *LineSplitter) Flush(fn func(line []byte)) {
	if s.discard {
		s.discard = false
		return
	}
	s.Write([]byte{LF}, fn)
}

// Dropped returns the number of lines dropped for being too long.
func (s *LineSplitter) Dropped() int {
	return s.dropped
}
