package protocol

// LineBuffer is a fixed-size scratch buffer of one outgoing line. Writes
// past its capacity are dropped. It never allocates; the zero value is
// ready to use.
type LineBuffer struct {
	buf [LineMax]byte
	pos int
}

// Output appends data, dropping what does not fit
func (s *LineBuffer) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
}

// OutputString appends str, dropping what does not fit
func (s *LineBuffer) OutputString(str string) {
	n := copy(s.buf[s.pos:], str)
	s.pos += n
}

// OutputByte appends one byte if there is room.
func (s *LineBuffer) OutputByte(b byte) {
	if s.pos < len(s.buf) {
		s.buf[s.pos] = b
		s.pos++
	}
}

// CurPosition returns the current write position
func (s *LineBuffer) CurPosition() int {
	return s.pos
}

// Terminate ends the line with LF, overwriting the last byte when the
// buffer is full so the line is always delimited.
func (s *LineBuffer) Terminate() {
	if s.pos == len(s.buf) {
		s.pos--
	}
	s.buf[s.pos] = LF
	s.pos++
}

// Result returns the accumulated output data
func (s *LineBuffer) Result() []byte {
	return s.buf[:s.pos]
}

// Reset clears the buffer
func (s *LineBuffer) Reset() {
	s.pos = 0
}

// FifoBuffer is a circular buffer for serial I/O
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data to the FIFO buffer
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			// Buffer full
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// IndexTerminator returns the offset of the first LF or CR, or -1.
func (f *FifoBuffer) IndexTerminator() int {
	for i, p := 0, f.read; p != f.write; i, p = i+1, (p+1)%f.size {
		if IsTerminator(f.buf[p]) {
			return i
		}
	}
	return -1
}

// NextLine pops bytes up to and including the first terminator and
// returns the line without it. Empty lines are skipped.
func (f *FifoBuffer) NextLine() ([]byte, bool) {
	for {
		i := f.IndexTerminator()
		if i < 0 {
			return nil, false
		}
		line := make([]byte, i)
		for j := range line {
			line[j] = f.buf[(f.read+j)%f.size]
		}
		f.Pop(i + 1)
		if len(line) > 0 {
			return line, true
		}
	}
}

// Pop removes n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	for i := 0; i < n && f.read != f.write; i++ {
		f.read = (f.read + 1) % f.size
	}
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
