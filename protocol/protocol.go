// Package protocol implements the newline-delimited line protocol spoken
// between a GPIO twin device and its host: command lines in, one response
// line per command out, and JSON sync lines for the digital-twin observer.
package protocol

// Line protocol limits
const (
	LineMax        = 128         // line buffer capacity, terminator included
	LinePayloadMax = LineMax - 1 // longest line the receiver delivers
	ToolNameMax    = 31
	ParamsMax      = 95
	PinNameMax     = 31
)

// Line terminators and the first byte of a digital-twin line
const (
	LF        = '\n'
	CR        = '\r'
	JSONStart = '{'
)

// IsTerminator reports whether b ends a line.
func IsTerminator(b byte) bool {
	return b == LF || b == CR
}

// IsSyncLine reports whether line belongs to the JSON dialect.
func IsSyncLine(line []byte) bool {
	return len(line) > 0 && line[0] == JSONStart
}
