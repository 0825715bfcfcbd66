package core

import "errors"

// Code is a stable, line-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes
const (
	OK               Code = "ok"
	NullParameter    Code = "null_parameter"
	NotInitialized   Code = "not_initialized"
	DriverMissing    Code = "driver_missing"
	PinNotFound      Code = "pin_not_found"
	InvalidState     Code = "invalid_state"
	TransientIO      Code = "transient_io"
	InvalidParameter Code = "invalid_parameter"
	Unsupported      Code = "unsupported"
	ConfigInvalid    Code = "config_invalid"

	Error Code = "error" // generic fallback
)

// E wraps a Code with the operation and pin that produced it.
type E struct {
	C   Code
	Op  string
	Pin string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Pin != "" {
		s += " (" + e.Pin + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Errf builds an *E for op/pin with an optional cause.
func Errf(c Code, op, pin string, cause error) error {
	return &E{C: c, Op: op, Pin: pin, Err: cause}
}

// CodeOf extracts a Code from an error chain, defaulting to Error.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}

// IsCode reports whether err carries code c.
func IsCode(err error, c Code) bool {
	return CodeOf(err) == c
}
