package core

import "github.com/rs/zerolog"

// logger is the package logger (can be set by platform code).
// Silent by default so firmware builds pay nothing for it.
var logger = zerolog.Nop()

// SetLogger sets the logger used by core.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("layer", "core").Logger()
}

// Logger returns the logger used by core.
func Logger() *zerolog.Logger {
	return &logger
}
