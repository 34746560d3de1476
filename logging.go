package rmi

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the package-level structured logger. Training itself is
// silent on the happy path; Logger only carries diagnostics
// (NumericDegenerate fallbacks, per-configuration optimizer failures)
// per spec.md §7's "record a diagnostic but
// continue" policy. Callers may reassign it (e.g. to zerolog.Nop())
// to silence the library entirely.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().
	Timestamp().
	Str("component", "rmi").
	Logger()
