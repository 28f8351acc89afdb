package touchpad

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the package-wide structured logger. Callers may replace it
// (e.g. to redirect to a file or adjust level) before constructing a Device.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// logKernelBug logs spec.md §7's "kernel bug" class: a reported event that
// violates device invariants. The triggering event is dropped, state is
// unchanged.
func logKernelBug(format string, args ...interface{}) {
	Logger.Warn().Str("component", "touchpad").Msgf("bug-kernel: "+format, args...)
}

// logLibinputBug logs spec.md §7's "library bug" class: an internal FSM
// received an event that is impossible for its current state.
func logLibinputBug(format string, args ...interface{}) {
	Logger.Error().Str("component", "touchpad").Msgf("bug-libinput: "+format, args...)
}

func logDebug(format string, args ...interface{}) {
	Logger.Debug().Str("component", "touchpad").Msgf(format, args...)
}
