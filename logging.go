package asynccore

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var baseLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
	Level(zerolog.Disabled).
	With().Str("pkg", "asynccore").Logger()

// logPtr holds the active logger behind an atomic pointer so SetLogLevel
// can swap it while other goroutines are mid-read on the hot send/process
// paths, without a data race (log.Level(level) on the zerolog.Logger
// value returns a new value rather than mutating shared state, so the
// swap itself is the only thing that needs to be atomic).
var logPtr atomic.Pointer[zerolog.Logger]

func init() {
	logPtr.Store(&baseLogger)
}

// log returns the package-wide logger as it currently stands. Call sites
// use log().Debug()/log().Warn() rather than holding onto the result, so
// every log line sees whatever level SetLogLevel last installed.
func log() *zerolog.Logger {
	return logPtr.Load()
}

// SetLogLevel controls the verbosity of asynccore's internal diagnostics
// (channel bucket, QueuePool slot and Async.Call queue allocation, and
// warnings for a repeated SetOnce subscription or a second promise
// settle). It is safe to call concurrently with
// any other package operation.
func SetLogLevel(level zerolog.Level) {
	next := baseLogger.Level(level)
	logPtr.Store(&next)
}
