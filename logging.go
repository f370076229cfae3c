// logging.go - structured logging facet for chanflow.
//
// Mirrors eventloop/logging.go's design: a package-level pluggable Logger,
// defaulting to a no-op, so the channel runtime never forces a logging
// framework on its caller but still emits structured events when one is
// configured: a Debug event when a channel's last sender or last receiver
// closes, and a Warn event when an onDrop callback panics. Select and the
// remote connection types do not log.
// The chanlog subpackage adapts github.com/joeycumines/logiface loggers to
// this interface.

package chanflow

import (
	"sync"
)

// Logger is the structured-logging facet consumed by the channel runtime.
// Fields are passed as alternating key/value pairs, matching the calling
// convention of logiface-style structured loggers.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

var globalLogger struct {
	sync.RWMutex
	logger Logger
}

// SetLogger sets the package-level logger that channel constructors pick
// up when no [WithLogger] option is given. A channel captures the logger
// when it is constructed, so channels that already exist keep the logger
// they started with. Passing nil restores the no-op default.
func SetLogger(l Logger) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = l
}

func getGlobalLogger() Logger {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	if globalLogger.logger != nil {
		return globalLogger.logger
	}
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
