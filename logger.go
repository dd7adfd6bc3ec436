package fetch

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger abstracts the logging this package does at Debug/Warn/Error
// level while dispatching and consuming bodies, so callers can plug
// in their own implementation.
type Logger interface {
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// zlogger backs the default Logger with zerolog's structured,
// levelled, timestamped output.
type zlogger struct {
	l zerolog.Logger
}

func newZerologLogger() *zlogger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).With().Timestamp().Logger()
	return &zlogger{l: l}
}

func (z *zlogger) Errorf(format string, v ...interface{}) { z.l.Error().Msgf(format, v...) }
func (z *zlogger) Warnf(format string, v ...interface{})  { z.l.Warn().Msgf(format, v...) }
func (z *zlogger) Debugf(format string, v ...interface{}) { z.l.Debug().Msgf(format, v...) }

type disabledLogger struct{}

func (disabledLogger) Errorf(format string, v ...interface{}) {}
func (disabledLogger) Warnf(format string, v ...interface{})  {}
func (disabledLogger) Debugf(format string, v ...interface{}) {}

var defaultLogger Logger = newZerologLogger()

// SetDefaultLogger overrides the package-wide Logger that dispatch,
// the redirect loop and body consumption log through. A nil l is
// ignored.
func SetDefaultLogger(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// DisableLogging installs a no-op default Logger.
func DisableLogging() {
	defaultLogger = disabledLogger{}
}
