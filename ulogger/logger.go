// Package ulogger provides the structured logger used across the consensus
// engine. It wraps zerolog the way the teacher's util/logger.go does,
// dropping the gocore/pretty-console branch this module has no use for
// (there is no interactive node process here, only a library).
package ulogger

import (
	"os"
	"strings"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
)

// Logger is the minimal structured-logging surface the engine depends on.
// Named-method style (Debugf/Infof/...) matches the teacher's Logger
// interface so call sites read the same way.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ZLoggerWrapper adapts zerolog.Logger to the Logger interface.
type ZLoggerWrapper struct {
	zerolog.Logger
	service string
}

// New returns a service-scoped logger at the given level ("debug", "info",
// "warn", "error" — case-insensitive, defaulting to info).
func New(service string, level ...string) *ZLoggerWrapper {
	if service == "" {
		service = "nsd"
	}

	z := &ZLoggerWrapper{
		zerolog.New(os.Stdout).With().
			Timestamp().
			Str("service", service).
			Logger(),
		service,
	}

	if len(level) > 0 {
		setLevel(level[0], z)
	}

	return z
}

func setLevel(level string, z *ZLoggerWrapper) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		z.Logger = z.Logger.Level(zerolog.DebugLevel)
	case "WARN":
		z.Logger = z.Logger.Level(zerolog.WarnLevel)
	case "ERROR":
		z.Logger = z.Logger.Level(zerolog.ErrorLevel)
	default:
		z.Logger = z.Logger.Level(zerolog.InfoLevel)
	}
}

// LogLevel reports the level as a gocore level constant, matching the
// teacher's interop shim between zerolog and gocore-configured services.
func (z *ZLoggerWrapper) LogLevel() int {
	switch z.Logger.GetLevel() {
	case zerolog.DebugLevel:
		return int(gocore.DEBUG)
	case zerolog.WarnLevel:
		return int(gocore.WARN)
	case zerolog.ErrorLevel:
		return int(gocore.ERROR)
	default:
		return int(gocore.INFO)
	}
}

func (z *ZLoggerWrapper) Debugf(format string, args ...interface{}) {
	z.Logger.Debug().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Infof(format string, args ...interface{}) {
	z.Logger.Info().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Warnf(format string, args ...interface{}) {
	z.Logger.Warn().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Errorf(format string, args ...interface{}) {
	z.Logger.Error().Msgf(format, args...)
}

// Nop returns a logger that discards everything, for use in tests.
func Nop() Logger {
	return &ZLoggerWrapper{zerolog.Nop(), "nop"}
}
