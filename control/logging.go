// control/logging.go
// Author: momentics <momentics@gmail.com>
//
// Logger construction. Components receive a logrus.FieldLogger; there is
// no package-level logger.

package control

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Verbosity levels accepted by log_level.
const (
	LevelCrit = iota
	LevelErr
	LevelWarn
	LevelNotice
	LevelInfo
	LevelDebug
	LevelVerb
	LevelVVerb
)

// LogrusLevel maps a log_level value onto logrus.
func LogrusLevel(level uint64) logrus.Level {
	switch level {
	case LevelCrit:
		return logrus.FatalLevel
	case LevelErr:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelNotice, LevelInfo:
		return logrus.InfoLevel
	case LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// NewLogger creates a text logger at the given verbosity writing to out.
func NewLogger(level uint64, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(LogrusLevel(level))
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

// DiscardLogger returns a logger that writes nothing.
func DiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// ModuleLogger tags log with a module field. A nil log yields a discarding
// logger.
func ModuleLogger(log logrus.FieldLogger, module string) logrus.FieldLogger {
	if log == nil {
		log = DiscardLogger()
	}
	return log.WithField("module", module)
}
