package valkit

import (
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger atomic.Pointer[logrus.Logger]

func init() {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	logger.Store(l)
}

// Logger returns the package logger.
func Logger() *logrus.Logger {
	return logger.Load()
}

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

// SetLogLevel parses and applies a logrus level name.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return NewInvalidArgumentError("SetLogLevel", "unknown log level '%s'", level)
	}
	Logger().SetLevel(lvl)
	return nil
}
