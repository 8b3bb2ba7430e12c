// Package logger provides the shared logrus instance used across the
// adapter's components. Each component calls GetLogger with its own name
// and logs through the returned entry.
package logger

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var std = logrus.New()

func init() {
	std.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	std.SetOutput(os.Stdout)
	std.SetLevel(logrus.InfoLevel)
}

// Init configures the shared logger's level and destination. logFile may be
// empty, in which case logs go to stdout only. verbosity follows the CLI's
// -v/-vv/-vvv counting convention: 0=info, 1=debug, 2+=trace.
func Init(logFile string, verbosity int) {
	switch {
	case verbosity >= 2:
		std.SetLevel(logrus.TraceLevel)
	case verbosity == 1:
		std.SetLevel(logrus.DebugLevel)
	default:
		std.SetLevel(logrus.InfoLevel)
	}

	if logFile == "" {
		std.SetOutput(os.Stdout)
		return
	}

	std.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}))
}

// GetLogger returns a logrus entry prefixed with name, the shape used by
// every component in this module (e.g. logger.GetLogger("seedrapi")).
func GetLogger(name string) *logrus.Entry {
	return std.WithField("prefix", name)
}
