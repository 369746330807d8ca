package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New builds a timestamped logger writing to stdout at the given level.
// Unknown levels fall back to info.
func New(prefix, level string) *log.Logger {
	return NewWithWriter(os.Stdout, prefix, level)
}

func NewWithWriter(w io.Writer, prefix, level string) *log.Logger {
	logger := log.New(w)
	logger.SetPrefix(prefix)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.DateTime)
	logger.SetLevel(ParseLevel(level))
	return logger
}

func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// Discard is a logger for tests
func Discard() *log.Logger {
	return log.New(io.Discard)
}
