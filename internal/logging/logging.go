// Package logging builds the charm logger used by the command tree, the
// HTTP server and the run store. The core module never logs.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a config value onto a log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("unknown log level %q (debug, info, warn, error)", s)
}

// New returns a logger writing to w. An unknown level falls back to info
// and is reported through the logger itself.
func New(w io.Writer, level string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "fusionsite",
	})
	lv, err := ParseLevel(level)
	l.SetLevel(lv)
	if err != nil {
		l.Warn("defaulting to info", "err", err)
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger { return log.New(io.Discard) }
