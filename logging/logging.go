// Package logging provides the package-level *slog.Logger for inkform.
package logging

import (
	"log/slog"
	"sync/atomic"
)

// logger defaults to nil, which makes Logger() return a discard logger, so
// library consumers see no output unless they opt in.
var logger atomic.Pointer[slog.Logger]

// SetLogger configures the package-level logger. Pass nil to disable all
// output. Safe for concurrent use.
//
// Example enabling debug output to stderr:
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = slog.New(slog.DiscardHandler)
	}
	logger.Store(sl)
}

// Logger returns the configured logger, or a discard logger when none has
// been set. Safe for concurrent use.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	l := slog.New(slog.DiscardHandler)
	logger.Store(l)
	return l
}
