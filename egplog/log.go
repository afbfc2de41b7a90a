// Package egplog provides the standard EGP logging pattern: a per-module
// logr.Logger with two verbosity levels beyond Debug, Verify and
// Consistency, mirroring the custom VERIFY/CONSISTENCY levels of the
// original Python logging setup.
package egplog

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// Verbosity levels, passed to logr.Logger.V. Higher is more verbose.
const (
	// Debug is the standard debug verbosity.
	Debug = 1
	// Verify logs data correctness checks (range, type, length): right
	// type, range, length, etc. Slows down execution significantly
	// where large volumes of data are involved.
	Verify = 2
	// Consistency logs slow semantic self-consistency checks. Significantly
	// slows down execution; reserve for diagnosing corruption.
	Consistency = 3
)

var (
	root     logr.Logger
	rootOnce sync.Once
	mu       sync.RWMutex
)

func rootLogger() logr.Logger {
	rootOnce.Do(func() {
		root = stdr.New(nil)
	})
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// SetOutput installs l as the backend for all loggers returned by L.
// Call once during process startup before any package-level logger is
// obtained; intended for wiring a non-default logr backend (e.g. one
// that ships to a log aggregator) in place of the stdr default.
func SetOutput(l logr.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
}

// L returns the named logger for a package, following the standard EGP
// logging pattern: one logger per calling module, obtained once at
// package init and reused for the lifetime of the process.
func L(name string) logr.Logger {
	return rootLogger().WithName(name)
}

// EnabledVerify reports whether Verify-level structural checks should run.
// Callers on a hot path use this to skip expensive verification work when
// nothing would observe its output, mirroring egp_log.py's _LOG_VERIFY guard.
func EnabledVerify(l logr.Logger) bool {
	return l.V(Verify).Enabled()
}

// EnabledConsistency reports whether Consistency-level semantic checks
// should run.
func EnabledConsistency(l logr.Logger) bool {
	return l.V(Consistency).Enabled()
}
