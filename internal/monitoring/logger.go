// Package monitoring carries the library's diagnostic logging indirection.
// Grid loads, evictions and container I/O are chatty at evaluation time, so
// embedders can redirect or mute the stream without touching call sites.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Call sites tag messages with a bracketed
// component prefix, e.g. "[FileCache] ..." or "[VXB] ...".
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
