// Package nsutils holds the panic guards used by long-running service loops.
package nsutils

import "github.com/netsync/netsync/engine/nslog"

// RunPanicless calls f, recovering and logging any panic.
// Returns true if f panicked.
func RunPanicless(f func()) (paniced bool) {
	defer func() {
		if err := recover(); err != nil {
			paniced = true
			nslog.TraceError("%s panic: %s", f, err)
		}
	}()

	f()
	return
}

// RepeatUntilPanicless keeps calling f until it returns without panicking
func RepeatUntilPanicless(f func()) {
	for RunPanicless(f) {
	}
}
