// Package post defers callbacks to the end of the current service tick.
//
// Connection goroutines use it to hand work over to the service goroutine,
// so registry state is only ever touched from one goroutine.
package post

import (
	"sync"

	"github.com/netsync/netsync/engine/nsutils"
)

// Callback is a function posted for the end of the tick
type Callback func()

var (
	lock    sync.Mutex
	pending []Callback
)

// Post schedules f to run in the service goroutine at the end of the
// current tick. Safe to call from any goroutine.
func Post(f Callback) {
	lock.Lock()
	pending = append(pending, f)
	lock.Unlock()
}

// Tick runs the posted callbacks in post order. Callbacks posted while
// ticking run in the same tick, after the earlier batch finishes.
func Tick() {
	for {
		lock.Lock()
		batch := pending
		pending = nil
		lock.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, f := range batch {
			nsutils.RunPanicless(f)
		}
	}
}
