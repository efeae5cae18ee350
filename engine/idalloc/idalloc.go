// Package idalloc allocates network object IDs and recycles released ones.
package idalloc

import (
	"time"

	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/consts"
	"github.com/netsync/netsync/engine/nslog"
)

type releasedID struct {
	id         common.ObjectID
	releasedAt time.Time
}

// Allocator hands out object IDs starting from 1, never 0.
//
// When recycling is enabled, released IDs queue up FIFO and become available
// again once they have been released for at least the configured delay. The
// delay check is lazy: it only happens on allocation, there is no timer.
type Allocator struct {
	counter  uint64
	recycle  bool
	delay    time.Duration
	released []releasedID
}

// NewAllocator creates an Allocator. delay is ignored when recycle is false.
func NewAllocator(recycle bool, delay time.Duration) *Allocator {
	return &Allocator{
		recycle: recycle,
		delay:   delay,
	}
}

// Allocate returns the next object ID.
//
// The oldest released ID is reused if it has been released for at least the
// recycle delay at time now, otherwise a fresh ID is minted even when younger
// released IDs exist behind it (FIFO, no reordering).
func (a *Allocator) Allocate(now time.Time) common.ObjectID {
	if a.recycle && len(a.released) > 0 {
		oldest := a.released[0]
		if now.Sub(oldest.releasedAt) >= a.delay {
			a.released = a.released[1:]
			if consts.DEBUG_SPAWN {
				nslog.Debugf("idalloc: reusing released object ID %s", oldest.id)
			}
			return oldest.id
		}
	}

	a.counter++
	return common.ObjectID(a.counter)
}

// Release queues the object ID for reuse at time now.
// Release does nothing when recycling is disabled.
func (a *Allocator) Release(id common.ObjectID, now time.Time) {
	if !a.recycle {
		return
	}
	if id.IsNil() {
		nslog.Warnf("idalloc: ignoring release of nil object ID")
		return
	}

	a.released = append(a.released, releasedID{id: id, releasedAt: now})
}

// RecycleEnabled returns if released IDs are reused
func (a *Allocator) RecycleEnabled() bool {
	return a.recycle
}

// PendingReleased returns the number of released IDs waiting for reuse
func (a *Allocator) PendingReleased() int {
	return len(a.released)
}
