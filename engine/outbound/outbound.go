// Package outbound stages replication messages until the end of the tick.
//
// Spawn and ownership messages go out at StageUpdate, despawn announcements
// are deferred to StagePostUpdate so they always trail the updates of the
// same tick.
package outbound

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/proto"
)

// Stage is the send stage of a queued message
type Stage int

const (
	// StageUpdate is flushed first on every tick
	StageUpdate Stage = iota
	// StagePostUpdate is flushed after StageUpdate on every tick
	StagePostUpdate

	numStages
)

// Item is a staged outbound message with its destination clients
type Item struct {
	Stage    Stage
	MsgType  proto.MsgType
	ObjectID common.ObjectID
	Packet   *netutil.Packet
	Channel  proto.Channel
	Targets  []common.ClientID
}

// SendFunc delivers one packet to one client
type SendFunc func(clientid common.ClientID, packet *netutil.Packet, channel proto.Channel)

// Queue collects outbound items and flushes them stage by stage
type Queue struct {
	stages [numStages][]Item
	send   SendFunc
}

// NewQueue creates a Queue that delivers through send
func NewQueue(send SendFunc) *Queue {
	return &Queue{
		send: send,
	}
}

// Enqueue stages an item for the next flush.
// The queue takes over the caller's reference to item.Packet.
func (q *Queue) Enqueue(item Item) {
	if item.Stage < 0 || item.Stage >= numStages {
		item.Packet.Release()
		return
	}
	q.stages[item.Stage] = append(q.stages[item.Stage], item)
}

// Flush sends all staged items, StageUpdate first, then StagePostUpdate.
// Within a stage items keep their enqueue order. Items enqueued while
// flushing are kept for the next flush of their stage.
func (q *Queue) Flush() {
	for stage := Stage(0); stage < numStages; stage++ {
		items := q.stages[stage]
		q.stages[stage] = nil
		for i := range items {
			item := &items[i]
			for _, clientid := range item.Targets {
				q.send(clientid, item.Packet, item.Channel)
			}
			item.Packet.Release()
			item.Packet = nil
		}
	}
}

// Len returns the total number of staged items
func (q *Queue) Len() int {
	n := 0
	for stage := Stage(0); stage < numStages; stage++ {
		n += len(q.stages[stage])
	}
	return n
}
