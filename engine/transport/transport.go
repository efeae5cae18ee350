// Package transport moves replication packets between the server and its
// clients over TCP, KCP or websocket connections.
//
// Connection goroutines translate everything into Events which the single
// service goroutine drains with Poll on every tick, so the registry never
// needs locking.
package transport

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/netutil"
)

// EventType is the type of transport events
type EventType int

const (
	// EventNothing means no event is pending
	EventNothing EventType = iota
	// EventConnect means a client connected
	EventConnect
	// EventDisconnect means a client disconnected
	EventDisconnect
	// EventData means a packet arrived
	EventData
)

// Event is one transport occurrence handed to the service goroutine.
// Packet is only set for EventData and must be released by the consumer.
type Event struct {
	Type     EventType
	ClientID common.ClientID
	Packet   *netutil.Packet
}
