package proto

// MsgType is the type of message types
type MsgType uint16

const (
	// MT_INVALID is the invalid message type
	MT_INVALID MsgType = iota
	// MT_SET_CLIENT_ID is sent by the server to assign the connected client its client ID
	MT_SET_CLIENT_ID
	// MT_HEARTBEAT is sent by clients periodically to keep the connection alive
	MT_HEARTBEAT
	// MT_SPAWN_OBJECT replicates a spawned object to a client
	MT_SPAWN_OBJECT
	// MT_DESPAWN_OBJECT tells clients to despawn an object
	MT_DESPAWN_OBJECT
	// MT_CHANGE_OWNERSHIP tells clients that the owner of an object changed
	MT_CHANGE_OWNERSHIP
)

// Channel identifies the delivery channel of a message
type Channel uint8

const (
	// CHANNEL_INTERNAL is the reliable sequenced channel for spawn, despawn and ownership messages
	CHANNEL_INTERNAL Channel = iota
	// CHANNEL_STATE is the channel for replicated-state updates
	CHANNEL_STATE
)
