package common

import "fmt"

// ObjectID is the process-unique identifier of a network object while it is
// spawned. ObjectID 0 is reserved and never allocated: it is the "no object"
// value used for objects without a parent.
type ObjectID uint64

// NilObjectID is the reserved zero ObjectID
const NilObjectID = ObjectID(0)

// IsNil returns if ObjectID is nil
func (id ObjectID) IsNil() bool {
	return id == 0
}

func (id ObjectID) String() string {
	return fmt.Sprintf("Object<%d>", uint64(id))
}

// ClientID identifies a connected client. ClientID 0 is the sentinel for
// "server / no owner".
type ClientID uint64

// NilClientID is the server / no-owner sentinel
const NilClientID = ClientID(0)

// IsNil returns if ClientID is nil
func (id ClientID) IsNil() bool {
	return id == 0
}

func (id ClientID) String() string {
	return fmt.Sprintf("Client<%d>", uint64(id))
}

// PrefabHash identifies the template a network object was instantiated from.
// It is also the stable content hash used for scene soft-sync matching.
type PrefabHash uint32

// Vector3 is a position or euler rotation in replication messages
type Vector3 struct {
	X float32
	Y float32
	Z float32
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}
