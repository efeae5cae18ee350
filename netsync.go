package netsync

import (
	"github.com/netsync/netsync/components/client"
	"github.com/netsync/netsync/components/server"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/object"
)

// Aliases of the core replication types, so most programs only need to
// import the netsync package.
type (
	// ObjectID identifies a spawned network object, 0 is the nil ID
	ObjectID = common.ObjectID
	// ClientID identifies a connected client, 0 means the server
	ClientID = common.ClientID
	// PrefabHash identifies the prefab an object was instantiated from
	PrefabHash = common.PrefabHash
	// Vector3 is a replicated position or euler rotation
	Vector3 = common.Vector3
	// NetworkObject is a replicated object tracked by a registry
	NetworkObject = object.NetworkObject
	// SpawnOptions carries the per-spawn parameters of Spawn
	SpawnOptions = object.SpawnOptions
)

// NilObjectID is the zero ObjectID, never assigned to a spawned object
const NilObjectID = common.NilObjectID

// NilClientID is the zero ClientID, marking server-owned objects
const NilClientID = common.NilClientID

// NewNetworkObject creates an unspawned NetworkObject of the given prefab
func NewNetworkObject(prefabHash PrefabHash) *NetworkObject {
	return object.NewNetworkObject(prefabHash)
}

// RunServer runs the authoritative server service. Never returns.
func RunServer(delegate server.IServerDelegate, setup func(ss *server.ServerService)) {
	server.Run(delegate, setup)
}

// RunClient runs the mirroring client service. Returns when the connection
// is lost.
func RunClient(delegate client.IClientDelegate, setup func(cs *client.ClientService)) {
	client.Run(delegate, setup)
}
