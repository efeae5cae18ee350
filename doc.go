/*
NetSync is a server-authoritative object replication engine. A server process
owns the set of spawned network objects and replicates spawns, despawns and
ownership changes to every connected client over TCP, KCP or WebSocket.

Objects and prefabs

Every replicated object is a NetworkObject instantiated from a prefab,
identified by its prefab hash. The server allocates a session-unique ObjectID
when an object spawns; clients use the prefab hash to instantiate the same
kind of object locally when the spawn message arrives. Released IDs can be
recycled after a configurable delay.

Ownership

Objects are owned by the server by default. The server can hand ownership of
an object to a client, and each client may additionally have one dedicated
player object. Ownership changes are replicated to all clients; when a client
disconnects its player object is despawned and its owned objects return to
the server.

Scene objects

Objects placed in a scene exist on both sides before the session starts.
Instead of re-instantiating them from spawn messages, clients soft-sync them:
locally placed instances are matched against incoming scene spawns by prefab
hash and adopt the replicated identity.

Run server and client

NetSync does not provide executables. Programs embed the server or client
service:

	import (
		"github.com/netsync/netsync"
		"github.com/netsync/netsync/components/server"
	)

	func main() {
		netsync.RunServer(&serverDelegate{}, func(ss *server.ServerService) {
			ss.Prefabs().Register(cubePrefab, newCube)
		})
	}

Both services read netsync.ini (see netsync.ini.sample) and run their logic
on a single goroutine ticking every 10ms, so delegate callbacks never need
locking.
*/
package netsync
