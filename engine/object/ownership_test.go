package object

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/idalloc"
	"github.com/netsync/netsync/engine/proto"
	"github.com/pkg/errors"
)

func TestChangeOwnershipMovesBetweenLists(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	recordA := r.AddClient(1)
	recordB := r.AddClient(2)

	obj := NewNetworkObject(100)
	id := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(obj, id, SpawnOptions{OwnerID: 1}))
	assert.Equal(t, common.ObjectIDList{id}, recordA.OwnedObjects)

	assert.Equal(t, nil, r.ChangeOwnership(obj, 2))
	assert.Equal(t, common.ClientID(2), obj.OwnerID)
	assert.Equal(t, 0, len(recordA.OwnedObjects))
	assert.Equal(t, common.ObjectIDList{id}, recordB.OwnedObjects)
}

func TestChangeOwnershipAnnouncesToAllClients(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	r.AddClient(1)
	r.AddClient(2)

	obj := NewNetworkObject(100)
	assert.Equal(t, nil, r.Spawn(obj, r.AllocateID(), SpawnOptions{OwnerID: 1}))
	env.queue.Flush()
	env.sent = nil

	assert.Equal(t, nil, r.ChangeOwnership(obj, 2))
	env.queue.Flush()
	assert.Equal(t, 2, len(env.sent))
	for _, m := range env.sent {
		assert.Equal(t, proto.MT_CHANGE_OWNERSHIP, m.msgType)
	}
}

func TestRemoveOwnership(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	record := r.AddClient(1)

	obj := NewNetworkObject(100)
	id := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(obj, id, SpawnOptions{OwnerID: 1}))

	assert.Equal(t, nil, r.RemoveOwnership(obj))
	assert.Equal(t, common.NilClientID, obj.OwnerID)
	assert.Equal(t, 0, len(record.OwnedObjects))
}

func TestOwnershipRequiresServer(t *testing.T) {
	r := NewRegistry(RoleClient, idalloc.NewAllocator(false, 0), NewPrefabRegistry(), nil, false)
	obj := NewNetworkObject(100)
	assert.Equal(t, nil, r.Spawn(obj, 1, SpawnOptions{}))

	assert.Equal(t, ErrNotServer, errors.Cause(r.ChangeOwnership(obj, 2)))
	assert.Equal(t, ErrNotServer, errors.Cause(r.RemoveOwnership(obj)))
}

func TestOwnershipRequiresSpawned(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	r.AddClient(1)

	obj := NewNetworkObject(100)
	assert.Equal(t, ErrNotSpawned, errors.Cause(r.ChangeOwnership(obj, 1)))
	assert.Equal(t, ErrNotSpawned, errors.Cause(r.RemoveOwnership(obj)))
}

// Reassigning ownership of a player object lists it in OwnedObjects even
// though the player slot already references it, and despawning the player
// object only clears the slot. The stale list entry is kept on purpose to
// preserve the established wire-visible behavior.
func TestPlayerObjectOwnershipLeavesStaleListEntry(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	record := r.AddClient(1)

	obj := NewNetworkObject(100)
	id := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(obj, id, SpawnOptions{IsPlayerObject: true, OwnerID: 1}))
	assert.Equal(t, id, record.PlayerObject)
	assert.Equal(t, 0, len(record.OwnedObjects))

	assert.Equal(t, nil, r.ChangeOwnership(obj, 1))
	assert.Equal(t, common.ObjectIDList{id}, record.OwnedObjects)

	r.Despawn(id, false)
	assert.Equal(t, common.NilObjectID, record.PlayerObject)
	assert.Equal(t, common.ObjectIDList{id}, record.OwnedObjects) // stale entry survives
}

func TestApplyOwnershipLocal(t *testing.T) {
	r := NewRegistry(RoleClient, idalloc.NewAllocator(false, 0), NewPrefabRegistry(), nil, false)
	r.SetLocalClient(5)
	record := r.GetClientRecord(5)

	obj := NewNetworkObject(100)
	assert.Equal(t, nil, r.Spawn(obj, 1, SpawnOptions{}))

	r.ApplyOwnershipLocal(obj, 5)
	assert.Equal(t, common.ClientID(5), obj.OwnerID)
	assert.Equal(t, common.ObjectIDList{common.ObjectID(1)}, record.OwnedObjects)

	r.ApplyOwnershipLocal(obj, 9) // some other client, untracked locally
	assert.Equal(t, common.ClientID(9), obj.OwnerID)
	assert.Equal(t, 0, len(record.OwnedObjects))
}

func TestDisconnectCleanupOrphansOwnership(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	record := r.AddClient(1)

	player := NewNetworkObject(100)
	playerID := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(player, playerID, SpawnOptions{IsPlayerObject: true, OwnerID: 1}))

	owned := NewNetworkObject(101)
	ownedID := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(owned, ownedID, SpawnOptions{OwnerID: 1}))

	// disconnect: player object despawns, other owned objects return to the server
	r.Despawn(record.PlayerObject, true)
	for _, id := range append(common.ObjectIDList(nil), record.OwnedObjects...) {
		if obj := r.Get(id); obj != nil {
			assert.Equal(t, nil, r.RemoveOwnership(obj))
		}
	}
	r.RemoveClient(1)

	assert.T(t, r.Get(playerID) == nil)
	assert.T(t, r.Get(ownedID) == owned)
	assert.Equal(t, common.NilClientID, owned.OwnerID)
	assert.T(t, r.GetClientRecord(1) == nil)
}
