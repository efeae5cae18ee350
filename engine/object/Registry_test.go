package object

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/bmizerany/assert"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/idalloc"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/outbound"
	"github.com/netsync/netsync/engine/proto"
	"github.com/pkg/errors"
)

type capturedMsg struct {
	clientid common.ClientID
	msgType  proto.MsgType
}

type testEnv struct {
	registry *Registry
	queue    *outbound.Queue
	sent     []capturedMsg
}

func newTestEnv(t *testing.T, stateEnabled bool) *testEnv {
	env := &testEnv{}
	env.queue = outbound.NewQueue(func(clientid common.ClientID, packet *netutil.Packet, channel proto.Channel) {
		// peek the message type without touching the read cursor
		msgType := proto.MsgType(binary.LittleEndian.Uint16(packet.Payload()[:2]))
		env.sent = append(env.sent, capturedMsg{clientid, msgType})
	})
	allocator := idalloc.NewAllocator(true, 0)
	env.registry = NewRegistry(RoleServer, allocator, NewPrefabRegistry(), env.queue, stateEnabled)
	return env
}

type testDelegate struct {
	spawnedPayload []byte
	spawnCount     int
	despawnCount   int
}

func (d *testDelegate) OnSpawned(payload []byte) {
	d.spawnedPayload = payload
	d.spawnCount++
}

func (d *testDelegate) OnDespawned() {
	d.despawnCount++
}

func TestSpawnRegistersObject(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	r.AddClient(1)
	r.AddClient(2)

	delegate := &testDelegate{}
	obj := NewNetworkObject(100)
	obj.I = delegate
	id := r.AllocateID()

	err := r.Spawn(obj, id, SpawnOptions{Payload: []byte("hi")})
	assert.Equal(t, nil, err)
	assert.T(t, obj.IsSpawned())
	assert.T(t, r.Get(id) == obj)
	assert.T(t, r.SpawnedIDs().Contains(id))
	assert.Equal(t, 1, r.SpawnedCount())
	assert.Equal(t, SceneStateRuntime, obj.SceneState())
	assert.Equal(t, []byte("hi"), delegate.spawnedPayload)

	// both connected clients observe the object and get a spawn message
	assert.T(t, obj.Observers().Contains(1))
	assert.T(t, obj.Observers().Contains(2))
	env.queue.Flush()
	assert.Equal(t, 2, len(env.sent))
	for _, m := range env.sent {
		assert.Equal(t, proto.MT_SPAWN_OBJECT, m.msgType)
	}
}

func TestSpawnSameInstanceTwice(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry

	obj := NewNetworkObject(100)
	assert.Equal(t, nil, r.Spawn(obj, r.AllocateID(), SpawnOptions{}))
	err := r.Spawn(obj, r.AllocateID(), SpawnOptions{})
	assert.Equal(t, ErrAlreadySpawned, errors.Cause(err))
}

func TestSpawnDuplicateIDIsNoop(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry

	first := NewNetworkObject(100)
	id := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(first, id, SpawnOptions{}))

	second := NewNetworkObject(100)
	assert.Equal(t, nil, r.Spawn(second, id, SpawnOptions{}))
	assert.T(t, r.Get(id) == first)
	assert.T(t, !second.IsSpawned())
	assert.Equal(t, 1, r.SpawnedCount())
}

func TestDespawnUnknownIDIsWarning(t *testing.T) {
	env := newTestEnv(t, false)
	env.registry.Despawn(12345, true) // must not panic
}

func TestDespawnRemovesAndAnnounces(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	r.AddClient(1)
	r.AddClient(2)

	delegate := &testDelegate{}
	obj := NewNetworkObject(100)
	obj.I = delegate
	id := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(obj, id, SpawnOptions{}))
	env.queue.Flush()
	env.sent = nil

	r.Despawn(id, true)
	assert.T(t, !obj.IsSpawned())
	assert.T(t, r.Get(id) == nil)
	assert.T(t, !r.SpawnedIDs().Contains(id))
	assert.Equal(t, 1, delegate.despawnCount)

	// despawn goes to every connected client, not just observers
	env.queue.Flush()
	assert.Equal(t, 2, len(env.sent))
	for _, m := range env.sent {
		assert.Equal(t, proto.MT_DESPAWN_OBJECT, m.msgType)
	}
}

func TestDespawnReleasesIDForRecycling(t *testing.T) {
	queue := outbound.NewQueue(func(common.ClientID, *netutil.Packet, proto.Channel) {})
	allocator := idalloc.NewAllocator(true, 0) // immediate reuse
	r := NewRegistry(RoleServer, allocator, NewPrefabRegistry(), queue, false)

	id1 := r.AllocateID()
	id2 := r.AllocateID()
	id3 := r.AllocateID()
	assert.Equal(t, common.ObjectID(3), id3)
	for _, id := range []common.ObjectID{id1, id2, id3} {
		assert.Equal(t, nil, r.Spawn(NewNetworkObject(1), id, SpawnOptions{}))
	}

	r.Despawn(id2, false)
	queue.Flush()

	// id2 is handed out again before any fresh ID
	assert.Equal(t, id2, r.AllocateID())
	assert.Equal(t, common.ObjectID(4), r.AllocateID())
}

func TestDespawnCustomDestroyHandler(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry

	var destroyed *NetworkObject
	r.Prefabs().RegisterDestroyHandler(100, func(obj *NetworkObject) {
		destroyed = obj
	})

	delegate := &testDelegate{}
	obj := NewNetworkObject(100)
	obj.I = delegate
	id := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(obj, id, SpawnOptions{}))

	r.Despawn(id, true)
	assert.T(t, destroyed == obj)
	// the handler replaces default disposal
	assert.Equal(t, 0, delegate.despawnCount)
	assert.T(t, r.Get(id) == nil)
}

func TestPlayerObjectSlot(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	record := r.AddClient(1)

	first := NewNetworkObject(100)
	firstID := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(first, firstID, SpawnOptions{IsPlayerObject: true, OwnerID: 1}))
	assert.Equal(t, firstID, record.PlayerObject)
	assert.Equal(t, 0, len(record.OwnedObjects))

	// a second player object replaces the slot without touching OwnedObjects
	second := NewNetworkObject(100)
	secondID := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(second, secondID, SpawnOptions{IsPlayerObject: true, OwnerID: 1}))
	assert.Equal(t, secondID, record.PlayerObject)
	assert.Equal(t, 0, len(record.OwnedObjects))

	r.Despawn(secondID, false)
	assert.Equal(t, common.NilObjectID, record.PlayerObject)
}

func TestOwnedObjectListOnSpawnAndDespawn(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	record := r.AddClient(1)

	obj := NewNetworkObject(100)
	id := r.AllocateID()
	assert.Equal(t, nil, r.Spawn(obj, id, SpawnOptions{OwnerID: 1}))
	assert.Equal(t, common.ObjectIDList{id}, record.OwnedObjects)

	r.Despawn(id, false)
	assert.Equal(t, 0, len(record.OwnedObjects))
}

func TestVisibilityCheckLimitsObservers(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry
	r.AddClient(1)
	r.AddClient(2)
	r.AddClient(3)

	obj := NewNetworkObject(100)
	obj.SetVisibilityCheck(func(clientid common.ClientID) bool {
		return clientid != 2
	})
	assert.Equal(t, nil, r.Spawn(obj, r.AllocateID(), SpawnOptions{}))

	assert.T(t, obj.Observers().Contains(1))
	assert.T(t, !obj.Observers().Contains(2))
	assert.T(t, obj.Observers().Contains(3))

	env.queue.Flush()
	assert.Equal(t, 2, len(env.sent))
	for _, m := range env.sent {
		assert.T(t, m.clientid != 2)
	}
}

func TestSpawnAppliesStateSnapshot(t *testing.T) {
	env := newTestEnv(t, true)
	r := env.registry

	source := NewNetworkObject(100)
	source.Attrs["hp"] = int64(75)
	snapshot := source.MarshalState()
	assert.T(t, snapshot != nil)

	obj := NewNetworkObject(100)
	err := r.Spawn(obj, r.AllocateID(), SpawnOptions{
		StateSnapshot: snapshot,
		ReadSnapshot:  true,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(75), obj.Attrs["hp"])
}

func TestSnapshotIgnoredWhenStateDisabled(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry

	obj := NewNetworkObject(100)
	obj.Attrs["keep"] = "me"
	err := r.Spawn(obj, r.AllocateID(), SpawnOptions{
		StateSnapshot: []byte{0xff, 0xff}, // garbage, must not even be parsed
		ReadSnapshot:  true,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, "me", obj.Attrs["keep"])
}

func TestSceneStateOneDirectional(t *testing.T) {
	obj := NewNetworkObject(100)
	assert.Equal(t, SceneStateUnknown, obj.SceneState())
	obj.MarkSceneObject()
	assert.Equal(t, SceneStateScene, obj.SceneState())
	obj.MarkSceneObject() // same state is a no-op

	defer func() {
		if recover() == nil {
			t.Errorf("backward scene state transition should panic")
		}
	}()
	obj.MarkRuntimeObject()
}

func TestSpawnPacketForLateJoiner(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry

	obj := NewNetworkObject(100)
	obj.Position = common.Vector3{X: 1, Y: 2, Z: 3}
	assert.Equal(t, nil, r.Spawn(obj, r.AllocateID(), SpawnOptions{}))

	pkt := r.SpawnPacketFor(obj, 7)
	assert.Equal(t, uint16(proto.MT_SPAWN_OBJECT), pkt.ReadUint16())
	msg := proto.ReadSpawnMsg(pkt, false)
	assert.Equal(t, obj.ID, msg.ObjectID)
	assert.Equal(t, obj.Position, msg.Position)
	assert.T(t, !msg.IsSceneObject)
	pkt.Release()
}

func TestTransformFilterPerClient(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.registry

	obj := NewNetworkObject(100)
	obj.Position = common.Vector3{X: 9}
	obj.SetTransformFilter(func(clientid common.ClientID) bool {
		return clientid == 1
	})
	assert.Equal(t, nil, r.Spawn(obj, r.AllocateID(), SpawnOptions{}))

	withTransform := r.SpawnPacketFor(obj, 1)
	withTransform.ReadUint16()
	assert.T(t, proto.ReadSpawnMsg(withTransform, false).IncludeTransform)
	withTransform.Release()

	withoutTransform := r.SpawnPacketFor(obj, 2)
	withoutTransform.ReadUint16()
	assert.T(t, !proto.ReadSpawnMsg(withoutTransform, false).IncludeTransform)
	withoutTransform.Release()
}

func TestAllocatorLazyRecycleThroughRegistry(t *testing.T) {
	allocator := idalloc.NewAllocator(true, 5*time.Second)
	t0 := time.Unix(5000, 0)
	id := allocator.Allocate(t0)
	allocator.Release(id, t0)
	assert.Equal(t, common.ObjectID(2), allocator.Allocate(t0.Add(time.Second)))
	assert.Equal(t, id, allocator.Allocate(t0.Add(10*time.Second)))
}
