package scene

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/idalloc"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/object"
	"github.com/netsync/netsync/engine/outbound"
	"github.com/netsync/netsync/engine/proto"
	"github.com/pkg/errors"
)

func newServerRegistry() *object.Registry {
	queue := outbound.NewQueue(func(common.ClientID, *netutil.Packet, proto.Channel) {})
	return object.NewRegistry(object.RoleServer, idalloc.NewAllocator(true, 0), object.NewPrefabRegistry(), queue, false)
}

func newClientRegistry() *object.Registry {
	return object.NewRegistry(object.RoleClient, idalloc.NewAllocator(false, 0), object.NewPrefabRegistry(), nil, false)
}

func TestServerSpawnsSceneObjects(t *testing.T) {
	r := newServerRegistry()
	h := NewSoftSyncHandler(r)

	a := object.NewNetworkObject(1)
	b := object.NewNetworkObject(2)
	h.TrackSceneObject(a)
	h.TrackSceneObject(b)
	h.SpawnSceneObjects()

	assert.T(t, a.IsSpawned())
	assert.T(t, b.IsSpawned())
	assert.Equal(t, object.SceneStateScene, a.SceneState())
	assert.Equal(t, object.SceneStateScene, b.SceneState())
	assert.T(t, a.ID != b.ID)
	assert.Equal(t, 2, r.SpawnedCount())
}

func TestClientResolvePending(t *testing.T) {
	r := newClientRegistry()
	h := NewSoftSyncHandler(r)

	a := object.NewNetworkObject(1)
	b := object.NewNetworkObject(2)
	h.TrackSceneObject(a)
	h.TrackSceneObject(b)
	h.CollectPending()
	assert.Equal(t, 2, h.PendingCount())

	got, err := h.Resolve(1)
	assert.Equal(t, nil, err)
	assert.T(t, got == a)
	assert.Equal(t, 1, h.PendingCount())

	// resolving the same hash again fails, the entry was popped
	_, err = h.Resolve(1)
	assert.Equal(t, ErrUnresolved, errors.Cause(err))
}

func TestResolveUnknownHash(t *testing.T) {
	h := NewSoftSyncHandler(newClientRegistry())
	_, err := h.Resolve(42)
	assert.Equal(t, ErrUnresolved, errors.Cause(err))
}

func TestDuplicateHashLastWins(t *testing.T) {
	h := NewSoftSyncHandler(newClientRegistry())

	first := object.NewNetworkObject(7)
	second := object.NewNetworkObject(7)
	h.TrackSceneObject(first)
	h.TrackSceneObject(second)
	h.CollectPending()

	assert.Equal(t, 1, h.PendingCount())
	got, err := h.Resolve(7)
	assert.Equal(t, nil, err)
	assert.T(t, got == second)
}

func TestTrackClassifiedObjectIgnored(t *testing.T) {
	h := NewSoftSyncHandler(newClientRegistry())

	obj := object.NewNetworkObject(3)
	obj.MarkRuntimeObject()
	h.TrackSceneObject(obj)
	h.CollectPending()
	assert.Equal(t, 0, h.PendingCount())
}

type sweepDelegate struct {
	despawned bool
}

func (d *sweepDelegate) OnSpawned(payload []byte) {}
func (d *sweepDelegate) OnDespawned()             { d.despawned = true }

func TestSweepStale(t *testing.T) {
	h := NewSoftSyncHandler(newClientRegistry())

	resolved := object.NewNetworkObject(1)
	stale := object.NewNetworkObject(2)
	staleDelegate := &sweepDelegate{}
	stale.I = staleDelegate
	h.TrackSceneObject(resolved)
	h.TrackSceneObject(stale)
	h.CollectPending()

	_, err := h.Resolve(1)
	assert.Equal(t, nil, err)

	h.SweepStale(nil)
	assert.Equal(t, 0, h.PendingCount())
	assert.T(t, staleDelegate.despawned)
}

func TestSweepStaleCustomDestroy(t *testing.T) {
	h := NewSoftSyncHandler(newClientRegistry())

	stale := object.NewNetworkObject(9)
	h.TrackSceneObject(stale)
	h.CollectPending()

	var destroyed *object.NetworkObject
	h.SweepStale(func(obj *object.NetworkObject) {
		destroyed = obj
	})
	assert.T(t, destroyed == stale)
}
