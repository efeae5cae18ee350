// Package scene implements soft synchronization of scene-placed objects.
//
// Both sides instantiate the same scene locally. The server spawns its
// scene-placed objects normally; clients do not re-instantiate them from
// spawn messages but match the incoming prefab hash against their own pending
// local instances.
package scene

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/netsync/netsync/engine/object"
	"github.com/pkg/errors"
)

// ErrUnresolved is returned when no pending scene object matches an incoming
// scene spawn message
var ErrUnresolved = errors.New("no pending scene object matches the spawn")

// SoftSyncHandler tracks scene-placed objects through session start
type SoftSyncHandler struct {
	registry *object.Registry
	tracked  []*object.NetworkObject
	pending  map[common.PrefabHash]*object.NetworkObject
}

// NewSoftSyncHandler creates a SoftSyncHandler bound to a registry
func NewSoftSyncHandler(registry *object.Registry) *SoftSyncHandler {
	return &SoftSyncHandler{
		registry: registry,
		pending:  map[common.PrefabHash]*object.NetworkObject{},
	}
}

// TrackSceneObject registers a scene-placed instance before the session starts.
// Only unclassified objects can be tracked.
func (h *SoftSyncHandler) TrackSceneObject(obj *object.NetworkObject) {
	if obj.SceneState() != object.SceneStateUnknown {
		nslog.Warnf("SoftSyncHandler: %s is already classified as %s, not tracking", obj, obj.SceneState())
		return
	}
	h.tracked = append(h.tracked, obj)
}

// SpawnSceneObjects spawns all tracked scene objects with fresh IDs (server).
// Tracked objects that got classified in the meantime are skipped.
func (h *SoftSyncHandler) SpawnSceneObjects() {
	if !h.registry.IsServer() {
		nslog.Warnf("SoftSyncHandler.SpawnSceneObjects: not a server registry")
		return
	}
	for _, obj := range h.tracked {
		if obj.SceneState() != object.SceneStateUnknown {
			continue
		}
		id := h.registry.AllocateID()
		if err := h.registry.Spawn(obj, id, object.SpawnOptions{IsSceneObject: true}); err != nil {
			nslog.Errorf("SoftSyncHandler: spawn scene object %s failed: %v", obj, err)
		}
	}
	h.tracked = nil
}

// CollectPending classifies all tracked instances as scene objects and indexes
// them by prefab hash for resolution against incoming spawns (client).
//
// Two scene objects sharing a prefab hash can not be told apart; the last
// collected one wins and the earlier entry is dropped with a warning.
func (h *SoftSyncHandler) CollectPending() {
	for _, obj := range h.tracked {
		if obj.SceneState() != object.SceneStateUnknown {
			continue
		}
		obj.MarkSceneObject()
		if prev, ok := h.pending[obj.PrefabHash]; ok {
			nslog.Warnf("SoftSyncHandler: prefab %d already pending as %s, replacing with %s", uint32(obj.PrefabHash), prev, obj)
		}
		h.pending[obj.PrefabHash] = obj
	}
	h.tracked = nil
}

// Resolve pops the pending scene object matching the prefab hash
func (h *SoftSyncHandler) Resolve(prefabHash common.PrefabHash) (*object.NetworkObject, error) {
	obj, ok := h.pending[prefabHash]
	if !ok {
		return nil, errors.Wrapf(ErrUnresolved, "prefab %d", uint32(prefabHash))
	}
	delete(h.pending, prefabHash)
	return obj, nil
}

// PendingCount returns the number of unresolved pending scene objects
func (h *SoftSyncHandler) PendingCount() int {
	return len(h.pending)
}

// SweepStale disposes all pending scene objects that were never resolved,
// meaning the server did not spawn a matching scene object. destroy may be
// nil, in which case the object delegates are notified directly.
func (h *SoftSyncHandler) SweepStale(destroy func(obj *object.NetworkObject)) {
	for hash, obj := range h.pending {
		nslog.Debugf("SoftSyncHandler: sweeping stale scene object %s", obj)
		if destroy != nil {
			destroy(obj)
		} else if obj.I != nil {
			obj.I.OnDespawned()
		}
		delete(h.pending, hash)
	}
}
