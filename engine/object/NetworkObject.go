package object

import (
	"fmt"

	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/nslog"
)

// SceneState tells whether an object was placed in a scene or instantiated at runtime
type SceneState int

const (
	// SceneStateUnknown is the initial state before classification
	SceneStateUnknown SceneState = iota
	// SceneStateScene marks an object placed in a scene
	SceneStateScene
	// SceneStateRuntime marks an object instantiated at runtime
	SceneStateRuntime
)

func (s SceneState) String() string {
	switch s {
	case SceneStateUnknown:
		return "Unknown"
	case SceneStateScene:
		return "SceneObject"
	case SceneStateRuntime:
		return "RuntimeObject"
	}
	return fmt.Sprintf("SceneState<%d>", int(s))
}

// IObject is the delegate interface implemented by application objects
type IObject interface {
	// OnSpawned is called after the object entered the registry, with the raw spawn payload
	OnSpawned(payload []byte)
	// OnDespawned is called when the object instance is disposed
	OnDespawned()
}

// VisibilityFunc decides per client whether it can observe an object
type VisibilityFunc func(clientid common.ClientID) bool

// NetworkObject is a replicated object tracked by the Registry.
//
// A NetworkObject carries no identity until it is spawned; despawning clears
// the spawned flag but the instance may be spawned again with a new ID.
type NetworkObject struct {
	ID               common.ObjectID
	PrefabHash       common.PrefabHash
	OwnerID          common.ClientID // NilClientID means server-owned
	ParentID         common.ObjectID // weak reference, NilObjectID for no parent
	IsPlayerObject   bool
	DestroyWithScene bool
	Position         common.Vector3
	RotationEuler    common.Vector3
	Attrs            map[string]interface{} // replicated state
	I                IObject                // optional delegate

	sceneState      SceneState
	spawned         bool
	observers       common.ClientIDSet
	visibilityCheck VisibilityFunc // nil means visible to everyone
	transformFilter VisibilityFunc // nil means transform included for everyone
}

// NewNetworkObject creates an unspawned NetworkObject of the given prefab
func NewNetworkObject(prefabHash common.PrefabHash) *NetworkObject {
	return &NetworkObject{
		PrefabHash: prefabHash,
		Attrs:      map[string]interface{}{},
		observers:  common.ClientIDSet{},
	}
}

func (obj *NetworkObject) String() string {
	return fmt.Sprintf("NetworkObject<id=%d, prefab=%d>", uint64(obj.ID), uint32(obj.PrefabHash))
}

// IsSpawned returns if the object is currently spawned
func (obj *NetworkObject) IsSpawned() bool {
	return obj.spawned
}

// SceneState returns the scene classification of the object
func (obj *NetworkObject) SceneState() SceneState {
	return obj.sceneState
}

// MarkSceneObject classifies the object as scene-placed.
// The transition is one-directional: only Unknown objects can be classified.
func (obj *NetworkObject) MarkSceneObject() {
	obj.setSceneState(SceneStateScene)
}

// MarkRuntimeObject classifies the object as runtime-instantiated.
// The transition is one-directional: only Unknown objects can be classified.
func (obj *NetworkObject) MarkRuntimeObject() {
	obj.setSceneState(SceneStateRuntime)
}

func (obj *NetworkObject) setSceneState(s SceneState) {
	if obj.sceneState == s {
		return
	}
	if obj.sceneState != SceneStateUnknown {
		nslog.Panicf("%s: scene state can not change from %s to %s", obj, obj.sceneState, s)
	}
	obj.sceneState = s
}

// SetVisibilityCheck sets the per-client visibility predicate.
// A nil predicate makes the object visible to every connected client.
func (obj *NetworkObject) SetVisibilityCheck(f VisibilityFunc) {
	obj.visibilityCheck = f
}

// VisibleTo reports whether the visibility predicate allows the client
func (obj *NetworkObject) VisibleTo(clientid common.ClientID) bool {
	return obj.visibilityCheck == nil || obj.visibilityCheck(clientid)
}

// SetTransformFilter sets the per-client predicate deciding whether spawn
// messages to that client include the transform. Nil includes it for everyone.
func (obj *NetworkObject) SetTransformFilter(f VisibilityFunc) {
	obj.transformFilter = f
}

// Observers returns the set of clients observing this object.
// The returned set must not be modified by the caller.
func (obj *NetworkObject) Observers() common.ClientIDSet {
	return obj.observers
}

// MarshalState packs the replicated state of the object into a snapshot
func (obj *NetworkObject) MarshalState() []byte {
	b, err := netutil.MSG_PACKER.PackMsg(obj.Attrs, nil)
	if err != nil {
		nslog.TraceError("%s: marshal state failed: %v", obj, err)
		return nil
	}
	return b
}

// ApplyStateSnapshot unpacks a replicated-state snapshot into the object
func (obj *NetworkObject) ApplyStateSnapshot(snapshot []byte) error {
	if len(snapshot) == 0 {
		return nil
	}
	attrs := map[string]interface{}{}
	if err := netutil.MSG_PACKER.UnpackMsg(snapshot, &attrs); err != nil {
		return err
	}
	obj.Attrs = attrs
	return nil
}
