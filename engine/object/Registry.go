package object

import (
	"sort"
	"time"

	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/consts"
	"github.com/netsync/netsync/engine/idalloc"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/netsync/netsync/engine/nsutils"
	"github.com/netsync/netsync/engine/outbound"
	"github.com/netsync/netsync/engine/proto"
	"github.com/pkg/errors"
)

// Role tells whether a Registry runs with server authority or mirrors one
type Role int

const (
	// RoleServer has authority over spawning and ownership
	RoleServer Role = iota
	// RoleClient mirrors the server registry
	RoleClient
)

// SpawnOptions carries the per-spawn parameters of Registry.Spawn
type SpawnOptions struct {
	IsSceneObject    bool
	IsPlayerObject   bool
	DestroyWithScene bool            // scene objects always destroy with the scene
	OwnerID          common.ClientID // NilClientID for server-owned
	Payload          []byte          // opaque payload handed to the object delegate
	StateSnapshot    []byte          // replicated-state snapshot to apply before spawning
	ReadSnapshot     bool            // apply StateSnapshot when replicated state is enabled
}

// Registry tracks all spawned network objects of one server or client session
type Registry struct {
	role         Role
	objects      map[common.ObjectID]*NetworkObject
	spawnedIDs   common.ObjectIDSet
	clients      map[common.ClientID]*ClientRecord
	localClient  common.ClientID
	allocator    *idalloc.Allocator
	prefabs      *PrefabRegistry
	queue        *outbound.Queue // nil on clients
	stateEnabled bool
}

// NewRegistry creates a Registry. queue must be non-nil for RoleServer.
func NewRegistry(role Role, allocator *idalloc.Allocator, prefabs *PrefabRegistry, queue *outbound.Queue, stateEnabled bool) *Registry {
	if role == RoleServer && queue == nil {
		nslog.Panicf("NewRegistry: server registry requires an outbound queue")
	}
	return &Registry{
		role:         role,
		objects:      map[common.ObjectID]*NetworkObject{},
		spawnedIDs:   common.ObjectIDSet{},
		clients:      map[common.ClientID]*ClientRecord{},
		allocator:    allocator,
		prefabs:      prefabs,
		queue:        queue,
		stateEnabled: stateEnabled,
	}
}

// Role returns the role of the registry
func (r *Registry) Role() Role {
	return r.role
}

// IsServer returns if the registry has server authority
func (r *Registry) IsServer() bool {
	return r.role == RoleServer
}

// StateEnabled returns if replicated-state snapshots are carried in spawn messages
func (r *Registry) StateEnabled() bool {
	return r.stateEnabled
}

// Prefabs returns the prefab registry
func (r *Registry) Prefabs() *PrefabRegistry {
	return r.prefabs
}

// AddClient starts tracking a connected client
func (r *Registry) AddClient(clientid common.ClientID) *ClientRecord {
	if record, ok := r.clients[clientid]; ok {
		nslog.Warnf("Registry.AddClient: %s is already tracked", clientid)
		return record
	}
	record := newClientRecord(clientid)
	r.clients[clientid] = record
	if consts.DEBUG_CLIENTS {
		nslog.Debugf("Registry.AddClient: %s", clientid)
	}
	return record
}

// RemoveClient stops tracking a client
func (r *Registry) RemoveClient(clientid common.ClientID) {
	delete(r.clients, clientid)
	if consts.DEBUG_CLIENTS {
		nslog.Debugf("Registry.RemoveClient: %s", clientid)
	}
}

// GetClientRecord returns the record of a tracked client, nil if untracked
func (r *Registry) GetClientRecord(clientid common.ClientID) *ClientRecord {
	return r.clients[clientid]
}

// SetLocalClient sets the client ID assigned by the server (client role)
func (r *Registry) SetLocalClient(clientid common.ClientID) {
	r.localClient = clientid
	if r.clients[clientid] == nil {
		r.AddClient(clientid)
	}
}

// LocalClient returns the client ID assigned by the server (client role)
func (r *Registry) LocalClient() common.ClientID {
	return r.localClient
}

// ConnectedClients returns the IDs of all tracked clients, sorted
func (r *Registry) ConnectedClients() []common.ClientID {
	ids := make([]common.ClientID, 0, len(r.clients))
	for clientid := range r.clients {
		ids = append(ids, clientid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllocateID allocates the next object ID (server role)
func (r *Registry) AllocateID() common.ObjectID {
	return r.allocator.Allocate(time.Now())
}

// Get returns the spawned object with the given ID, nil if not spawned
func (r *Registry) Get(id common.ObjectID) *NetworkObject {
	return r.objects[id]
}

// SpawnedCount returns the number of spawned objects
func (r *Registry) SpawnedCount() int {
	return len(r.objects)
}

// SpawnedIDs returns the set of spawned object IDs.
// The returned set must not be modified by the caller.
func (r *Registry) SpawnedIDs() common.ObjectIDSet {
	return r.spawnedIDs
}

// Spawn registers the object under the given ID and announces it to observers.
//
// Spawning an instance that is already spawned is an error. Spawning a
// different instance under an ID that is already registered is a no-op,
// making duplicate spawn messages idempotent.
func (r *Registry) Spawn(obj *NetworkObject, id common.ObjectID, opts SpawnOptions) error {
	if obj == nil {
		nslog.Panicf("Registry.Spawn: object is nil")
	}
	if id.IsNil() {
		nslog.Panicf("Registry.Spawn: object ID is nil, allocate one first")
	}
	if obj.spawned {
		return errors.Wrapf(ErrAlreadySpawned, "%s", obj)
	}
	if _, ok := r.objects[id]; ok {
		if consts.DEBUG_SPAWN {
			nslog.Debugf("Registry.Spawn: object %d is already registered, ignoring", uint64(id))
		}
		return nil
	}

	if opts.ReadSnapshot && r.stateEnabled {
		if err := obj.ApplyStateSnapshot(opts.StateSnapshot); err != nil {
			return errors.Wrapf(err, "apply state snapshot of object %d", uint64(id))
		}
	}

	obj.ID = id
	obj.OwnerID = opts.OwnerID
	obj.IsPlayerObject = opts.IsPlayerObject
	if obj.sceneState == SceneStateUnknown {
		if opts.IsSceneObject {
			obj.MarkSceneObject()
		} else {
			obj.MarkRuntimeObject()
		}
	}
	if opts.IsSceneObject || opts.DestroyWithScene {
		obj.DestroyWithScene = true
	}
	obj.spawned = true
	r.objects[id] = obj
	r.spawnedIDs.Add(id)

	r.recordOwnership(obj)

	if r.role == RoleServer {
		r.computeObservers(obj)
		r.announceSpawn(obj, opts.Payload)
	}

	if consts.DEBUG_SPAWN {
		nslog.Debugf("Registry.Spawn: %s owner=%s scene=%s", obj, obj.OwnerID, obj.SceneState())
	}

	if obj.I != nil {
		payload := opts.Payload
		nsutils.RunPanicless(func() {
			obj.I.OnSpawned(payload)
		})
	}
	return nil
}

func (r *Registry) recordOwnership(obj *NetworkObject) {
	if obj.OwnerID.IsNil() {
		return
	}
	record := r.clients[obj.OwnerID]
	if record == nil {
		if r.role == RoleServer {
			nslog.Warnf("Registry: owner %s of %s is not a tracked client", obj.OwnerID, obj)
		}
		return
	}
	if obj.IsPlayerObject {
		// a new player object replaces the slot, it is not listed in OwnedObjects
		record.PlayerObject = obj.ID
	} else {
		record.OwnedObjects.Append(obj.ID)
	}
}

// Despawn removes the object with the given ID from the registry.
//
// When destroyInstance is true the prefab's destroy handler (or the object
// delegate) disposes the underlying instance, then bookkeeping completes with
// a second, tolerant pass.
func (r *Registry) Despawn(id common.ObjectID, destroyInstance bool) {
	obj := r.objects[id]
	if obj == nil {
		nslog.Warnf("Registry.Despawn: object %d is not registered", uint64(id))
		return
	}
	r.despawn(obj, destroyInstance)
}

func (r *Registry) despawn(obj *NetworkObject, destroyInstance bool) {
	if obj.spawned {
		r.releaseOwnership(obj)
		obj.spawned = false

		if r.role == RoleServer {
			if r.allocator != nil && r.allocator.RecycleEnabled() {
				r.allocator.Release(obj.ID, time.Now())
			}
			r.announceDespawn(obj)
		}

		if consts.DEBUG_SPAWN {
			nslog.Debugf("Registry.Despawn: %s destroy=%v", obj, destroyInstance)
		}
	}

	// removal is tolerant of the entry being gone already
	delete(r.objects, obj.ID)
	r.spawnedIDs.Remove(obj.ID)

	if destroyInstance {
		if handler, ok := r.prefabs.DestroyHandler(obj.PrefabHash); ok {
			handler(obj)
		} else if obj.I != nil {
			nsutils.RunPanicless(obj.I.OnDespawned)
		}
		// second pass completes bookkeeping after the instance is disposed
		r.despawn(obj, false)
	}
}

func (r *Registry) releaseOwnership(obj *NetworkObject) {
	if obj.OwnerID.IsNil() {
		return
	}
	record := r.clients[obj.OwnerID]
	if record == nil {
		return
	}
	if obj.IsPlayerObject {
		if record.PlayerObject == obj.ID {
			record.PlayerObject = common.NilObjectID
		}
	} else {
		record.OwnedObjects.Remove(obj.ID)
	}
}

func (r *Registry) announceSpawn(obj *NetworkObject, payload []byte) {
	for clientid := range obj.observers {
		pkt := r.makeSpawnPacket(obj, clientid, payload)
		r.queue.Enqueue(outbound.Item{
			Stage:    outbound.StageUpdate,
			MsgType:  proto.MT_SPAWN_OBJECT,
			ObjectID: obj.ID,
			Packet:   pkt,
			Channel:  proto.CHANNEL_INTERNAL,
			Targets:  []common.ClientID{clientid},
		})
	}
}

func (r *Registry) announceDespawn(obj *NetworkObject) {
	targets := r.ConnectedClients()
	if len(targets) == 0 {
		return
	}
	// despawn announcements go out after all updates of the tick
	r.queue.Enqueue(outbound.Item{
		Stage:    outbound.StagePostUpdate,
		MsgType:  proto.MT_DESPAWN_OBJECT,
		ObjectID: obj.ID,
		Packet:   proto.MakeDespawnPacket(obj.ID),
		Channel:  proto.CHANNEL_INTERNAL,
		Targets:  targets,
	})
}

// SpawnPacketFor builds the spawn message of obj for one destination client.
// Used for late joiners that need the already-spawned world replayed.
func (r *Registry) SpawnPacketFor(obj *NetworkObject, clientid common.ClientID) *netutil.Packet {
	return r.makeSpawnPacket(obj, clientid, nil)
}

func (r *Registry) makeSpawnPacket(obj *NetworkObject, clientid common.ClientID, payload []byte) *netutil.Packet {
	msg := &proto.SpawnMsg{
		IsPlayerObject: obj.IsPlayerObject,
		ObjectID:       obj.ID,
		OwnerID:        obj.OwnerID,
		ParentID:       obj.ParentID,
		// unclassified objects replicate as scene objects
		IsSceneObject:    obj.sceneState != SceneStateRuntime,
		PrefabHash:       obj.PrefabHash,
		IncludeTransform: obj.transformFilter == nil || obj.transformFilter(clientid),
		Payload:          payload,
	}
	if msg.IncludeTransform {
		msg.Position = obj.Position
		msg.RotationEuler = obj.RotationEuler
	}
	if r.stateEnabled {
		msg.Snapshot = obj.MarshalState()
	}
	return proto.MakeSpawnPacket(msg, r.stateEnabled)
}
