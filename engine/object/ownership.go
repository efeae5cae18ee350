package object

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/outbound"
	"github.com/netsync/netsync/engine/proto"
	"github.com/pkg/errors"
)

// ChangeOwnership assigns the object to a new owner and announces the change.
//
// The object is removed from the previous owner's owned-object list when that
// owner is tracked, then appended to the new owner's list without checking
// for an existing entry. Player objects keep their slot and additionally get
// listed, so despawning them later can leave the list entry behind.
func (r *Registry) ChangeOwnership(obj *NetworkObject, newOwner common.ClientID) error {
	if r.role != RoleServer {
		return errors.Wrapf(ErrNotServer, "ChangeOwnership %s", obj)
	}
	if !obj.spawned {
		return errors.Wrapf(ErrNotSpawned, "ChangeOwnership %s", obj)
	}

	r.applyOwnership(obj, newOwner)
	r.announceOwnership(obj, newOwner)
	return nil
}

// RemoveOwnership returns the object to server ownership and announces it
func (r *Registry) RemoveOwnership(obj *NetworkObject) error {
	if r.role != RoleServer {
		return errors.Wrapf(ErrNotServer, "RemoveOwnership %s", obj)
	}
	if !obj.spawned {
		return errors.Wrapf(ErrNotSpawned, "RemoveOwnership %s", obj)
	}

	r.applyOwnership(obj, common.NilClientID)
	r.announceOwnership(obj, common.NilClientID)
	return nil
}

// ApplyOwnershipLocal mirrors an ownership change without authority checks or
// announcements. Used by clients handling MT_CHANGE_OWNERSHIP.
func (r *Registry) ApplyOwnershipLocal(obj *NetworkObject, newOwner common.ClientID) {
	r.applyOwnership(obj, newOwner)
}

func (r *Registry) applyOwnership(obj *NetworkObject, newOwner common.ClientID) {
	if record := r.clients[obj.OwnerID]; record != nil {
		record.OwnedObjects.Remove(obj.ID)
	}

	obj.OwnerID = newOwner

	if newOwner.IsNil() {
		return
	}
	if record := r.clients[newOwner]; record != nil {
		record.OwnedObjects.Append(obj.ID)
	}
}

func (r *Registry) announceOwnership(obj *NetworkObject, newOwner common.ClientID) {
	targets := r.ConnectedClients()
	if len(targets) == 0 {
		return
	}
	r.queue.Enqueue(outbound.Item{
		Stage:    outbound.StageUpdate,
		MsgType:  proto.MT_CHANGE_OWNERSHIP,
		ObjectID: obj.ID,
		Packet:   proto.MakeChangeOwnershipPacket(obj.ID, newOwner),
		Channel:  proto.CHANNEL_INTERNAL,
		Targets:  targets,
	})
}
