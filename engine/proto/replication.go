package proto

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/netutil"
)

// SpawnMsg carries all fields of a spawn message.
//
// Wire order of MT_SPAWN_OBJECT payload after the message type:
//
//	isPlayerObject   bool
//	objectId         uint64
//	ownerId          uint64
//	hasParent        bool
//	parentId         uint64   (only when hasParent)
//	isSceneObject    bool
//	prefabHash       uint32
//	includeTransform bool
//	position         3*float32 (only when includeTransform)
//	rotationEuler    3*float32 (only when includeTransform)
//	hasPayload       bool
//	payloadLength    int32    (only when hasPayload)
//	snapshot         varbytes (only when replicated state is enabled)
//	payload          raw bytes of payloadLength
type SpawnMsg struct {
	IsPlayerObject   bool
	ObjectID         common.ObjectID
	OwnerID          common.ClientID
	ParentID         common.ObjectID // NilObjectID for no parent
	IsSceneObject    bool
	PrefabHash       common.PrefabHash
	IncludeTransform bool
	Position         common.Vector3
	RotationEuler    common.Vector3
	Snapshot         []byte // replicated-state snapshot, nil when state sync is disabled
	Payload          []byte // opaque spawn payload handed to the object delegate
}

// MakeSpawnPacket packs a spawn message into a new packet
func MakeSpawnPacket(msg *SpawnMsg, stateEnabled bool) *netutil.Packet {
	pkt := netutil.NewPacket()
	pkt.AppendUint16(uint16(MT_SPAWN_OBJECT))
	pkt.AppendBool(msg.IsPlayerObject)
	pkt.AppendObjectID(msg.ObjectID)
	pkt.AppendClientID(msg.OwnerID)
	hasParent := !msg.ParentID.IsNil()
	pkt.AppendBool(hasParent)
	if hasParent {
		pkt.AppendObjectID(msg.ParentID)
	}
	pkt.AppendBool(msg.IsSceneObject)
	pkt.AppendPrefabHash(msg.PrefabHash)
	pkt.AppendBool(msg.IncludeTransform)
	if msg.IncludeTransform {
		pkt.AppendVector3(msg.Position)
		pkt.AppendVector3(msg.RotationEuler)
	}
	hasPayload := len(msg.Payload) > 0
	pkt.AppendBool(hasPayload)
	if hasPayload {
		pkt.AppendUint32(uint32(len(msg.Payload)))
	}
	if stateEnabled {
		pkt.AppendVarBytes(msg.Snapshot)
	}
	if hasPayload {
		pkt.AppendBytes(msg.Payload)
	}
	return pkt
}

// ReadSpawnMsg unpacks a spawn message from a packet, message type already consumed
func ReadSpawnMsg(pkt *netutil.Packet, stateEnabled bool) *SpawnMsg {
	msg := &SpawnMsg{}
	msg.IsPlayerObject = pkt.ReadBool()
	msg.ObjectID = pkt.ReadObjectID()
	msg.OwnerID = pkt.ReadClientID()
	if pkt.ReadBool() {
		msg.ParentID = pkt.ReadObjectID()
	}
	msg.IsSceneObject = pkt.ReadBool()
	msg.PrefabHash = pkt.ReadPrefabHash()
	msg.IncludeTransform = pkt.ReadBool()
	if msg.IncludeTransform {
		msg.Position = pkt.ReadVector3()
		msg.RotationEuler = pkt.ReadVector3()
	}
	hasPayload := pkt.ReadBool()
	payloadLength := uint32(0)
	if hasPayload {
		payloadLength = pkt.ReadUint32()
	}
	if stateEnabled {
		snapshot := pkt.ReadVarBytes()
		if len(snapshot) > 0 {
			msg.Snapshot = append([]byte(nil), snapshot...)
		}
	}
	if hasPayload {
		msg.Payload = append([]byte(nil), pkt.ReadBytes(payloadLength)...)
	}
	return msg
}

// MakeSetClientIDPacket packs a MT_SET_CLIENT_ID message
func MakeSetClientIDPacket(clientid common.ClientID) *netutil.Packet {
	pkt := netutil.NewPacket()
	pkt.AppendUint16(uint16(MT_SET_CLIENT_ID))
	pkt.AppendClientID(clientid)
	return pkt
}

// MakeHeartbeatPacket packs a MT_HEARTBEAT message
func MakeHeartbeatPacket() *netutil.Packet {
	pkt := netutil.NewPacket()
	pkt.AppendUint16(uint16(MT_HEARTBEAT))
	return pkt
}

// MakeDespawnPacket packs a MT_DESPAWN_OBJECT message
func MakeDespawnPacket(id common.ObjectID) *netutil.Packet {
	pkt := netutil.NewPacket()
	pkt.AppendUint16(uint16(MT_DESPAWN_OBJECT))
	pkt.AppendObjectID(id)
	return pkt
}

// ReadDespawnMsg unpacks a MT_DESPAWN_OBJECT message, message type already consumed
func ReadDespawnMsg(pkt *netutil.Packet) common.ObjectID {
	return pkt.ReadObjectID()
}

// MakeChangeOwnershipPacket packs a MT_CHANGE_OWNERSHIP message
func MakeChangeOwnershipPacket(id common.ObjectID, newOwner common.ClientID) *netutil.Packet {
	pkt := netutil.NewPacket()
	pkt.AppendUint16(uint16(MT_CHANGE_OWNERSHIP))
	pkt.AppendObjectID(id)
	pkt.AppendClientID(newOwner)
	return pkt
}

// ReadChangeOwnershipMsg unpacks a MT_CHANGE_OWNERSHIP message, message type already consumed
func ReadChangeOwnershipMsg(pkt *netutil.Packet) (common.ObjectID, common.ClientID) {
	id := pkt.ReadObjectID()
	newOwner := pkt.ReadClientID()
	return id, newOwner
}
