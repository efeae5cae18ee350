package netutil

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/xiaonanln/pktconn"
)

// Packet is a binary replication message. Packets are pooled and framed by
// pktconn; this type adds the accessors for the field types that appear on
// the replication wire.
type Packet pktconn.Packet

// NewPacket allocates a new packet from the packet pool
func NewPacket() *Packet {
	return (*Packet)(pktconn.NewPacket())
}

// AddRefCount adds reference count of packet
func (p *Packet) AddRefCount(add int64) {
	for i := int64(0); i < add; i++ {
		(*pktconn.Packet)(p).Retain()
	}
}

// Release releases the packet to the packet pool
func (p *Packet) Release() {
	(*pktconn.Packet)(p).Release()
}

// Payload returns the total payload of packet
func (p *Packet) Payload() []byte {
	return (*pktconn.Packet)(p).Payload()
}

// HasUnreadPayload returns if all payload is read
func (p *Packet) HasUnreadPayload() bool {
	return (*pktconn.Packet)(p).HasUnreadPayload()
}

// PayloadCap returns the current payload capacity
func (p *Packet) PayloadCap() uint32 {
	return (*pktconn.Packet)(p).PayloadCap()
}

// GetPayloadLen returns the payload length
func (p *Packet) GetPayloadLen() uint32 {
	return (*pktconn.Packet)(p).GetPayloadLen()
}

// AppendByte appends one byte to the end of payload
func (p *Packet) AppendByte(b byte) {
	(*pktconn.Packet)(p).WriteOneByte(b)
}

// ReadOneByte reads one byte from the beginning of unread payload
func (p *Packet) ReadOneByte() byte {
	return (*pktconn.Packet)(p).ReadOneByte()
}

// AppendBool appends one byte 1/0 to the end of payload
func (p *Packet) AppendBool(b bool) {
	(*pktconn.Packet)(p).WriteBool(b)
}

// ReadBool reads one byte 1/0 from the beginning of unread payload
func (p *Packet) ReadBool() bool {
	return (*pktconn.Packet)(p).ReadBool()
}

// AppendUint16 appends one uint16 to the end of payload
func (p *Packet) AppendUint16(v uint16) {
	(*pktconn.Packet)(p).WriteUint16(v)
}

// ReadUint16 reads one uint16 from the beginning of unread payload
func (p *Packet) ReadUint16() uint16 {
	return (*pktconn.Packet)(p).ReadUint16()
}

// AppendUint32 appends one uint32 to the end of payload
func (p *Packet) AppendUint32(v uint32) {
	(*pktconn.Packet)(p).WriteUint32(v)
}

// ReadUint32 reads one uint32 from the beginning of unread payload
func (p *Packet) ReadUint32() uint32 {
	return (*pktconn.Packet)(p).ReadUint32()
}

// AppendUint64 appends one uint64 to the end of payload
func (p *Packet) AppendUint64(v uint64) {
	(*pktconn.Packet)(p).WriteUint64(v)
}

// ReadUint64 reads one uint64 from the beginning of unread payload
func (p *Packet) ReadUint64() uint64 {
	return (*pktconn.Packet)(p).ReadUint64()
}

// AppendFloat32 appends one float32 to the end of payload
func (p *Packet) AppendFloat32(f float32) {
	(*pktconn.Packet)(p).WriteFloat32(f)
}

// ReadFloat32 reads one float32 from the beginning of unread payload
func (p *Packet) ReadFloat32() float32 {
	return (*pktconn.Packet)(p).ReadFloat32()
}

// AppendBytes appends slice of bytes to the end of payload
func (p *Packet) AppendBytes(v []byte) {
	(*pktconn.Packet)(p).WriteBytes(v)
}

// ReadBytes reads bytes from the beginning of unread payload
func (p *Packet) ReadBytes(size uint32) []byte {
	return (*pktconn.Packet)(p).ReadBytes(int(size))
}

// AppendVarStr appends a varsize string to the end of payload
func (p *Packet) AppendVarStr(s string) {
	(*pktconn.Packet)(p).WriteVarStrI(s)
}

// ReadVarStr reads a varsize string from the beginning of unread payload
func (p *Packet) ReadVarStr() string {
	return (*pktconn.Packet)(p).ReadVarStrI()
}

// AppendVarBytes appends varsize bytes to the end of payload
func (p *Packet) AppendVarBytes(v []byte) {
	(*pktconn.Packet)(p).WriteVarBytesI(v)
}

// ReadVarBytes reads a varsize slice of bytes from the beginning of unread payload
func (p *Packet) ReadVarBytes() []byte {
	return (*pktconn.Packet)(p).ReadVarBytesI()
}

// AppendObjectID appends one object ID to the end of payload
func (p *Packet) AppendObjectID(id common.ObjectID) {
	p.AppendUint64(uint64(id))
}

// ReadObjectID reads one object ID from the beginning of unread payload
func (p *Packet) ReadObjectID() common.ObjectID {
	return common.ObjectID(p.ReadUint64())
}

// AppendClientID appends one client ID to the end of payload
func (p *Packet) AppendClientID(id common.ClientID) {
	p.AppendUint64(uint64(id))
}

// ReadClientID reads one client ID from the beginning of unread payload
func (p *Packet) ReadClientID() common.ClientID {
	return common.ClientID(p.ReadUint64())
}

// AppendPrefabHash appends one prefab hash to the end of payload
func (p *Packet) AppendPrefabHash(h common.PrefabHash) {
	p.AppendUint32(uint32(h))
}

// ReadPrefabHash reads one prefab hash from the beginning of unread payload
func (p *Packet) ReadPrefabHash() common.PrefabHash {
	return common.PrefabHash(p.ReadUint32())
}

// AppendVector3 appends one Vector3 to the end of payload
func (p *Packet) AppendVector3(v common.Vector3) {
	p.AppendFloat32(v.X)
	p.AppendFloat32(v.Y)
	p.AppendFloat32(v.Z)
}

// ReadVector3 reads one Vector3 from the beginning of unread payload
func (p *Packet) ReadVector3() (v common.Vector3) {
	v.X = p.ReadFloat32()
	v.Y = p.ReadFloat32()
	v.Z = p.ReadFloat32()
	return
}
