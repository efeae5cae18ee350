package netutil

import (
	"github.com/vmihailenco/msgpack"
)

// MessagePackMsgPacker packs and unpacks replicated-state snapshots in MessagePack format
type MessagePackMsgPacker struct{}

// MSG_PACKER is the packer used for replicated-state snapshots
var MSG_PACKER MessagePackMsgPacker

// PackMsg packs msg in MessagePack format, appending to buf
func (mp MessagePackMsgPacker) PackMsg(msg interface{}, buf []byte) ([]byte, error) {
	b, err := msgpack.Marshal(msg)
	if err != nil {
		return buf, err
	}
	return append(buf, b...), nil
}

// UnpackMsg unpacks bytes in MessagePack format into msg
func (mp MessagePackMsgPacker) UnpackMsg(data []byte, msg interface{}) error {
	return msgpack.Unmarshal(data, msg)
}
