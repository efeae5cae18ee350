package outbound

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/proto"
)

func TestFlushStageOrder(t *testing.T) {
	var sent []*netutil.Packet
	q := NewQueue(func(clientid common.ClientID, packet *netutil.Packet, channel proto.Channel) {
		sent = append(sent, packet)
	})

	// despawn staged before the spawn, but post-update must still go last
	despawnPkt := proto.MakeDespawnPacket(1)
	q.Enqueue(Item{
		Stage:   StagePostUpdate,
		MsgType: proto.MT_DESPAWN_OBJECT,
		Packet:  despawnPkt,
		Targets: []common.ClientID{1},
	})
	spawnPkt := proto.MakeSpawnPacket(&proto.SpawnMsg{ObjectID: 2}, false)
	q.Enqueue(Item{
		Stage:   StageUpdate,
		MsgType: proto.MT_SPAWN_OBJECT,
		Packet:  spawnPkt,
		Targets: []common.ClientID{1},
	})

	assert.Equal(t, 2, q.Len())
	q.Flush()
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 2, len(sent))
	assert.T(t, sent[0] == spawnPkt)
	assert.T(t, sent[1] == despawnPkt)
}

func TestFlushFanOut(t *testing.T) {
	var targets []common.ClientID
	q := NewQueue(func(clientid common.ClientID, packet *netutil.Packet, channel proto.Channel) {
		targets = append(targets, clientid)
	})

	pkt := proto.MakeDespawnPacket(9)
	q.Enqueue(Item{
		Stage:   StagePostUpdate,
		MsgType: proto.MT_DESPAWN_OBJECT,
		Packet:  pkt,
		Targets: []common.ClientID{3, 1, 2},
	})
	q.Flush()
	assert.Equal(t, []common.ClientID{3, 1, 2}, targets)
}

func TestFlushReenqueueFromSend(t *testing.T) {
	var sent []proto.MsgType
	var q *Queue
	q = NewQueue(func(clientid common.ClientID, packet *netutil.Packet, channel proto.Channel) {
		sent = append(sent, proto.MT_SPAWN_OBJECT)
		if len(sent) == 1 {
			// announcing may stage follow-up messages for the next tick
			q.Enqueue(Item{
				Stage:   StageUpdate,
				MsgType: proto.MT_SPAWN_OBJECT,
				Packet:  proto.MakeSpawnPacket(&proto.SpawnMsg{ObjectID: 8}, false),
				Targets: []common.ClientID{1},
			})
		}
	})

	q.Enqueue(Item{
		Stage:   StageUpdate,
		MsgType: proto.MT_SPAWN_OBJECT,
		Packet:  proto.MakeSpawnPacket(&proto.SpawnMsg{ObjectID: 7}, false),
		Targets: []common.ClientID{1},
	})

	q.Flush()
	assert.Equal(t, 1, len(sent))
	assert.Equal(t, 1, q.Len())

	q.Flush()
	assert.Equal(t, 2, len(sent))
	assert.Equal(t, 0, q.Len())
}

func TestFlushEmpty(t *testing.T) {
	q := NewQueue(func(clientid common.ClientID, packet *netutil.Packet, channel proto.Channel) {
		t.Errorf("nothing should be sent")
	})
	q.Flush()
}
