package netutil

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/bmizerany/assert"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/nsioutil"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/xiaonanln/pktconn"
)

type testEchoTcpServer struct {
}

func (ts *testEchoTcpServer) ServeTCPConnection(conn net.Conn) {
	buf := make([]byte, 1024*1024, 1024*1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			nsioutil.WriteAll(conn, buf[:n])
		}

		if err != nil {
			if nsioutil.IsTimeoutError(err) {
				continue
			} else {
				nslog.Errorf("read error: %s", err.Error())
				break
			}
		}
	}
}

const PORT = 14572

func init() {
	go func() {
		ServeTCP(fmt.Sprintf("localhost:%d", PORT), &testEchoTcpServer{})
	}()
	time.Sleep(time.Millisecond * 200)
}

func TestPacketAppendRead(t *testing.T) {
	pkt := NewPacket()
	pkt.AppendBool(true)
	pkt.AppendByte(0x7f)
	pkt.AppendUint16(0xbeef)
	pkt.AppendUint32(0xdeadbeef)
	pkt.AppendUint64(0xdeadbeefcafebabe)
	pkt.AppendFloat32(3.25)
	pkt.AppendVarStr("netsync")
	pkt.AppendObjectID(common.ObjectID(12345))
	pkt.AppendClientID(common.ClientID(678))
	pkt.AppendPrefabHash(common.PrefabHash(0x11223344))
	pkt.AppendVector3(common.Vector3{X: 1, Y: -2, Z: 3.5})

	assert.Equal(t, true, pkt.ReadBool())
	assert.Equal(t, byte(0x7f), pkt.ReadOneByte())
	assert.Equal(t, uint16(0xbeef), pkt.ReadUint16())
	assert.Equal(t, uint32(0xdeadbeef), pkt.ReadUint32())
	assert.Equal(t, uint64(0xdeadbeefcafebabe), pkt.ReadUint64())
	assert.Equal(t, float32(3.25), pkt.ReadFloat32())
	assert.Equal(t, "netsync", pkt.ReadVarStr())
	assert.Equal(t, common.ObjectID(12345), pkt.ReadObjectID())
	assert.Equal(t, common.ClientID(678), pkt.ReadClientID())
	assert.Equal(t, common.PrefabHash(0x11223344), pkt.ReadPrefabHash())
	assert.Equal(t, common.Vector3{X: 1, Y: -2, Z: 3.5}, pkt.ReadVector3())
	assert.T(t, !pkt.HasUnreadPayload())
	pkt.Release()
}

func TestPacketGrow(t *testing.T) {
	pkt := NewPacket()
	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = byte(i)
	}
	pkt.AppendVarBytes(payload)
	assert.T(t, pkt.PayloadCap() >= pkt.GetPayloadLen())
	read := pkt.ReadVarBytes()
	assert.Equal(t, payload, read)
	pkt.Release()
}

func TestPacketConnectionEcho(t *testing.T) {
	conn, err := ConnectTCP("localhost", PORT)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	pc := NewPacketConnection(NetConn{conn}, nil)
	defer pc.Close()

	recvChan := make(chan *pktconn.Packet, 1)
	go pc.RecvChan(recvChan)

	pkt := pc.NewPacket()
	pkt.AppendUint16(42)
	pkt.AppendVarStr("hello")
	pc.SendPacket(pkt)
	pkt.Release()

	select {
	case _recv := <-recvChan:
		recv := (*Packet)(_recv)
		assert.Equal(t, uint16(42), recv.ReadUint16())
		assert.Equal(t, "hello", recv.ReadVarStr())
		recv.Release()
	case <-time.After(time.Second * 5):
		t.Fatalf("echo packet not received")
	}
}
