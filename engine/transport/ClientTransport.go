package transport

import (
	"fmt"

	"github.com/netsync/netsync/engine/config"
	"github.com/netsync/netsync/engine/consts"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/nsioutil"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/pkg/errors"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	"github.com/xiaonanln/netconnutil"
	"github.com/xiaonanln/pktconn"
)

// ClientTransport is the client-side connection to the server
type ClientTransport struct {
	pc     *netutil.PacketConnection
	events chan Event
	closed xnsyncutil.AtomicBool
}

// DialServer connects to the server configured in the client config and
// starts the receive goroutine
func DialServer(cfg *config.ClientConfig) (*ClientTransport, error) {
	_conn, err := netutil.ConnectTCP(cfg.ServerIp, cfg.ServerPort)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s:%d failed", cfg.ServerIp, cfg.ServerPort)
	}
	nslog.Infof("Connected to server %s", _conn.RemoteAddr())

	_conn = netconnutil.NewNoTempErrorConn(_conn)
	var conn netutil.Connection = netutil.NetConn{Conn: _conn}
	if cfg.CompressConnection {
		conn = netconnutil.NewSnappyConn(conn)
	}
	conn = netconnutil.NewBufferedConn(conn, consts.BUFFERED_READ_BUFFSIZE, consts.BUFFERED_WRITE_BUFFSIZE)

	ct := &ClientTransport{
		events: make(chan Event, consts.TRANSPORT_EVENT_QUEUE_SIZE),
	}
	ct.pc = netutil.NewPacketConnection(conn, ct)
	go ct.recvRoutine()
	return ct, nil
}

func (ct *ClientTransport) String() string {
	return fmt.Sprintf("ClientTransport<%s>", ct.pc.RemoteAddr())
}

func (ct *ClientTransport) recvRoutine() {
	recvChan := make(chan *pktconn.Packet, consts.TRANSPORT_EVENT_QUEUE_SIZE)
	go func() {
		if err := ct.pc.RecvChan(recvChan); err != nil && !nsioutil.IsConnectionError(err) {
			nslog.Errorf("%s recv error: %s", ct, err)
		}
		close(recvChan)
	}()

	for pkt := range recvChan {
		ct.events <- Event{Type: EventData, Packet: (*netutil.Packet)(pkt)}
	}

	ct.Close()
	ct.events <- Event{Type: EventDisconnect}
}

// Poll returns the next pending event, or an EventNothing event
func (ct *ClientTransport) Poll() Event {
	select {
	case ev := <-ct.events:
		return ev
	default:
		return Event{Type: EventNothing}
	}
}

// Send sends a packet to the server
func (ct *ClientTransport) Send(packet *netutil.Packet) {
	ct.pc.SendPacket(packet)
}

// Close closes the connection
func (ct *ClientTransport) Close() {
	if ct.closed.Load() {
		return
	}
	ct.closed.Store(true)
	ct.pc.Close()
}
