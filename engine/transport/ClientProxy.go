package transport

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/consts"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/nsioutil"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/xiaonanln/netconnutil"
	"github.com/xiaonanln/pktconn"
)

// ClientProxy is a client connection managed by the server transport
type ClientProxy struct {
	*netutil.PacketConnection
	clientid      common.ClientID
	heartbeatTime int64 // unix nano, updated atomically
}

func newClientProxy(_conn net.Conn, clientid common.ClientID, compress bool) *ClientProxy {
	_conn = netconnutil.NewNoTempErrorConn(_conn)
	var conn netutil.Connection = netutil.NetConn{Conn: _conn}
	if compress {
		conn = netconnutil.NewSnappyConn(conn)
	}
	conn = netconnutil.NewBufferedConn(conn, consts.BUFFERED_READ_BUFFSIZE, consts.BUFFERED_WRITE_BUFFSIZE)
	cp := &ClientProxy{
		clientid: clientid,
	}
	cp.PacketConnection = netutil.NewPacketConnection(conn, cp)
	cp.touchHeartbeat()
	return cp
}

// ClientID returns the client ID assigned to this connection
func (cp *ClientProxy) ClientID() common.ClientID {
	return cp.clientid
}

func (cp *ClientProxy) String() string {
	return fmt.Sprintf("ClientProxy<%s@%s>", cp.clientid, cp.RemoteAddr())
}

func (cp *ClientProxy) touchHeartbeat() {
	atomic.StoreInt64(&cp.heartbeatTime, time.Now().UnixNano())
}

func (cp *ClientProxy) lastHeartbeat() time.Time {
	return time.Unix(0, atomic.LoadInt64(&cp.heartbeatTime))
}

func (cp *ClientProxy) serve(st *ServerTransport) {
	defer func() {
		cp.Close()
		st.onClientProxyClose(cp)

		if err := recover(); err != nil && !nsioutil.IsConnectionError(err) {
			nslog.TraceError("%s error: %s", cp, err)
		} else {
			nslog.Debugf("%s disconnected", cp)
		}
	}()

	recvChan := make(chan *pktconn.Packet, consts.TRANSPORT_EVENT_QUEUE_SIZE)
	go func() {
		if err := cp.RecvChan(recvChan); err != nil && !nsioutil.IsConnectionError(err) {
			nslog.Errorf("%s recv error: %s", cp, err)
		}
		close(recvChan)
	}()

	for pkt := range recvChan {
		st.pushEvent(Event{
			Type:     EventData,
			ClientID: cp.clientid,
			Packet:   (*netutil.Packet)(pkt),
		})
	}
}
