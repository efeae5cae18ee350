package transport

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netsync/netsync/engine/binutil"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/config"
	"github.com/netsync/netsync/engine/consts"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/netsync/netsync/engine/nsutils"
	"github.com/netsync/netsync/engine/proto"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	"github.com/xtaci/kcp-go"
	"golang.org/x/net/websocket"
)

// ServerTransport accepts client connections over TCP, KCP and websocket and
// multiplexes them into one event stream
type ServerTransport struct {
	listenAddr        string
	cfg               *config.ServerConfig
	clientProxies     map[common.ClientID]*ClientProxy
	clientProxiesLock sync.RWMutex
	events            chan Event
	nextClientID      uint64
	terminating       xnsyncutil.AtomicBool
}

// NewServerTransport creates a ServerTransport from the server config
func NewServerTransport(cfg *config.ServerConfig) *ServerTransport {
	return &ServerTransport{
		cfg:           cfg,
		clientProxies: map[common.ClientID]*ClientProxy{},
		events:        make(chan Event, consts.TRANSPORT_EVENT_QUEUE_SIZE),
	}
}

func (st *ServerTransport) String() string {
	return fmt.Sprintf("ServerTransport<%s>", st.listenAddr)
}

// Listen starts accepting connections on all configured listeners
func (st *ServerTransport) Listen() {
	nslog.Infof("Compress connection: %v", st.cfg.CompressConnection)
	st.listenAddr = fmt.Sprintf("%s:%d", st.cfg.Ip, st.cfg.Port)
	go netutil.ServeTCPForever(st.listenAddr, st)
	go st.serveKCP(st.listenAddr)
	binutil.SetupHTTPServer(st.cfg.HTTPIp, st.cfg.HTTPPort, st.handleWebSocketConn)
}

// ServeTCPConnection handles TCP connections from clients
func (st *ServerTransport) ServeTCPConnection(conn net.Conn) {
	tcpConn := conn.(*net.TCPConn)
	tcpConn.SetWriteBuffer(consts.CLIENT_PROXY_WRITE_BUFFER_SIZE)
	tcpConn.SetReadBuffer(consts.CLIENT_PROXY_READ_BUFFER_SIZE)
	tcpConn.SetNoDelay(consts.CLIENT_PROXY_SET_TCP_NO_DELAY)

	st.handleClientConnection(conn)
}

func (st *ServerTransport) serveKCP(addr string) {
	kcpListener, err := kcp.ListenWithOptions(addr, nil, 10, 3)
	if err != nil {
		nslog.Panic(err)
	}

	nslog.Infof("Listening on KCP: %s ...", addr)

	nsutils.RepeatUntilPanicless(func() {
		for {
			conn, err := kcpListener.AcceptKCP()
			if err != nil {
				nslog.Panic(err)
			}
			go st.handleKCPConn(conn)
		}
	})
}

func (st *ServerTransport) handleKCPConn(conn *kcp.UDPSession) {
	nslog.Infof("KCP connection from %s", conn.RemoteAddr())

	conn.SetReadBuffer(consts.CLIENT_PROXY_READ_BUFFER_SIZE)
	conn.SetWriteBuffer(consts.CLIENT_PROXY_WRITE_BUFFER_SIZE)
	// turn on turbo mode according to https://github.com/skywind3000/kcp/blob/master/README.en.md#protocol-configuration
	conn.SetStreamMode(true)
	conn.SetWriteDelay(false)
	conn.SetNoDelay(1, 10, 2, 1)
	st.handleClientConnection(conn)
}

func (st *ServerTransport) handleWebSocketConn(wsConn *websocket.Conn) {
	nslog.Debugf("WebSocket Connection: %s", wsConn.RemoteAddr())
	wsConn.PayloadType = websocket.BinaryFrame
	st.handleClientConnection(wsConn)
}

func (st *ServerTransport) handleClientConnection(netconn net.Conn) {
	if st.terminating.Load() {
		// server terminating, not accepting more connections
		netconn.Close()
		return
	}

	clientid := common.ClientID(atomic.AddUint64(&st.nextClientID, 1))
	cp := newClientProxy(netconn, clientid, st.cfg.CompressConnection)

	st.clientProxiesLock.Lock()
	st.clientProxies[clientid] = cp
	st.clientProxiesLock.Unlock()

	if consts.DEBUG_CLIENTS {
		nslog.Debugf("%s: client %s connected", st, cp)
	}
	st.pushEvent(Event{Type: EventConnect, ClientID: clientid})
	cp.serve(st)
}

func (st *ServerTransport) onClientProxyClose(cp *ClientProxy) {
	st.clientProxiesLock.Lock()
	_, ok := st.clientProxies[cp.clientid]
	delete(st.clientProxies, cp.clientid)
	st.clientProxiesLock.Unlock()
	if !ok {
		return // already closed
	}

	if consts.DEBUG_CLIENTS {
		nslog.Debugf("%s: client %s disconnected", st, cp)
	}
	st.pushEvent(Event{Type: EventDisconnect, ClientID: cp.clientid})
}

func (st *ServerTransport) pushEvent(ev Event) {
	st.events <- ev
}

// Poll returns the next pending event, or an EventNothing event.
// Poll never blocks; it is called from the service tick loop.
func (st *ServerTransport) Poll() Event {
	select {
	case ev := <-st.events:
		return ev
	default:
		return Event{Type: EventNothing}
	}
}

// Send queues a packet to one client. The packet is dropped silently when the
// client is gone; channel selection is kept for protocol parity, all traffic
// currently rides the reliable stream.
func (st *ServerTransport) Send(clientid common.ClientID, packet *netutil.Packet, channel proto.Channel) {
	st.clientProxiesLock.RLock()
	cp := st.clientProxies[clientid]
	st.clientProxiesLock.RUnlock()

	if cp == nil {
		if consts.DEBUG_PACKETS {
			nslog.Debugf("%s.Send: client %s is gone, dropping packet", st, clientid)
		}
		return
	}
	cp.SendPacket(packet)
}

// OnHeartbeat records a heartbeat from the client
func (st *ServerTransport) OnHeartbeat(clientid common.ClientID) {
	st.clientProxiesLock.RLock()
	cp := st.clientProxies[clientid]
	st.clientProxiesLock.RUnlock()
	if cp != nil {
		cp.touchHeartbeat()
	}
}

// CheckHeartbeats closes clients whose last heartbeat is older than timeout
func (st *ServerTransport) CheckHeartbeats(timeout time.Duration) {
	deadline := time.Now().Add(-timeout)

	st.clientProxiesLock.RLock()
	var stale []*ClientProxy
	for _, cp := range st.clientProxies {
		if cp.lastHeartbeat().Before(deadline) {
			stale = append(stale, cp)
		}
	}
	st.clientProxiesLock.RUnlock()

	for _, cp := range stale {
		nslog.Infof("%s: client %s heartbeat timeout, closing", st, cp)
		cp.Close()
	}
}

// CloseClient closes the connection of one client
func (st *ServerTransport) CloseClient(clientid common.ClientID) {
	st.clientProxiesLock.RLock()
	cp := st.clientProxies[clientid]
	st.clientProxiesLock.RUnlock()
	if cp != nil {
		cp.Close()
	}
}

// ClientCount returns the number of connected clients
func (st *ServerTransport) ClientCount() int {
	st.clientProxiesLock.RLock()
	defer st.clientProxiesLock.RUnlock()
	return len(st.clientProxies)
}

// Terminate stops accepting connections and closes all clients
func (st *ServerTransport) Terminate() {
	st.terminating.Store(true)

	st.clientProxiesLock.RLock()
	cps := make([]*ClientProxy, 0, len(st.clientProxies))
	for _, cp := range st.clientProxies {
		cps = append(cps, cp)
	}
	st.clientProxiesLock.RUnlock()

	for _, cp := range cps {
		cp.Close()
	}
}
