package netutil

import (
	"net"
	"time"

	"github.com/netsync/netsync/engine/consts"
	"github.com/netsync/netsync/engine/nsioutil"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/netsync/netsync/engine/nsutils"
)

// TCPServerDelegate handles the connections accepted by a TCP server
type TCPServerDelegate interface {
	ServeTCPConnection(net.Conn)
}

// ServeTCPForever serves on the specified address as TCP server, restarting
// after a short delay whenever serving fails
func ServeTCPForever(listenAddr string, delegate TCPServerDelegate) {
	for {
		nsutils.RunPanicless(func() {
			err := ServeTCP(listenAddr, delegate)
			nslog.Errorf("server@%s failed with error: %v, will restart after %s", listenAddr, err, consts.RESTART_TCP_SERVER_INTERVAL)
		})
		time.Sleep(consts.RESTART_TCP_SERVER_INTERVAL)
	}
}

// ServeTCP serves on the specified address as TCP server until accepting fails
func ServeTCP(listenAddr string, delegate TCPServerDelegate) error {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	defer ln.Close()

	nslog.Infof("Listening on TCP: %s ...", listenAddr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if nsioutil.IsTimeoutError(err) {
				continue
			}
			return err
		}

		nslog.Infof("Connection from: %s", conn.RemoteAddr())
		go delegate.ServeTCPConnection(conn)
	}
}
