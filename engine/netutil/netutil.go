package netutil

import (
	"fmt"
	"net"

	"github.com/xiaonanln/netconnutil"
)

// Connection is the interface for connections that PacketConnection runs upon
type Connection interface {
	netconnutil.FlushableConn
}

// NetConn wraps a net.Conn as a Connection with no-op Flush
type NetConn struct {
	net.Conn
}

// Flush flushes the connection, which is a no-op for raw net.Conn
func (n NetConn) Flush() error {
	return nil
}

// ConnectTCP connects to host:port in TCP
func ConnectTCP(host string, port int) (net.Conn, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.Dial("tcp", addr)
	return conn, err
}
