package client

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/nslog"
)

// IClientDelegate is the interface for customizing client behavior
type IClientDelegate interface {
	// OnConnected is called when the server assigned this client its ID
	OnConnected(clientid common.ClientID)
	// OnDisconnected is called when the server connection is lost
	OnDisconnected()
}

// ClientDelegate is the default IClientDelegate implementation
type ClientDelegate struct {
}

// OnConnected is called when the client is connected
func (cd *ClientDelegate) OnConnected(clientid common.ClientID) {
	nslog.Infof("connected as client %s.", clientid)
}

// OnDisconnected is called when the client is disconnected
func (cd *ClientDelegate) OnDisconnected() {
	nslog.Infof("disconnected from server.")
}
