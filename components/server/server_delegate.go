package server

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/nslog"
)

// IServerDelegate is the interface for customizing server behavior
type IServerDelegate interface {
	// OnServerReady is called when the server is listening and scene objects are spawned
	OnServerReady()
	// OnClientConnected is called after the client got its ID and the world replayed
	OnClientConnected(clientid common.ClientID)
	// OnClientDisconnected is called after the client's objects are released
	OnClientDisconnected(clientid common.ClientID)
}

// ServerDelegate is the default IServerDelegate implementation
type ServerDelegate struct {
}

// OnServerReady is called when the server is ready
func (sd *ServerDelegate) OnServerReady() {
	nslog.Infof("server is ready.")
}

// OnClientConnected is called when a client connects
func (sd *ServerDelegate) OnClientConnected(clientid common.ClientID) {
	nslog.Infof("client %s connected.", clientid)
}

// OnClientDisconnected is called when a client disconnects
func (sd *ServerDelegate) OnClientDisconnected(clientid common.ClientID) {
	nslog.Infof("client %s disconnected.", clientid)
}
