package object

import "github.com/netsync/netsync/engine/common"

// ClientRecord tracks the per-client ownership state on the server.
//
// The player object has a dedicated slot and is NOT listed in OwnedObjects;
// spawning a new player object for the same client replaces the slot.
type ClientRecord struct {
	ClientID     common.ClientID
	PlayerObject common.ObjectID // NilObjectID when the client has no player object
	OwnedObjects common.ObjectIDList
}

func newClientRecord(clientid common.ClientID) *ClientRecord {
	return &ClientRecord{
		ClientID: clientid,
	}
}
