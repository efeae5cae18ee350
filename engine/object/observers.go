package object

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/nslog"
)

// computeObservers fills the observer set of a freshly spawned object from
// the currently connected clients and the object's visibility predicate.
func (r *Registry) computeObservers(obj *NetworkObject) {
	obj.observers = common.ClientIDSet{}
	for clientid := range r.clients {
		if obj.VisibleTo(clientid) {
			obj.observers.Add(clientid)
		}
	}
}

// AddObserver adds a client to the observer set of a spawned object.
// Used when a late joiner gets the existing world replayed.
func (r *Registry) AddObserver(obj *NetworkObject, clientid common.ClientID) {
	if r.role != RoleServer {
		nslog.Warnf("Registry.AddObserver: not a server registry")
		return
	}
	obj.observers.Add(clientid)
}

// RemoveObserver removes a client from the observer set of an object
func (r *Registry) RemoveObserver(obj *NetworkObject, clientid common.ClientID) {
	obj.observers.Remove(clientid)
}
