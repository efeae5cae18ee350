package client

import (
	"fmt"
	"time"

	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/config"
	"github.com/netsync/netsync/engine/consts"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/netsync/netsync/engine/object"
	"github.com/netsync/netsync/engine/opmon"
	"github.com/netsync/netsync/engine/post"
	"github.com/netsync/netsync/engine/proto"
	"github.com/netsync/netsync/engine/scene"
	"github.com/netsync/netsync/engine/transport"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	"github.com/xiaonanln/goTimer"
)

// ClientService mirrors the server registry over one connection
type ClientService struct {
	config      *config.ClientConfig
	repConfig   *config.ReplicationConfig
	delegate    IClientDelegate
	transport   *transport.ClientTransport
	registry    *object.Registry
	prefabs     *object.PrefabRegistry
	softSync    *scene.SoftSyncHandler
	terminating xnsyncutil.AtomicBool
	terminated  *xnsyncutil.OneTimeCond
}

func newClientService(delegate IClientDelegate) *ClientService {
	cfg := config.GetClient()
	repCfg := config.GetReplication()

	cs := &ClientService{
		config:     cfg,
		repConfig:  repCfg,
		delegate:   delegate,
		prefabs:    object.NewPrefabRegistry(),
		terminated: xnsyncutil.NewOneTimeCond(),
	}
	cs.registry = object.NewRegistry(object.RoleClient, nil, cs.prefabs, nil, repCfg.ReplicatedState)
	cs.softSync = scene.NewSoftSyncHandler(cs.registry)
	return cs
}

func (cs *ClientService) String() string {
	return fmt.Sprintf("ClientService<%s:%d>", cs.config.ServerIp, cs.config.ServerPort)
}

// Registry returns the object registry of the client
func (cs *ClientService) Registry() *object.Registry {
	return cs.registry
}

// Prefabs returns the prefab registry of the client
func (cs *ClientService) Prefabs() *object.PrefabRegistry {
	return cs.prefabs
}

// SoftSync returns the scene soft-sync handler of the client
func (cs *ClientService) SoftSync() *scene.SoftSyncHandler {
	return cs.softSync
}

func (cs *ClientService) run() {
	nslog.Infof("Read client config: \n%s\n", config.DumpPretty(cs.config))

	if cs.repConfig.EnableSceneSoftSync {
		cs.softSync.CollectPending()
	}

	ct, err := transport.DialServer(cs.config)
	if err != nil {
		nslog.Fatalf("%s: %v", cs, err)
	}
	cs.transport = ct

	ticker := time.Tick(consts.SERVICE_TICK_INTERVAL)
	// here begins the main loop of the client service
	for {
		<-ticker
		for {
			ev := cs.transport.Poll()
			if ev.Type == transport.EventNothing {
				break
			}
			cs.handleEvent(ev)
		}

		timer.Tick()
		post.Tick()

		if cs.terminating.Load() {
			break
		}
	}

	cs.doTerminate()
}

func (cs *ClientService) handleEvent(ev transport.Event) {
	switch ev.Type {
	case transport.EventDisconnect:
		cs.delegate.OnDisconnected()
		cs.terminating.Store(true)
	case transport.EventData:
		cs.handlePacket(ev.Packet)
		ev.Packet.Release()
	}
}

func (cs *ClientService) handlePacket(pkt *netutil.Packet) {
	msgtype := proto.MsgType(pkt.ReadUint16())
	op := opmon.StartOperation(fmt.Sprintf("client.dispatch.%d", msgtype))
	defer op.Finish(time.Millisecond * 100)

	switch msgtype {
	case proto.MT_SET_CLIENT_ID:
		cs.handleSetClientID(pkt.ReadClientID())
	case proto.MT_SPAWN_OBJECT:
		cs.handleSpawn(proto.ReadSpawnMsg(pkt, cs.registry.StateEnabled()))
	case proto.MT_DESPAWN_OBJECT:
		cs.registry.Despawn(proto.ReadDespawnMsg(pkt), true)
	case proto.MT_CHANGE_OWNERSHIP:
		cs.handleChangeOwnership(proto.ReadChangeOwnershipMsg(pkt))
	case proto.MT_HEARTBEAT:
		// server does not send heartbeats, ignore
	default:
		nslog.Warnf("%s: unknown message type %d", cs, msgtype)
	}
}

func (cs *ClientService) handleSetClientID(clientid common.ClientID) {
	cs.registry.SetLocalClient(clientid)
	cs.setupHeartbeats()
	cs.delegate.OnConnected(clientid)
}

func (cs *ClientService) setupHeartbeats() {
	if cs.config.HeartbeatInterval <= 0 {
		return
	}
	interval := time.Second * time.Duration(cs.config.HeartbeatInterval)
	timer.AddTimer(interval, func() {
		pkt := proto.MakeHeartbeatPacket()
		cs.transport.Send(pkt)
		pkt.Release()
	})
}

func (cs *ClientService) handleSpawn(msg *proto.SpawnMsg) {
	obj := cs.instantiate(msg)
	if obj == nil {
		return
	}

	parentID := msg.ParentID
	if !parentID.IsNil() && cs.registry.Get(parentID) == nil {
		nslog.Warnf("%s: parent %d of object %d is not spawned, dropping parent link", cs, uint64(parentID), uint64(msg.ObjectID))
		parentID = common.NilObjectID
	}
	obj.ParentID = parentID
	if msg.IncludeTransform {
		obj.Position = msg.Position
		obj.RotationEuler = msg.RotationEuler
	}

	err := cs.registry.Spawn(obj, msg.ObjectID, object.SpawnOptions{
		IsSceneObject:  msg.IsSceneObject,
		IsPlayerObject: msg.IsPlayerObject,
		OwnerID:        msg.OwnerID,
		Payload:        msg.Payload,
		StateSnapshot:  msg.Snapshot,
		ReadSnapshot:   true,
	})
	if err != nil {
		nslog.Errorf("%s: spawn object %d failed: %v", cs, uint64(msg.ObjectID), err)
	}
}

// instantiate picks the local instance for an incoming spawn message: a
// pending soft-synced scene object, a spawn handler override, or a fresh
// instance from the prefab factory.
func (cs *ClientService) instantiate(msg *proto.SpawnMsg) *object.NetworkObject {
	if msg.IsSceneObject && cs.repConfig.EnableSceneSoftSync {
		obj, err := cs.softSync.Resolve(msg.PrefabHash)
		if err != nil {
			nslog.Errorf("%s: spawn object %d failed: %v", cs, uint64(msg.ObjectID), err)
			return nil
		}
		return obj
	}

	if handler, ok := cs.prefabs.SpawnHandler(msg.PrefabHash); ok {
		obj := handler(msg.PrefabHash, msg.Position, msg.RotationEuler)
		if obj == nil {
			nslog.Warnf("%s: spawn handler of prefab %d returned nil for object %d", cs, uint32(msg.PrefabHash), uint64(msg.ObjectID))
		}
		return obj
	}

	factory, err := cs.prefabs.Resolve(msg.PrefabHash)
	if err != nil {
		nslog.Errorf("%s: spawn object %d failed: %v", cs, uint64(msg.ObjectID), err)
		return nil
	}
	return factory()
}

func (cs *ClientService) handleChangeOwnership(id common.ObjectID, newOwner common.ClientID) {
	obj := cs.registry.Get(id)
	if obj == nil {
		nslog.Warnf("%s: ownership change of unknown object %d", cs, uint64(id))
		return
	}
	cs.registry.ApplyOwnershipLocal(obj, newOwner)
}

func (cs *ClientService) terminate() {
	cs.terminating.Store(true)
}

func (cs *ClientService) doTerminate() {
	nslog.Infof("%s: terminating ...", cs)

	cs.softSync.SweepStale(nil)
	cs.transport.Close()

	cs.terminated.Signal()
	nslog.Infof("%s: terminated gracefully.", cs)
}
