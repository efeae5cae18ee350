package server

import (
	"fmt"
	"os"
	"time"

	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/config"
	"github.com/netsync/netsync/engine/consts"
	"github.com/netsync/netsync/engine/idalloc"
	"github.com/netsync/netsync/engine/netutil"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/netsync/netsync/engine/nsutils"
	"github.com/netsync/netsync/engine/object"
	"github.com/netsync/netsync/engine/opmon"
	"github.com/netsync/netsync/engine/outbound"
	"github.com/netsync/netsync/engine/post"
	"github.com/netsync/netsync/engine/proto"
	"github.com/netsync/netsync/engine/scene"
	"github.com/netsync/netsync/engine/transport"
	"github.com/shirou/gopsutil/process"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	"github.com/xiaonanln/goTimer"
)

// ServerService runs the authoritative replication service
type ServerService struct {
	config      *config.ServerConfig
	repConfig   *config.ReplicationConfig
	delegate    IServerDelegate
	transport   *transport.ServerTransport
	queue       *outbound.Queue
	registry    *object.Registry
	prefabs     *object.PrefabRegistry
	softSync    *scene.SoftSyncHandler
	terminating xnsyncutil.AtomicBool
	terminated  *xnsyncutil.OneTimeCond
}

func newServerService(delegate IServerDelegate) *ServerService {
	cfg := config.GetServer()
	repCfg := config.GetReplication()

	ss := &ServerService{
		config:     cfg,
		repConfig:  repCfg,
		delegate:   delegate,
		transport:  transport.NewServerTransport(cfg),
		prefabs:    object.NewPrefabRegistry(),
		terminated: xnsyncutil.NewOneTimeCond(),
	}
	ss.queue = outbound.NewQueue(ss.transport.Send)
	allocator := idalloc.NewAllocator(repCfg.RecycleIds, repCfg.RecycleDelay)
	ss.registry = object.NewRegistry(object.RoleServer, allocator, ss.prefabs, ss.queue, repCfg.ReplicatedState)
	ss.softSync = scene.NewSoftSyncHandler(ss.registry)
	return ss
}

func (ss *ServerService) String() string {
	return fmt.Sprintf("ServerService<%s:%d>", ss.config.Ip, ss.config.Port)
}

// Registry returns the object registry of the server
func (ss *ServerService) Registry() *object.Registry {
	return ss.registry
}

// Prefabs returns the prefab registry of the server
func (ss *ServerService) Prefabs() *object.PrefabRegistry {
	return ss.prefabs
}

// SoftSync returns the scene soft-sync handler of the server
func (ss *ServerService) SoftSync() *scene.SoftSyncHandler {
	return ss.softSync
}

func (ss *ServerService) run() {
	nslog.Infof("Read server config: \n%s\n", config.DumpPretty(ss.config))

	ss.transport.Listen()
	ss.setupHeartbeatCheck()
	ss.setupCPUReport()
	ss.softSync.SpawnSceneObjects()

	timer.AddCallback(0, func() {
		ss.delegate.OnServerReady()
	})

	ticker := time.Tick(consts.SERVICE_TICK_INTERVAL)
	// here begins the main loop of the server service
	for {
		<-ticker
		for {
			ev := ss.transport.Poll()
			if ev.Type == transport.EventNothing {
				break
			}
			ss.handleEvent(ev)
		}

		timer.Tick()
		post.Tick()
		ss.queue.Flush()

		if ss.terminating.Load() {
			break
		}
	}

	ss.doTerminate()
}

func (ss *ServerService) setupHeartbeatCheck() {
	if ss.config.HeartbeatCheckInterval <= 0 {
		return
	}
	interval := time.Second * time.Duration(ss.config.HeartbeatCheckInterval)
	timer.AddTimer(interval, func() {
		// clients get twice the check interval to show a heartbeat
		ss.transport.CheckHeartbeats(interval * 2)
	})
}

func (ss *ServerService) setupCPUReport() {
	if ss.config.CPUProfileInterval <= 0 {
		return
	}

	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		nslog.Errorf("%s: can not find server process: pid = %v", ss, pid)
		return
	}

	interval := time.Second * time.Duration(ss.config.CPUProfileInterval)
	go nsutils.RepeatUntilPanicless(func() {
		for {
			time.Sleep(interval)
			pcnt, err := proc.CPUPercent()
			if err != nil {
				nslog.Panicf("get process cpu percent failed: %s", err)
			}
			nslog.Infof("%s: cpu percent is %.3f%%, clients %d", ss, pcnt, ss.transport.ClientCount())
		}
	})
}

func (ss *ServerService) handleEvent(ev transport.Event) {
	switch ev.Type {
	case transport.EventConnect:
		ss.handleClientConnected(ev.ClientID)
	case transport.EventDisconnect:
		ss.handleClientDisconnected(ev.ClientID)
	case transport.EventData:
		ss.handlePacket(ev.ClientID, ev.Packet)
		ev.Packet.Release()
	}
}

func (ss *ServerService) handleClientConnected(clientid common.ClientID) {
	op := opmon.StartOperation("server.clientConnected")
	defer op.Finish(time.Millisecond * 100)

	ss.registry.AddClient(clientid)
	pkt := proto.MakeSetClientIDPacket(clientid)
	ss.transport.Send(clientid, pkt, proto.CHANNEL_INTERNAL)
	pkt.Release()
	ss.replayWorld(clientid)
	ss.delegate.OnClientConnected(clientid)
}

// replayWorld sends spawn messages of all visible spawned objects to a late joiner
func (ss *ServerService) replayWorld(clientid common.ClientID) {
	for id := range ss.registry.SpawnedIDs() {
		obj := ss.registry.Get(id)
		if obj == nil || !obj.VisibleTo(clientid) {
			continue
		}
		ss.registry.AddObserver(obj, clientid)
		pkt := ss.registry.SpawnPacketFor(obj, clientid)
		ss.transport.Send(clientid, pkt, proto.CHANNEL_INTERNAL)
		pkt.Release()
	}
}

func (ss *ServerService) handleClientDisconnected(clientid common.ClientID) {
	op := opmon.StartOperation("server.clientDisconnected")
	defer op.Finish(time.Millisecond * 100)

	record := ss.registry.GetClientRecord(clientid)
	if record != nil {
		if ss.repConfig.DespawnOnDisconnect && !record.PlayerObject.IsNil() {
			ss.registry.Despawn(record.PlayerObject, true)
		}
		// the owned-object list shrinks while ownership is removed, iterate a copy
		owned := append([]common.ObjectID(nil), record.OwnedObjects...)
		for _, id := range owned {
			obj := ss.registry.Get(id)
			if obj == nil {
				continue
			}
			if err := ss.registry.RemoveOwnership(obj); err != nil {
				nslog.Errorf("%s: remove ownership of %s failed: %v", ss, obj, err)
			}
		}
	}
	ss.registry.RemoveClient(clientid)
	ss.delegate.OnClientDisconnected(clientid)
}

func (ss *ServerService) handlePacket(clientid common.ClientID, pkt *netutil.Packet) {
	msgtype := proto.MsgType(pkt.ReadUint16())
	op := opmon.StartOperation(fmt.Sprintf("server.dispatch.%d", msgtype))
	defer op.Finish(time.Millisecond * 100)

	switch msgtype {
	case proto.MT_HEARTBEAT:
		ss.transport.OnHeartbeat(clientid)
	default:
		nslog.Warnf("%s: unknown message type %d from client %s", ss, msgtype, clientid)
	}
}

func (ss *ServerService) terminate() {
	ss.terminating.Store(true)
}

func (ss *ServerService) doTerminate() {
	nslog.Infof("%s: terminating ...", ss)

	ids := make([]common.ObjectID, 0, ss.registry.SpawnedCount())
	for id := range ss.registry.SpawnedIDs() {
		ids = append(ids, id)
	}
	for _, id := range ids {
		ss.registry.Despawn(id, true)
	}

	ss.queue.Flush()
	ss.transport.Terminate()

	ss.terminated.Signal()
	nslog.Infof("%s: terminated gracefully.", ss)
}
