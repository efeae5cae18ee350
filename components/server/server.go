// Package server runs the authoritative side of the replication session:
// it accepts client connections, replays the spawned world to late joiners
// and announces spawns, despawns and ownership changes.
package server

import (
	"flag"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/netsync/netsync/engine/binutil"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/config"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/netsync/netsync/engine/object"
	"github.com/netsync/netsync/engine/post"
	"github.com/netsync/netsync/engine/scene"
)

var (
	args struct {
		configFile      string
		logLevel        string
		runInDaemonMode bool
	}
	serverService *ServerService
	signalChan    = make(chan os.Signal, 1)
)

func parseArgs() {
	flag.StringVar(&args.configFile, "configfile", "", "set config file path")
	flag.StringVar(&args.logLevel, "log", "", "set log level, will override log level in config")
	flag.BoolVar(&args.runInDaemonMode, "d", false, "run in daemon mode")
	flag.Parse()
}

// Run parses command line args, reads the config and runs the server service
// until it is terminated by SIGINT or SIGTERM. Run never returns.
// setup is called before the session starts, for registering prefabs and
// scene objects; it may be nil.
func Run(delegate IServerDelegate, setup func(ss *ServerService)) {
	parseArgs()

	if args.runInDaemonMode {
		daemoncontext := binutil.Daemonize()
		defer daemoncontext.Release()
	}

	if args.configFile != "" {
		config.SetConfigFile(args.configFile)
	}

	serverConfig := config.GetServer()
	if serverConfig.GoMaxProcs > 0 {
		nslog.Infof("SET GOMAXPROCS = %d", serverConfig.GoMaxProcs)
		runtime.GOMAXPROCS(serverConfig.GoMaxProcs)
	}
	logLevel := args.logLevel
	if logLevel == "" {
		logLevel = serverConfig.LogLevel
	}
	binutil.SetupNSLog("server", logLevel, serverConfig.LogFile, serverConfig.LogStderr)

	serverService = newServerService(delegate)
	if setup != nil {
		setup(serverService)
	}
	setupSignals()
	serverService.run()
}

func setupSignals() {
	nslog.Infof("Setup signals ...")
	signal.Ignore(syscall.Signal(10), syscall.Signal(12), syscall.SIGPIPE, syscall.SIGHUP)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for {
			sig := <-signalChan
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				nslog.Infof("Terminating server service ...")
				post.Post(func() {
					serverService.terminate()
				})

				serverService.terminated.Wait()
				os.Exit(0)
			} else {
				nslog.Errorf("unexpected signal: %s", sig)
			}
		}
	}()
}

// GetService returns the running server service
func GetService() *ServerService {
	return serverService
}

// RegisterPrefab registers the factory for a prefab hash
func RegisterPrefab(hash common.PrefabHash, factory object.PrefabFactory) {
	serverService.prefabs.Register(hash, factory)
}

// TrackSceneObject registers a scene-placed object, spawned when the server starts
func TrackSceneObject(obj *object.NetworkObject) {
	serverService.softSync.TrackSceneObject(obj)
}

// Spawn allocates an ID for obj and spawns it.
// Must be called from the service goroutine (delegate callbacks or posts).
func Spawn(obj *object.NetworkObject, opts object.SpawnOptions) (common.ObjectID, error) {
	id := serverService.registry.AllocateID()
	if err := serverService.registry.Spawn(obj, id, opts); err != nil {
		return common.NilObjectID, err
	}
	return id, nil
}

// Despawn despawns the object with the given ID and destroys its instance
func Despawn(id common.ObjectID) {
	serverService.registry.Despawn(id, true)
}

// ChangeOwnership assigns the spawned object to a new owner
func ChangeOwnership(obj *object.NetworkObject, newOwner common.ClientID) error {
	return serverService.registry.ChangeOwnership(obj, newOwner)
}

// RemoveOwnership returns the spawned object to server ownership
func RemoveOwnership(obj *object.NetworkObject) error {
	return serverService.registry.RemoveOwnership(obj)
}

// Registry returns the object registry of the running server
func Registry() *object.Registry {
	return serverService.registry
}

// SoftSync returns the scene soft-sync handler of the running server
func SoftSync() *scene.SoftSyncHandler {
	return serverService.softSync
}
