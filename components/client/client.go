// Package client runs the mirroring side of the replication session: it
// connects to one server, applies incoming spawn, despawn and ownership
// messages to its local registry and keeps the connection alive with
// heartbeats.
package client

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/netsync/netsync/engine/binutil"
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/config"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/netsync/netsync/engine/object"
	"github.com/netsync/netsync/engine/post"
)

var (
	args struct {
		configFile      string
		logLevel        string
		runInDaemonMode bool
	}
	clientService *ClientService
	signalChan    = make(chan os.Signal, 1)
)

func parseArgs() {
	flag.StringVar(&args.configFile, "configfile", "", "set config file path")
	flag.StringVar(&args.logLevel, "log", "", "set log level, will override log level in config")
	flag.BoolVar(&args.runInDaemonMode, "d", false, "run in daemon mode")
	flag.Parse()
}

// Run parses command line args, reads the config and runs the client service
// until the connection is lost or SIGINT/SIGTERM arrives.
func Run(delegate IClientDelegate, setup func(cs *ClientService)) {
	parseArgs()

	if args.runInDaemonMode {
		daemoncontext := binutil.Daemonize()
		defer daemoncontext.Release()
	}

	if args.configFile != "" {
		config.SetConfigFile(args.configFile)
	}

	clientConfig := config.GetClient()
	logLevel := args.logLevel
	if logLevel == "" {
		logLevel = clientConfig.LogLevel
	}
	binutil.SetupNSLog("client", logLevel, clientConfig.LogFile, clientConfig.LogStderr)

	clientService = newClientService(delegate)
	if setup != nil {
		// register prefabs and scene objects before the session starts
		setup(clientService)
	}
	setupSignals()
	clientService.run()
}

func setupSignals() {
	nslog.Infof("Setup signals ...")
	signal.Ignore(syscall.Signal(10), syscall.Signal(12), syscall.SIGPIPE, syscall.SIGHUP)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for {
			sig := <-signalChan
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				nslog.Infof("Terminating client service ...")
				post.Post(func() {
					clientService.terminate()
				})

				clientService.terminated.Wait()
				os.Exit(0)
			} else {
				nslog.Errorf("unexpected signal: %s", sig)
			}
		}
	}()
}

// GetService returns the running client service
func GetService() *ClientService {
	return clientService
}

// RegisterPrefab registers the factory for a prefab hash
func RegisterPrefab(hash common.PrefabHash, factory object.PrefabFactory) {
	clientService.prefabs.Register(hash, factory)
}

// TrackSceneObject registers a locally instantiated scene object for soft sync
func TrackSceneObject(obj *object.NetworkObject) {
	clientService.softSync.TrackSceneObject(obj)
}

// Registry returns the object registry of the running client
func Registry() *object.Registry {
	return clientService.registry
}
