// +build !windows

package binutil

import (
	"os"

	"github.com/netsync/netsync/engine/nslog"
	"github.com/sevlyar/go-daemon"
)

func Daemonize() *daemon.Context {
	context := new(daemon.Context)
	child, err := context.Reborn()

	if err != nil {
		// daemonize failed
		nslog.Panicf("daemonize failed: %v", err)
	}

	if child != nil {
		nslog.Infof("run in daemon mode")
		os.Exit(0)
		return nil
	} else {
		return context
	}
}
