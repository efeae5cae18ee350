// +build windows

package binutil

import "github.com/netsync/netsync/engine/nslog"

type nopRelease int

func (_ nopRelease) Release() {

}

func Daemonize() nopRelease {
	// Windows can not daemonize
	nslog.Warnf("can not run in daemon mode in windows, -d ignored")
	return nopRelease(0)
}
