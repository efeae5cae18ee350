package binutil

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/netsync/netsync/engine/nslog"
	"golang.org/x/net/websocket"
)

// SetupHTTPServer starts the HTTP server for go tool pprof and websockets
func SetupHTTPServer(ip string, port int, wsHandler func(ws *websocket.Conn)) {
	if port == 0 {
		// pprof not enabled
		nslog.Infof("pprof server not enabled")
		return
	}

	httpHost := fmt.Sprintf("%s:%d", ip, port)
	nslog.Infof("http server listening on %s", httpHost)
	nslog.Infof("pprof http://%s/debug/pprof/ ... available commands: ", httpHost)
	nslog.Infof("    go tool pprof http://%s/debug/pprof/heap", httpHost)
	nslog.Infof("    go tool pprof http://%s/debug/pprof/profile", httpHost)

	if wsHandler != nil {
		http.Handle("/ws", websocket.Handler(wsHandler))
	}

	go func() {
		http.ListenAndServe(httpHost, nil)
	}()
}

// SetupNSLog setup the NetSync log system
func SetupNSLog(component string, logLevel string, logFile string, logStderr bool) {
	nslog.SetSource(component)
	nslog.Infof("Set log level to %s", logLevel)
	nslog.SetLevel(nslog.StringToLevel(logLevel))

	outputWriters := make([]io.Writer, 0, 2)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			nslog.Errorf("open log file %s failed: %v", logFile, err)
		} else {
			outputWriters = append(outputWriters, f)
		}
	}

	if logStderr {
		outputWriters = append(outputWriters, os.Stderr)
	}

	if len(outputWriters) == 1 {
		nslog.SetOutput(outputWriters[0])
	} else if len(outputWriters) > 1 {
		nslog.SetOutput(io.MultiWriter(outputWriters...))
	}
}
