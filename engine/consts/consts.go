package consts

import "time"

// Tunable Options
const (
	// For Underlying Networking
	// BUFFERED_READ_BUFFSIZE is the read buffer size for buffered connections
	BUFFERED_READ_BUFFSIZE = 16384
	// BUFFERED_WRITE_BUFFSIZE is the write buffer size for buffered connections
	BUFFERED_WRITE_BUFFSIZE = 16384

	// For Server Service
	// CLIENT_PROXY_WRITE_BUFFER_SIZE is the write buffer size of client proxies
	CLIENT_PROXY_WRITE_BUFFER_SIZE = 1024 * 1024
	// CLIENT_PROXY_READ_BUFFER_SIZE is the read buffer size of client proxies
	CLIENT_PROXY_READ_BUFFER_SIZE = 1024 * 1024
	// CLIENT_PROXY_SET_TCP_NO_DELAY = true sets client proxies to TcpNoDelay
	CLIENT_PROXY_SET_TCP_NO_DELAY = true

	// TRANSPORT_EVENT_QUEUE_SIZE is the max queued transport events per role service
	TRANSPORT_EVENT_QUEUE_SIZE = 10000

	// SERVICE_TICK_INTERVAL is the tick interval of role services => affects timer resolution
	SERVICE_TICK_INTERVAL = time.Millisecond * 10

	// RESTART_TCP_SERVER_INTERVAL is the wait time before restarting a failed TCP server
	RESTART_TCP_SERVER_INTERVAL = 3 * time.Second

	// For Operation Monitor
	// OPMON_DUMP_INTERVAL is the interval to print opmon infos to output
	OPMON_DUMP_INTERVAL = 0
)

// Debug Options
const (
	// DEBUG_PACKETS prints packet send/recv debug logs
	DEBUG_PACKETS = false
	// DEBUG_CLIENTS prints clients operation debug logs
	DEBUG_CLIENTS = false
	// DEBUG_SPAWN prints spawn & despawn debug logs
	DEBUG_SPAWN = false
)

// System level configurations
const (
	// DEBUG_MODE = true turns on debug mode
	DEBUG_MODE = false
)
