package config

import (
	"encoding/json"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-ini/ini"
	"github.com/netsync/netsync/engine/nslog"
)

const (
	_DEFAULT_CONFIG_FILE  = "netsync.ini"
	_DEFAULT_LOCALHOST_IP = "127.0.0.1"
	_DEFAULT_HTTP_IP      = "127.0.0.1"
	_DEFAULT_LOG_LEVEL    = "debug"
)

var (
	configFilePath = _DEFAULT_CONFIG_FILE
	netSyncConfig  *NetSyncConfig
	configLock     sync.Mutex
)

// ServerConfig defines fields of the [server] section
type ServerConfig struct {
	Ip                     string
	Port                   int
	HTTPIp                 string
	HTTPPort               int
	LogFile                string
	LogStderr              bool
	LogLevel               string
	GoMaxProcs             int
	CompressConnection     bool
	HeartbeatCheckInterval int // seconds, 0 disables heartbeat checking
	CPUProfileInterval     int // seconds, 0 disables cpu usage reporting
}

// ClientConfig defines fields of the [client] section
type ClientConfig struct {
	ServerIp           string
	ServerPort         int
	LogFile            string
	LogStderr          bool
	LogLevel           string
	CompressConnection bool
	HeartbeatInterval  int // seconds, 0 disables heartbeats
}

// ReplicationConfig defines fields of the [replication] section
type ReplicationConfig struct {
	RecycleIds          bool
	RecycleDelay        time.Duration
	ReplicatedState     bool
	EnableSceneSoftSync bool
	DespawnOnDisconnect bool
}

// NetSyncConfig defines the total NetSync config file structure
type NetSyncConfig struct {
	Server      ServerConfig
	Client      ClientConfig
	Replication ReplicationConfig
}

// SetConfigFile sets the config file path (netsync.ini by default)
func SetConfigFile(f string) {
	configFilePath = f
}

// GetConfigDir returns the directory of netsync.ini
func GetConfigDir() string {
	dir, _ := path.Split(configFilePath)
	return dir
}

// GetConfigFilePath returns the config file path
func GetConfigFilePath() string {
	return configFilePath
}

// Get returns the total NetSync config
func Get() *NetSyncConfig {
	configLock.Lock()
	defer configLock.Unlock() // protect concurrent access from server & client services
	if netSyncConfig == nil {
		netSyncConfig = readNetSyncConfig()
	}
	return netSyncConfig
}

// Reload forces netsync to reload the whole config
func Reload() *NetSyncConfig {
	configLock.Lock()
	netSyncConfig = nil
	configLock.Unlock()

	return Get()
}

// GetServer returns the server config
func GetServer() *ServerConfig {
	return &Get().Server
}

// GetClient returns the client config
func GetClient() *ClientConfig {
	return &Get().Client
}

// GetReplication returns the replication config
func GetReplication() *ReplicationConfig {
	return &Get().Replication
}

// DumpPretty format config to string in pretty format
func DumpPretty(cfg interface{}) string {
	s, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err.Error()
	}
	return string(s)
}

func readNetSyncConfig() *NetSyncConfig {
	config := NetSyncConfig{}
	nslog.Infof("Using config file: %s", configFilePath)
	iniFile, err := ini.Load(configFilePath)
	checkConfigError(err, "")
	readServerConfig(iniFile.Section("server"), &config.Server)
	readClientConfig(iniFile.Section("client"), &config.Client)
	readReplicationConfig(iniFile.Section("replication"), &config.Replication)

	for _, sec := range iniFile.Sections() {
		secName := strings.ToLower(sec.Name())
		if secName == "default" || secName == "server" || secName == "client" || secName == "replication" {
			continue
		}
		nslog.Errorf("unknown section: %s", secName)
	}

	validateConfig(&config)
	return &config
}

func readServerConfig(sec *ini.Section, sc *ServerConfig) {
	// setup default values
	sc.Ip = "0.0.0.0"
	sc.Port = 14001
	sc.HTTPIp = _DEFAULT_HTTP_IP
	sc.HTTPPort = 0 // pprof & websocket not enabled by default
	sc.LogFile = "server.log"
	sc.LogStderr = true
	sc.LogLevel = _DEFAULT_LOG_LEVEL
	sc.GoMaxProcs = 0
	sc.HeartbeatCheckInterval = 0
	sc.CPUProfileInterval = 0

	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "ip" {
			sc.Ip = key.MustString(sc.Ip)
		} else if name == "port" {
			sc.Port = key.MustInt(sc.Port)
		} else if name == "http_ip" {
			sc.HTTPIp = key.MustString(sc.HTTPIp)
		} else if name == "http_port" {
			sc.HTTPPort = key.MustInt(sc.HTTPPort)
		} else if name == "log_file" {
			sc.LogFile = key.MustString(sc.LogFile)
		} else if name == "log_stderr" {
			sc.LogStderr = key.MustBool(sc.LogStderr)
		} else if name == "log_level" {
			sc.LogLevel = key.MustString(sc.LogLevel)
		} else if name == "gomaxprocs" {
			sc.GoMaxProcs = key.MustInt(sc.GoMaxProcs)
		} else if name == "compress_connection" {
			sc.CompressConnection = key.MustBool(sc.CompressConnection)
		} else if name == "heartbeat_check_interval" {
			sc.HeartbeatCheckInterval = key.MustInt(sc.HeartbeatCheckInterval)
		} else if name == "cpu_profile_interval" {
			sc.CPUProfileInterval = key.MustInt(sc.CPUProfileInterval)
		} else {
			nslog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
}

func readClientConfig(sec *ini.Section, cc *ClientConfig) {
	cc.ServerIp = _DEFAULT_LOCALHOST_IP
	cc.ServerPort = 14001
	cc.LogFile = "client.log"
	cc.LogStderr = true
	cc.LogLevel = _DEFAULT_LOG_LEVEL
	cc.HeartbeatInterval = 0

	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "server_ip" {
			cc.ServerIp = key.MustString(cc.ServerIp)
		} else if name == "server_port" {
			cc.ServerPort = key.MustInt(cc.ServerPort)
		} else if name == "log_file" {
			cc.LogFile = key.MustString(cc.LogFile)
		} else if name == "log_stderr" {
			cc.LogStderr = key.MustBool(cc.LogStderr)
		} else if name == "log_level" {
			cc.LogLevel = key.MustString(cc.LogLevel)
		} else if name == "compress_connection" {
			cc.CompressConnection = key.MustBool(cc.CompressConnection)
		} else if name == "heartbeat_interval" {
			cc.HeartbeatInterval = key.MustInt(cc.HeartbeatInterval)
		} else {
			nslog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
}

func readReplicationConfig(sec *ini.Section, rc *ReplicationConfig) {
	rc.RecycleIds = true
	rc.RecycleDelay = time.Second * 120
	rc.ReplicatedState = true
	rc.EnableSceneSoftSync = true
	rc.DespawnOnDisconnect = true

	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "recycle_ids" {
			rc.RecycleIds = key.MustBool(rc.RecycleIds)
		} else if name == "recycle_delay" {
			rc.RecycleDelay = time.Second * time.Duration(key.MustInt(int(rc.RecycleDelay/time.Second)))
		} else if name == "replicated_state" {
			rc.ReplicatedState = key.MustBool(rc.ReplicatedState)
		} else if name == "scene_soft_sync" {
			rc.EnableSceneSoftSync = key.MustBool(rc.EnableSceneSoftSync)
		} else if name == "despawn_on_disconnect" {
			rc.DespawnOnDisconnect = key.MustBool(rc.DespawnOnDisconnect)
		} else {
			nslog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
}

func checkConfigError(err error, msg string) {
	if err != nil {
		if msg == "" {
			msg = err.Error()
		}
		nslog.Panicf("read config error: %s", msg)
	}
}

func validateConfig(config *NetSyncConfig) {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		nslog.Panicf("invalid server port: %d", config.Server.Port)
	}
	if config.Client.ServerPort <= 0 || config.Client.ServerPort > 65535 {
		nslog.Panicf("invalid client server_port: %d", config.Client.ServerPort)
	}
	if config.Replication.RecycleDelay < 0 {
		nslog.Panicf("recycle_delay must not be negative: %s", config.Replication.RecycleDelay)
	}
	if config.Replication.RecycleIds && config.Replication.RecycleDelay == 0 {
		nslog.Warnf("recycle_ids is enabled with recycle_delay = 0, released object IDs are reused immediately")
	}
}
