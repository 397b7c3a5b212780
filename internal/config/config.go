// Package config provides the configuration schema, loader, and hot-reload
// watcher for the pdxparks MCP server.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables, then command-line flags (applied by the caller).
package config

import (
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/MrWong99/pdxparks/internal/mcp"
	"github.com/MrWong99/pdxparks/internal/parks"
)

// LogLevel controls log verbosity for the pdxparks server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l onto a [slog.Level]. Unknown and empty levels map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Defaults applied by [Default].
const (
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 8000
	DefaultTransport = mcp.TransportStreamableHTTP
)

// Config is the root configuration structure for pdxparks.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
}

// ServerConfig holds transport, network, and logging settings.
type ServerConfig struct {
	// Host is the interface the streamable-http transport binds to.
	Host string `yaml:"host" env:"HOST"`

	// Port is the TCP port the streamable-http transport listens on.
	Port int `yaml:"port" env:"PORT"`

	// Transport selects stdio or streamable-http. It is fixed at startup.
	Transport mcp.Transport `yaml:"transport" env:"MCP_TRANSPORT"`

	// LogLevel controls verbosity. It can be changed while running by editing
	// the config file.
	LogLevel LogLevel `yaml:"log_level" env:"LOG_LEVEL"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DataConfig locates the park dataset.
type DataConfig struct {
	// Path is the JSON dataset file.
	Path string `yaml:"path" env:"PARKS_FILE"`

	// WatchInterval is how often the dataset file is polled for changes.
	// Zero disables polling; SIGHUP still triggers a reload.
	WatchInterval time.Duration `yaml:"watch_interval" env:"PARKS_WATCH_INTERVAL"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      DefaultHost,
			Port:      DefaultPort,
			Transport: DefaultTransport,
			LogLevel:  LogInfo,
		},
		Data: DataConfig{
			Path: parks.DefaultPath,
		},
	}
}
