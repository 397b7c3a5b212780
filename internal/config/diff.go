package config

// ConfigDiff describes what changed between two configs.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// RestartRequired lists the keys that changed but only take effect after
	// a restart (listen address, transport, dataset path, watch interval).
	RestartRequired []string
}

// Changed reports whether any tracked field differs.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Server.Host != new.Server.Host {
		d.RestartRequired = append(d.RestartRequired, "server.host")
	}
	if old.Server.Port != new.Server.Port {
		d.RestartRequired = append(d.RestartRequired, "server.port")
	}
	if old.Server.Transport != new.Server.Transport {
		d.RestartRequired = append(d.RestartRequired, "server.transport")
	}
	if old.Data.Path != new.Data.Path {
		d.RestartRequired = append(d.RestartRequired, "data.path")
	}
	if old.Data.WatchInterval != new.Data.WatchInterval {
		d.RestartRequired = append(d.RestartRequired, "data.watch_interval")
	}

	return d
}
