package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path on top of [Default] and
// returns the validated result. Environment variables are not applied; see
// [Resolve] for the full layering.
func Load(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile is [Load] without validation, for callers that layer more
// sources on top before validating.
func ReadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// Decode is [LoadFromReader] without validation. An empty document yields
// the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. Variables that are unset
// leave the existing value untouched. When environ is nil the process
// environment is used.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

// DefaultDotEnv is the dotenv file read from the working directory.
const DefaultDotEnv = ".env"

// Environ returns the process environment merged with the variables defined
// in the dotenv file at path. Variables already set in the process win over
// the file. A missing file (or an empty path) contributes nothing.
func Environ(path string) (map[string]string, error) {
	environ := make(map[string]string)
	if path != "" {
		fileVars, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read dotenv %q: %w", path, err)
		}
		maps.Copy(environ, fileVars)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return environ, nil
}

// Sources lists the inputs [Resolve] layers on top of [Default].
type Sources struct {
	// File is an optional YAML config file.
	File string

	// DotEnv is an optional dotenv file; see [Environ].
	DotEnv string

	// Overlay, when set, runs last. Command-line flags go here.
	Overlay func(*Config) error
}

// Resolve builds the effective configuration: defaults, then src.File, then
// the environment (process variables over src.DotEnv), then src.Overlay.
// Validation runs once, on the final result, so a later layer can fix a
// value an earlier one got wrong.
func Resolve(src Sources) (*Config, error) {
	cfg := Default()
	if src.File != "" {
		var err error
		if cfg, err = ReadFile(src.File); err != nil {
			return nil, err
		}
	}
	environ, err := Environ(src.DotEnv)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, environ); err != nil {
		return nil, err
	}
	if src.Overlay != nil {
		if err := src.Overlay(cfg); err != nil {
			return nil, err
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range [1, 65535]", cfg.Server.Port))
	}
	if !cfg.Server.Transport.IsValid() {
		errs = append(errs, fmt.Errorf("server.transport %q is invalid; valid values: stdio, streamable-http", cfg.Server.Transport))
	}
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Data
	if cfg.Data.Path == "" {
		errs = append(errs, errors.New("data.path is required"))
	}
	if cfg.Data.WatchInterval < 0 {
		errs = append(errs, fmt.Errorf("data.watch_interval %s must not be negative", cfg.Data.WatchInterval))
	}

	return errors.Join(errs...)
}
