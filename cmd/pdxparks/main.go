// Command pdxparks is the main entry point for the Portland parks MCP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrWong99/pdxparks/internal/app"
	"github.com/MrWong99/pdxparks/internal/config"
	"github.com/MrWong99/pdxparks/internal/mcp"
	"github.com/MrWong99/pdxparks/internal/observe"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// flags holds the command-line overrides. Only flags that were set on the
// command line are applied, so they win over the file and the environment.
type flags struct {
	configPath string
	dotenvPath string
	host       string
	port       int
	transport  string
	parksFile  string
	logLevel   string

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{set: make(map[string]bool)}
	fs := flag.NewFlagSet("pdxparks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "path to an optional YAML configuration file")
	fs.StringVar(&f.dotenvPath, "env-file", config.DefaultDotEnv, "dotenv file read before the environment; a missing file is ignored")
	fs.StringVar(&f.host, "host", "", "listen host (overrides HOST)")
	fs.IntVar(&f.port, "port", 0, "listen port (overrides PORT)")
	fs.StringVar(&f.transport, "transport", "", "MCP transport: stdio or streamable-http (overrides MCP_TRANSPORT)")
	fs.StringVar(&f.parksFile, "parks", "", "path to the parks dataset (overrides PARKS_FILE)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// apply writes the explicitly set flags onto cfg.
func (f *flags) apply(cfg *config.Config) {
	if f.set["host"] {
		cfg.Server.Host = f.host
	}
	if f.set["port"] {
		cfg.Server.Port = f.port
	}
	if f.set["transport"] {
		cfg.Server.Transport = mcp.Transport(f.transport)
	}
	if f.set["parks"] {
		cfg.Data.Path = f.parksFile
	}
	if f.set["log-level"] {
		cfg.Server.LogLevel = config.LogLevel(f.logLevel)
	}
}

// overlay re-applies the environment (including the dotenv file) and the
// flags to a freshly loaded config file.
func (f *flags) overlay(cfg *config.Config) error {
	environ, err := config.Environ(f.dotenvPath)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg, environ); err != nil {
		return err
	}
	f.apply(cfg)
	return nil
}

// loadConfig resolves defaults, file, dotenv, environment, and flags, in that
// order, and validates the result once.
func loadConfig(f *flags) (*config.Config, error) {
	return config.Resolve(config.Sources{
		File:   f.configPath,
		DotEnv: f.dotenvPath,
		Overlay: func(cfg *config.Config) error {
			f.apply(cfg)
			return nil
		},
	})
}

func run(args []string, stderr io.Writer) int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(f)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "pdxparks: config file %q not found\n", f.configPath)
		} else {
			fmt.Fprintf(stderr, "pdxparks: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// Logs always go to stderr: with the stdio transport stdout carries the
	// protocol.
	lv := new(slog.LevelVar)
	lv.Set(cfg.Server.LogLevel.SlogLevel())
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lv})))

	slog.Info("pdxparks starting",
		"version", version,
		"config", f.configPath,
		"transport", cfg.Server.Transport,
		"log_level", cfg.Server.LogLevel,
	)
	printStartupSummary(stderr, cfg)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(context.Background(), observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []app.Option{app.WithVersion(version), app.WithLogLevel(lv)}
	if f.configPath != "" {
		opts = append(opts, app.WithConfigFile(f.configPath, f.overlay))
	}
	application, err := app.New(cfg, opts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}
	if err := application.Store().Err(); err != nil {
		slog.Warn("parks dataset unavailable, every lookup will miss until it loads",
			"path", cfg.Data.Path, "err", err)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

func printStartupSummary(w io.Writer, cfg *config.Config) {
	endpoint := "stdin/stdout"
	if cfg.Server.Transport == mcp.TransportStreamableHTTP {
		endpoint = "http://" + cfg.Server.Addr() + app.MCPPath
	}
	watch := "(disabled)"
	if cfg.Data.WatchInterval > 0 {
		watch = cfg.Data.WatchInterval.String()
	}
	fmt.Fprintln(w, "╔═══════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║              pdxparks — startup summary           ║")
	fmt.Fprintln(w, "╠═══════════════════════════════════════════════════╣")
	fmt.Fprintf(w, "║  Transport   : %-34s ║\n", cfg.Server.Transport)
	fmt.Fprintf(w, "║  Endpoint    : %-34s ║\n", endpoint)
	fmt.Fprintf(w, "║  Dataset     : %-34s ║\n", cfg.Data.Path)
	fmt.Fprintf(w, "║  Watch every : %-34s ║\n", watch)
	fmt.Fprintln(w, "╚═══════════════════════════════════════════════════╝")
}
