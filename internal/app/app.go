// Package app wires the pdxparks subsystems into a running MCP server.
//
// The App struct owns the full lifecycle: New loads the dataset, registers the
// tools, and builds the SDK server; Run serves the configured transport
// alongside the background reloaders until the context ends.
//
// For testing, inject doubles via functional options (WithStore,
// WithToolHost, WithTransport, WithListener, etc.). When an option is not
// provided, New creates real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/pdxparks/internal/config"
	"github.com/MrWong99/pdxparks/internal/health"
	"github.com/MrWong99/pdxparks/internal/mcp"
	"github.com/MrWong99/pdxparks/internal/mcp/toolhost"
	"github.com/MrWong99/pdxparks/internal/mcp/tools"
	"github.com/MrWong99/pdxparks/internal/mcp/tools/parkfinder"
	"github.com/MrWong99/pdxparks/internal/mcp/tools/status"
	"github.com/MrWong99/pdxparks/internal/observe"
	"github.com/MrWong99/pdxparks/internal/parks"
)

// ServerName is the implementation name announced to MCP clients.
const ServerName = "pdxparks"

// MCPPath is the HTTP route of the streamable-http endpoint.
const MCPPath = "/mcp"

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

const instructions = "Suggests Portland, Oregon parks by district. " +
	"Call choose_pdx_park with one of: north, northeast, southeast, southwest, northwest."

// App owns all subsystem lifetimes.
type App struct {
	cfg     *config.Config
	version string

	store    *parks.Store
	host     mcp.Host
	server   *mcpsdk.Server
	metrics  *observe.Metrics
	registry *prometheus.Registry

	// statusAddr is the address reported by the server_status tool.
	statusAddr string

	listener  net.Listener
	transport mcpsdk.Transport

	logLevel   *slog.LevelVar
	cfgPath    string
	cfgOverlay func(*config.Config) error
	cfgWatcher *config.Watcher
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithVersion sets the version announced to MCP clients.
func WithVersion(v string) Option {
	return func(a *App) { a.version = v }
}

// WithStore injects a park store instead of loading cfg.Data.Path.
func WithStore(s *parks.Store) Option {
	return func(a *App) { a.store = s }
}

// WithToolHost injects a tool host instead of creating a toolhost.Host.
func WithToolHost(h mcp.Host) Option {
	return func(a *App) { a.host = h }
}

// WithMetrics injects the metric instruments instead of the global defaults.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithPrometheusRegistry serves /metrics from reg instead of the default
// Prometheus registry.
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(a *App) { a.registry = reg }
}

// WithListener serves streamable-http on ln instead of binding
// cfg.Server.Addr(). The app takes ownership of ln.
func WithListener(ln net.Listener) Option {
	return func(a *App) { a.listener = ln }
}

// WithTransport replaces the stdio transport. Only used when
// cfg.Server.Transport is stdio.
func WithTransport(t mcpsdk.Transport) Option {
	return func(a *App) { a.transport = t }
}

// WithLogLevel lets configuration reloads adjust the running log level.
func WithLogLevel(lv *slog.LevelVar) Option {
	return func(a *App) { a.logLevel = lv }
}

// WithConfigFile watches the YAML config at path while running. overlay is
// re-applied to every reloaded file so environment variables and flags keep
// precedence. Only the log level is applied live; other changes are logged
// as requiring a restart.
func WithConfigFile(path string, overlay func(*config.Config) error) Option {
	return func(a *App) {
		a.cfgPath = path
		a.cfgOverlay = overlay
	}
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together.
//
// A missing or malformed dataset is not an error: the app starts degraded and
// every lookup answers with the invalid-location message until a reload
// succeeds.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("app: invalid config: %w", err)
	}

	a := &App{cfg: cfg, version: "dev"}
	for _, o := range opts {
		o(a)
	}

	// ── 1. Metrics ───────────────────────────────────────────────────────
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 2. Dataset ───────────────────────────────────────────────────────
	if a.store == nil {
		a.store = parks.NewStore(cfg.Data.Path, parks.WithLoadObserver(a.observeLoad))
	}

	// ── 3. Tools ─────────────────────────────────────────────────────────
	a.statusAddr = cfg.Server.Addr()
	if a.listener != nil {
		a.statusAddr = a.listener.Addr().String()
	}
	if err := a.initTools(); err != nil {
		return nil, fmt.Errorf("app: init tools: %w", err)
	}

	// ── 4. MCP server ────────────────────────────────────────────────────
	a.server = mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: ServerName, Version: a.version},
		&mcpsdk.ServerOptions{Instructions: instructions},
	)
	toolhost.AttachHost(a.server, a.host)

	// ── 5. Config watcher ────────────────────────────────────────────────
	if a.cfgPath != "" {
		w, err := config.NewWatcher(a.cfgPath, a.applyConfig, config.WithOverlay(a.cfgOverlay))
		if err != nil {
			return nil, fmt.Errorf("app: watch config: %w", err)
		}
		a.cfgWatcher = w
	}

	return a, nil
}

// initTools registers the built-in tools with the host.
func (a *App) initTools() error {
	if a.host == nil {
		a.host = toolhost.New(toolhost.WithMetrics(a.metrics))
	}

	var all []tools.Tool
	all = append(all, parkfinder.Tools(a.store, a.metrics)...)
	all = append(all, status.Tools(a.statusAddr, a.cfg.Server.Transport)...)
	for _, t := range all {
		if err := a.host.Register(t); err != nil {
			return err
		}
		slog.Debug("registered tool", "name", t.Name)
	}
	return nil
}

// Server returns the underlying MCP server.
func (a *App) Server() *mcpsdk.Server { return a.server }

// Store returns the park store backing the lookup tool.
func (a *App) Store() *parks.Store { return a.store }

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run serves the configured transport until ctx is cancelled or the transport
// ends (for stdio, when the client closes stdin). Background reloaders run
// alongside and stop with it.
//
// A listen failure is returned immediately.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serve, err := a.prepareServe()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return serve(ctx)
	})
	if iv := a.cfg.Data.WatchInterval; iv > 0 {
		w := parks.NewWatcher(a.store, parks.WithInterval(iv))
		g.Go(func() error { return w.Run(ctx) })
	}
	if a.cfgWatcher != nil {
		g.Go(func() error { return a.cfgWatcher.Run(ctx) })
	}
	g.Go(func() error { return a.reloadOnHangup(ctx) })

	err = g.Wait()
	a.logStats()
	return err
}

// prepareServe binds the listener (for streamable-http) and returns the
// function that serves the transport.
func (a *App) prepareServe() (func(context.Context) error, error) {
	switch a.cfg.Server.Transport {
	case mcp.TransportStdio:
		return a.serveStdio, nil
	case mcp.TransportStreamableHTTP:
		ln := a.listener
		if ln == nil {
			var err error
			if ln, err = net.Listen("tcp", a.cfg.Server.Addr()); err != nil {
				return nil, fmt.Errorf("app: listen on %s: %w", a.cfg.Server.Addr(), err)
			}
		}
		return func(ctx context.Context) error { return a.serveHTTP(ctx, ln) }, nil
	default:
		return nil, fmt.Errorf("app: transport %q is not supported", a.cfg.Server.Transport)
	}
}

func (a *App) serveStdio(ctx context.Context) error {
	t := a.transport
	if t == nil {
		t = &mcpsdk.StdioTransport{}
	}
	slog.Info("serving MCP over stdio")
	// Errors after ctx ends are the transport being torn down.
	if err := a.server.Run(ctx, t); err != nil && ctx.Err() == nil {
		return fmt.Errorf("app: serve stdio: %w", err)
	}
	return nil
}

func (a *App) serveHTTP(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with ctx so open event streams do not hold up
		// shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	slog.Info("serving MCP over streamable-http",
		"addr", ln.Addr().String(),
		"endpoint", MCPPath,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown did not complete, closing connections", "err", err)
		_ = srv.Close()
	}
	return nil
}

// Handler returns the HTTP handler of the streamable-http transport:
// the MCP endpoint, the probe routes, and /metrics, all wrapped in the
// observability middleware.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(MCPPath, mcpsdk.NewStreamableHTTPHandler(
		func(*http.Request) *mcpsdk.Server { return a.server },
		nil,
	))
	health.New(health.Dataset(a.store)).Register(mux)
	mux.Handle("GET /metrics", observe.MetricsHandler(a.registry))
	return observe.Middleware(a.metrics)(mux)
}

// ─── Reload ──────────────────────────────────────────────────────────────────

// Reload re-reads the dataset file. A failed reload keeps the table being
// served.
func (a *App) Reload() {
	changed, err := a.store.Reload()
	switch {
	case err != nil:
		slog.Warn("dataset reload failed, keeping previous table", "err", err)
	case !changed:
		slog.Info("dataset unchanged", "path", a.store.Path())
	}
}

func (a *App) reloadOnHangup(ctx context.Context) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			slog.Info("SIGHUP received, reloading dataset")
			a.Reload()
		}
	}
}

// observeLoad records every dataset load attempt.
func (a *App) observeLoad(t *parks.Table, err error) {
	st := "ok"
	if err != nil {
		st = parks.ErrorKind(err)
	}
	a.metrics.RecordDatasetLoad(context.Background(), st, t.Len())
}

// applyConfig is the config watcher callback.
func (a *App) applyConfig(old, new *config.Config) {
	d := config.Diff(old, new)
	if d.LogLevelChanged && a.logLevel != nil {
		a.logLevel.Set(d.NewLogLevel.SlogLevel())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("config changes take effect after restart", "keys", d.RestartRequired)
	}
}

// logStats writes the per-tool call summary collected during Run.
func (a *App) logStats() {
	for _, s := range a.host.Stats() {
		if s.CallCount == 0 {
			continue
		}
		slog.Info("tool summary",
			"tool", s.Name,
			"calls", s.CallCount,
			"p50", s.P50,
			"p99", s.P99,
			"error_rate", s.ErrorRate,
		)
	}
}
