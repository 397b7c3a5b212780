// Package toolhost provides a concrete implementation of the [mcp.Host]
// interface and bridges it onto an MCP server from the official Go SDK
// (github.com/modelcontextprotocol/go-sdk).
//
// Tools are kept in a concurrent-safe registry keyed by name. The SDK server
// only ever sees thin handlers that forward to [Host.Dispatch], so every call
// goes through the same path for tracing, metrics, and latency tracking
// regardless of transport.
//
// Typical usage:
//
//	h := toolhost.New(toolhost.WithMetrics(observe.DefaultMetrics()))
//	for _, t := range parkfinder.Tools(store, nil) {
//	    if err := h.Register(t); err != nil { ... }
//	}
//
//	srv := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "pdxparks"}, nil)
//	h.Attach(srv)
package toolhost

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/MrWong99/pdxparks/internal/mcp"
	"github.com/MrWong99/pdxparks/internal/mcp/tools"
	"github.com/MrWong99/pdxparks/internal/observe"
)

// toolEntry holds all metadata for a single registered tool.
type toolEntry struct {
	tool         tools.Tool
	measurements *rollingWindow
}

// Host is a concrete implementation of [mcp.Host].
//
// The zero value is NOT usable; create instances with [New].
type Host struct {
	mu    sync.RWMutex
	tools map[string]toolEntry // key: tool name

	metrics    *observe.Metrics
	windowSize int
}

// Compile-time check: Host must implement mcp.Host.
var _ mcp.Host = (*Host)(nil)

// Option configures a [Host].
type Option func(*Host)

// WithMetrics records every dispatch in m. Without it, only the in-process
// rolling windows are updated.
func WithMetrics(m *observe.Metrics) Option {
	return func(h *Host) { h.metrics = m }
}

// WithWindowSize sets the number of recent calls kept per tool for latency
// percentiles. The default is 100.
func WithWindowSize(n int) Option {
	return func(h *Host) { h.windowSize = n }
}

// New creates and returns a ready-to-use Host.
func New(opts ...Option) *Host {
	h := &Host{
		tools:      make(map[string]toolEntry),
		windowSize: defaultWindowSize,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register adds tool to the host.
//
// Register is safe for concurrent use, but tools registered after [Host.Attach]
// are not visible to that SDK server.
func (h *Host) Register(tool tools.Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool host: tool must have a non-empty name")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool host: tool %q must have a non-nil handler", tool.Name)
	}
	if tool.InputSchema == nil {
		return fmt.Errorf("tool host: tool %q must have an input schema", tool.Name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, dup := h.tools[tool.Name]; dup {
		return fmt.Errorf("tool host: tool %q is already registered", tool.Name)
	}
	h.tools[tool.Name] = toolEntry{
		tool:         tool,
		measurements: newRollingWindow(h.windowSize),
	}
	return nil
}

// Tools returns every registered tool sorted by name.
func (h *Host) Tools() []tools.Tool {
	h.mu.RLock()
	out := make([]tools.Tool, 0, len(h.tools))
	for _, e := range h.tools {
		out = append(out, e.tool)
	}
	h.mu.RUnlock()

	slices.SortFunc(out, func(a, b tools.Tool) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Dispatch runs the named tool. See [mcp.Host.Dispatch].
func (h *Host) Dispatch(ctx context.Context, name string, args json.RawMessage) (*mcp.ToolResult, error) {
	h.mu.RLock()
	entry, ok := h.tools[name]
	h.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", mcp.ErrUnknownTool, name)
	}

	ctx, span := observe.StartToolSpan(ctx, name)
	defer span.End()

	start := time.Now()
	output, err := entry.tool.Handler(ctx, args)
	duration := time.Since(start)

	entry.measurements.Record(duration, err != nil)

	status := "ok"
	result := &mcp.ToolResult{Content: output, Duration: duration}
	if err != nil {
		status = "error"
		result.Content = err.Error()
		result.IsError = true
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observe.Logger(ctx).Warn("tool returned an error", "tool", name, "err", err)
	} else {
		observe.Logger(ctx).Debug("tool call completed", "tool", name, "duration", duration)
	}
	if h.metrics != nil {
		h.metrics.RecordToolCall(ctx, name, status, duration.Seconds())
	}
	return result, nil
}

// Stats returns the measured behaviour of every registered tool, sorted by
// name.
func (h *Host) Stats() []mcp.ToolStats {
	h.mu.RLock()
	out := make([]mcp.ToolStats, 0, len(h.tools))
	for name, e := range h.tools {
		out = append(out, mcp.ToolStats{
			Name:      name,
			P50:       e.measurements.P50(),
			P99:       e.measurements.P99(),
			CallCount: e.measurements.Count(),
			ErrorRate: e.measurements.ErrorRate(),
		})
	}
	h.mu.RUnlock()

	slices.SortFunc(out, func(a, b mcp.ToolStats) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
