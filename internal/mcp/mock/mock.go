// Package mock provides an in-memory test double for the [mcp.Host] interface.
//
// [Host] records every method call for assertion in tests and exposes exported
// fields that control what the mock returns. It is safe for concurrent use via
// an internal [sync.Mutex].
//
// Typical usage:
//
//	h := &mock.Host{}
//	h.DispatchResult = &mcp.ToolResult{Content: "it appears you are looking for parks in the: north ..."}
//
//	// inject h into the system under test …
//
//	if got := h.CallCount("Dispatch"); got != 1 {
//	    t.Errorf("expected 1 Dispatch call, got %d", got)
//	}
package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/MrWong99/pdxparks/internal/mcp"
	"github.com/MrWong99/pdxparks/internal/mcp/tools"
)

// Call records the name and arguments of a single method invocation.
type Call struct {
	// Method is the name of the interface method that was called.
	Method string

	// Args holds the non-context arguments passed to the method, in order.
	Args []any
}

// Host is a configurable test double for [mcp.Host].
// All exported *Err fields default to nil (success); all exported *Result
// fields default to nil / zero values.
type Host struct {
	mu sync.Mutex

	// calls records every method invocation in order.
	calls []Call

	// registered holds tools accepted by Register; returned by Tools.
	registered []tools.Tool

	// ──── Register ─────────────────────────────────────────────────────────

	// RegisterErr is returned by [Host.Register] when non-nil. The tool is
	// not recorded in that case.
	RegisterErr error

	// ──── Dispatch ─────────────────────────────────────────────────────────

	// DispatchResult is returned by [Host.Dispatch] when DispatchErr is nil.
	// When nil and DispatchErr is also nil, a zero-value *ToolResult is
	// returned.
	DispatchResult *mcp.ToolResult

	// DispatchErr is returned by [Host.Dispatch] when non-nil.
	DispatchErr error

	// ──── Stats ────────────────────────────────────────────────────────────

	// StatsResult is returned by [Host.Stats].
	StatsResult []mcp.ToolStats
}

// Calls returns a copy of all recorded method invocations.
func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

// CallCount returns how many times the named method was invoked.
func (h *Host) CallCount(method string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears all recorded calls without altering response configuration.
func (h *Host) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

// Register implements [mcp.Host].
func (h *Host) Register(tool tools.Tool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, Call{Method: "Register", Args: []any{tool.Name}})
	if h.RegisterErr != nil {
		return h.RegisterErr
	}
	h.registered = append(h.registered, tool)
	return nil
}

// Tools implements [mcp.Host]. It returns the tools accepted by Register in
// registration order.
func (h *Host) Tools() []tools.Tool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, Call{Method: "Tools"})
	out := make([]tools.Tool, len(h.registered))
	copy(out, h.registered)
	return out
}

// Dispatch implements [mcp.Host].
func (h *Host) Dispatch(_ context.Context, name string, args json.RawMessage) (*mcp.ToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, Call{Method: "Dispatch", Args: []any{name, string(args)}})
	if h.DispatchErr != nil {
		return nil, h.DispatchErr
	}
	if h.DispatchResult == nil {
		return &mcp.ToolResult{}, nil
	}
	// Return a copy so the caller cannot mutate the configured result.
	cp := *h.DispatchResult
	return &cp, nil
}

// Stats implements [mcp.Host].
func (h *Host) Stats() []mcp.ToolStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, Call{Method: "Stats"})
	out := make([]mcp.ToolStats, len(h.StatsResult))
	copy(out, h.StatsResult)
	return out
}

// Ensure Host satisfies the interface at compile time.
var _ mcp.Host = (*Host)(nil)
