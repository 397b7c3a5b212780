// Package mcp defines the tool host that sits between the Model Context
// Protocol server and the in-process tools it exposes.
//
// Tools are registered explicitly by name; each incoming tools/call request
// is dispatched to the registered handler with the raw JSON arguments. The
// host tracks per-tool latency and error rate so operators can see how the
// server behaves without scraping metrics.
//
// Lifecycle:
//
//  1. Call [Host.Register] for each tool at startup.
//  2. Attach the host to an SDK server (see package toolhost).
//  3. Incoming calls reach [Host.Dispatch].
//
// All methods must be safe for concurrent use.
package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/MrWong99/pdxparks/internal/mcp/tools"
)

// ErrUnknownTool is returned by [Host.Dispatch] when no tool with the
// requested name is registered.
var ErrUnknownTool = errors.New("mcp: unknown tool")

// Host maps tool names to handlers and dispatches calls by name.
//
// Implementations must be safe for concurrent use.
type Host interface {
	// Register adds tool to the host. It returns an error if the tool has an
	// empty name, a nil handler or input schema, or a name that is already
	// registered.
	Register(tool tools.Tool) error

	// Tools returns every registered tool sorted by name.
	Tools() []tools.Tool

	// Dispatch runs the named tool with args, a JSON object (nil or empty is
	// treated as "{}").
	//
	// A non-nil *ToolResult is returned on success even when
	// [ToolResult.IsError] is true (application-level error). A Go error is
	// returned only when the tool cannot be dispatched, e.g. [ErrUnknownTool].
	Dispatch(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)

	// Stats returns the measured behaviour of every registered tool, sorted
	// by name.
	Stats() []ToolStats
}
