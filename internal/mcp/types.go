package mcp

import "time"

// Transport selects how the MCP server talks to its client. It is chosen once
// at startup and cannot change while the server runs.
type Transport string

const (
	// TransportStdio exchanges JSON-RPC messages over stdin/stdout.
	TransportStdio Transport = "stdio"

	// TransportStreamableHTTP serves the MCP Streamable HTTP protocol on a
	// TCP listener.
	TransportStreamableHTTP Transport = "streamable-http"
)

// IsValid reports whether t is a recognised transport.
func (t Transport) IsValid() bool {
	return t == TransportStdio || t == TransportStreamableHTTP
}

// ToolResult holds the outcome of a single tool execution.
type ToolResult struct {
	// Content is the tool's textual output, returned to the client as a single
	// text content block.
	Content string

	// IsError indicates that the tool returned an application-level error
	// (as opposed to a dispatch failure returned via the Go error return
	// value). When IsError is true, Content contains the error message.
	IsError bool

	// Duration is the wall-clock time spent in the tool handler.
	Duration time.Duration
}

// ToolStats captures the measured runtime behaviour of a single tool over the
// host's rolling window.
type ToolStats struct {
	// Name is the tool's unique identifier.
	Name string

	// P50 is the observed median execution latency.
	P50 time.Duration

	// P99 is the observed 99th-percentile execution latency.
	P99 time.Duration

	// CallCount is the total number of times this tool has been invoked since
	// the host was created.
	CallCount int

	// ErrorRate is the fraction of calls in the window that returned an
	// error result (0.0–1.0).
	ErrorRate float64
}
