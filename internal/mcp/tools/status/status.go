// Package status provides the "server_status" liveness tool.
package status

import (
	"context"
	"encoding/json"

	"github.com/MrWong99/pdxparks/internal/mcp"
	"github.com/MrWong99/pdxparks/internal/mcp/tools"
)

// ToolName is the name clients use to call the status tool.
const ToolName = "server_status"

// Args is the (empty) input of the "server_status" tool.
type Args struct{}

// Text returns the status line for a server listening on addr over transport.
// For the stdio transport addr is ignored.
func Text(addr string, transport mcp.Transport) string {
	if transport == mcp.TransportStdio {
		addr = "stdio"
	}
	return "mcp server running on " + addr + " (" + string(transport) + ")"
}

// Tools returns the status tool. Any arguments sent by the client are ignored.
func Tools(addr string, transport mcp.Transport) []tools.Tool {
	msg := Text(addr, transport)
	return []tools.Tool{
		{
			Name:        ToolName,
			Description: "Report that the MCP server is running and where it is reachable.",
			InputSchema: tools.SchemaFor[Args](),
			Handler: func(context.Context, json.RawMessage) (string, error) {
				return msg, nil
			},
		},
	}
}
