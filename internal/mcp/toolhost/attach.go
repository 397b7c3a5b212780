package toolhost

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/pdxparks/internal/mcp"
)

// Attach registers every tool currently held by h on srv. See [AttachHost].
func (h *Host) Attach(srv *mcpsdk.Server) {
	AttachHost(srv, h)
}

// AttachHost registers every tool held by h on srv. Each SDK handler forwards
// the raw arguments to h.Dispatch and converts the result into a single text
// content block. Any [mcp.Host] works, which lets tests attach a double.
func AttachHost(srv *mcpsdk.Server, h mcp.Host) {
	handler := sdkHandler(h)
	for _, t := range h.Tools() {
		srv.AddTool(&mcpsdk.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}, handler)
	}
}

// sdkHandler returns the raw SDK handler shared by all attached tools.
func sdkHandler(h mcp.Host) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		res, err := h.Dispatch(ctx, req.Params.Name, req.Params.Arguments)
		if err != nil {
			if errors.Is(err, mcp.ErrUnknownTool) {
				return toolError(err.Error()), nil
			}
			return nil, err
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: res.Content}},
			IsError: res.IsError,
		}, nil
	}
}

func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}
