package status

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/MrWong99/pdxparks/internal/mcp"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr      string
		transport mcp.Transport
		want      string
	}{
		{"127.0.0.1:8000", mcp.TransportStreamableHTTP, "mcp server running on 127.0.0.1:8000 (streamable-http)"},
		{"[::1]:9000", mcp.TransportStreamableHTTP, "mcp server running on [::1]:9000 (streamable-http)"},
		{"127.0.0.1:8000", mcp.TransportStdio, "mcp server running on stdio (stdio)"},
		{"", mcp.TransportStdio, "mcp server running on stdio (stdio)"},
	}
	for _, tt := range tests {
		if got := Text(tt.addr, tt.transport); got != tt.want {
			t.Errorf("Text(%q, %q) = %q, want %q", tt.addr, tt.transport, got, tt.want)
		}
	}
}

func TestTools_Handler(t *testing.T) {
	t.Parallel()

	ts := Tools("0.0.0.0:8000", mcp.TransportStreamableHTTP)
	if len(ts) != 1 || ts[0].Name != "server_status" {
		t.Fatalf("Tools() = %+v, want one server_status tool", ts)
	}
	if ts[0].InputSchema == nil || ts[0].InputSchema.Type != "object" {
		t.Errorf("InputSchema = %+v, want object schema", ts[0].InputSchema)
	}

	for _, args := range []string{``, `{}`, `{"extra": true}`} {
		got, err := ts[0].Handler(context.Background(), json.RawMessage(args))
		if err != nil {
			t.Fatalf("handler(%q) error: %v", args, err)
		}
		if !strings.Contains(got, "mcp server running on") {
			t.Errorf("handler(%q) = %q, want liveness text", args, got)
		}
	}
}
