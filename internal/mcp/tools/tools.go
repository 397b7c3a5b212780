// Package tools defines the shared [Tool] type used by all built-in MCP tool
// packages. Each sub-package exports a constructor that returns a slice of
// [Tool] values ready for registration with the tool host.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Handler executes a tool with the raw JSON arguments sent by the client and
// returns the text result. A non-nil error is reported to the client as a
// tool error result, not as a protocol failure.
//
// Implementations must be safe for concurrent use and must respect context
// cancellation.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool is a named, remotely invokable operation.
type Tool struct {
	// Name is the unique identifier clients use in tools/call.
	Name string

	// Description is shown to clients (and the models driving them) to
	// explain when to call the tool.
	Description string

	// InputSchema describes the JSON object accepted as arguments. It must
	// have type "object".
	InputSchema *jsonschema.Schema

	// Handler runs the tool.
	Handler Handler
}

// SchemaFor infers the input schema for the argument struct T. It panics if T
// cannot be described, which only happens for programmer errors such as
// channel or function fields.
func SchemaFor[T any]() *jsonschema.Schema {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("tools: infer schema for %T: %v", *new(T), err))
	}
	return s
}

// DecodeArgs unmarshals args into v. Nil or empty args decode as "{}".
func DecodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return json.Unmarshal(args, v)
}
