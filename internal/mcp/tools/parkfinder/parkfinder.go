// Package parkfinder provides the built-in MCP tool that suggests Portland
// parks for a city district.
//
// One tool is exported via [Tools]:
//   - "choose_pdx_park": maps a free-text location onto the parks listed for
//     that district in the loaded dataset.
//
// The handler reads the current table from its [TableSource] on every call,
// so dataset reloads take effect without re-registering the tool.
package parkfinder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrWong99/pdxparks/internal/mcp/tools"
	"github.com/MrWong99/pdxparks/internal/observe"
	"github.com/MrWong99/pdxparks/internal/parks"
)

// ToolName is the name clients use to call the park lookup.
const ToolName = "choose_pdx_park"

const description = "Choose a park based on the location provided by the user. " +
	"location is one of the Portland districts north, northeast, southeast, southwest or northwest " +
	"(case and surrounding whitespace are ignored). " +
	"Returns the parks listed for that district, or the list of valid locations when nothing matches."

// TableSource supplies the district table to read at call time.
// [*parks.Store] satisfies it.
type TableSource interface {
	Table() *parks.Table
}

// Args is the input of the "choose_pdx_park" tool.
type Args struct {
	Location string `json:"location" jsonschema:"the area of Portland to search, e.g. northwest"`
}

// rawArgs mirrors [Args] with a pointer so a missing field can be told apart
// from an empty string.
type rawArgs struct {
	Location *string `json:"location"`
}

// errMissingLocation is returned when the client omits the location argument.
var errMissingLocation = errors.New("parkfinder: location is required")

// Tools returns the park lookup tool ready for registration with the tool
// host. m may be nil, in which case lookups are not counted.
func Tools(src TableSource, m *observe.Metrics) []tools.Tool {
	return []tools.Tool{
		{
			Name:        ToolName,
			Description: description,
			InputSchema: tools.SchemaFor[Args](),
			Handler:     newHandler(src, m),
		},
	}
}

func newHandler(src TableSource, m *observe.Metrics) tools.Handler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var a rawArgs
		if err := tools.DecodeArgs(args, &a); err != nil {
			return "", fmt.Errorf("parkfinder: failed to parse arguments: %w", err)
		}
		if a.Location == nil {
			return "", errMissingLocation
		}

		res := parks.Lookup(src.Table(), *a.Location)
		if m != nil {
			m.RecordLookup(ctx, string(res.District))
		}
		if !res.Hit() {
			observe.Logger(ctx).Debug("parkfinder: location did not match a district", "location", *a.Location)
		}
		return res.Text, nil
	}
}
