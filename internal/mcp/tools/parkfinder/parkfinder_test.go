package parkfinder

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrWong99/pdxparks/internal/observe"
	"github.com/MrWong99/pdxparks/internal/parks"
)

func testStore() *parks.Store {
	return parks.NewStaticStore(parks.NewTable(map[parks.District][]string{
		parks.North:     {"Cathedral Park"},
		parks.Northwest: {"Forest Park", "Wallace Park"},
	}))
}

// call runs the single exported tool with raw JSON args.
func call(t *testing.T, src TableSource, args string) (string, error) {
	t.Helper()
	ts := Tools(src, nil)
	if len(ts) != 1 {
		t.Fatalf("Tools() returned %d tools, want 1", len(ts))
	}
	return ts[0].Handler(context.Background(), json.RawMessage(args))
}

// ─────────────────────────────────────────────────────────────────────────────
// Definition
// ─────────────────────────────────────────────────────────────────────────────

func TestTools_Definition(t *testing.T) {
	t.Parallel()

	tool := Tools(testStore(), nil)[0]
	if tool.Name != "choose_pdx_park" {
		t.Errorf("Name = %q, want choose_pdx_park", tool.Name)
	}
	if tool.Description == "" {
		t.Error("Description is empty")
	}
	if tool.InputSchema == nil || tool.InputSchema.Type != "object" {
		t.Fatalf("InputSchema = %+v, want object schema", tool.InputSchema)
	}
	if _, ok := tool.InputSchema.Properties["location"]; !ok {
		t.Error("schema has no location property")
	}
	if !slices.Contains(tool.InputSchema.Required, "location") {
		t.Errorf("Required = %v, want location", tool.InputSchema.Required)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Handler
// ─────────────────────────────────────────────────────────────────────────────

func TestHandler_Hit(t *testing.T) {
	t.Parallel()

	got, err := call(t, testStore(), `{"location": "northwest"}`)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	want := "it appears you are looking for parks in the: northwest \n here are some suggestions \n " +
		" * Forest Park \n * Wallace Park \n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHandler_NormalizesInput(t *testing.T) {
	t.Parallel()

	got, err := call(t, testStore(), `{"location": "  NORTH "}`)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(got, "Cathedral Park") {
		t.Errorf("got %q, want north suggestions", got)
	}
}

func TestHandler_Miss(t *testing.T) {
	t.Parallel()

	for _, loc := range []string{"weast", "", "southeast"} {
		got, err := call(t, testStore(), `{"location": "`+loc+`"}`)
		if err != nil {
			t.Fatalf("handler error for %q: %v", loc, err)
		}
		if got != parks.InvalidLocationMessage {
			t.Errorf("location %q: got %q, want invalid-location message", loc, got)
		}
	}
}

func TestHandler_BadArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args string
	}{
		{"missing location", `{}`},
		{"empty args", ``},
		{"null location", `{"location": null}`},
		{"wrong type", `{"location": 42}`},
		{"not json", `location=north`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := call(t, testStore(), tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := call(t, testStore(), `{}`); !errors.Is(err, errMissingLocation) {
		t.Errorf("missing location err = %v, want errMissingLocation", err)
	}
}

func TestHandler_ReadsTableAtCallTime(t *testing.T) {
	t.Parallel()

	src := &swappableSource{}
	handler := Tools(src, nil)[0].Handler

	got, _ := handler(context.Background(), json.RawMessage(`{"location":"north"}`))
	if got != parks.InvalidLocationMessage {
		t.Fatalf("empty source should miss, got %q", got)
	}

	src.table = parks.NewTable(map[parks.District][]string{parks.North: {"Peninsula Park"}})
	got, _ = handler(context.Background(), json.RawMessage(`{"location":"north"}`))
	if !strings.Contains(got, "Peninsula Park") {
		t.Errorf("handler did not see the new table: %q", got)
	}
}

type swappableSource struct{ table *parks.Table }

func (s *swappableSource) Table() *parks.Table { return s.table }

func TestHandler_RecordsLookupMetric(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	met, err := observe.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	if err != nil {
		t.Fatal(err)
	}
	handler := Tools(testStore(), met)[0].Handler
	_, _ = handler(context.Background(), json.RawMessage(`{"location":"north"}`))
	_, _ = handler(context.Background(), json.RawMessage(`{"location":"weast"}`))
	_, _ = handler(context.Background(), json.RawMessage(`{"location":"weast"}`))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	results := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "pdxparks.lookup.results" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				r, _ := dp.Attributes.Value("result")
				results[r.AsString()] += dp.Value
			}
		}
	}
	if results["hit"] != 1 || results["miss"] != 2 {
		t.Errorf("lookup results = %v, want hit=1 miss=2", results)
	}
}
