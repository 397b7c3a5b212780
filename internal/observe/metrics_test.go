package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

// sumFor returns the value of the counter data point whose attributes include
// every key/value pair in want.
func sumFor(t *testing.T, met *metricdata.Metrics, want map[string]string) int64 {
	t.Helper()
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not an int64 sum", met.Name)
	}
	for _, dp := range sum.DataPoints {
		match := true
		for k, v := range want {
			got, ok := dp.Attributes.Value(attribute.Key(k))
			if !ok || got.AsString() != v {
				match = false
				break
			}
		}
		if match {
			return dp.Value
		}
	}
	return 0
}

func TestRecordToolCall(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordToolCall(ctx, "choose_pdx_park", "ok", 0.0002)
	m.RecordToolCall(ctx, "choose_pdx_park", "ok", 0.0003)
	m.RecordToolCall(ctx, "choose_pdx_park", "error", 0.0001)

	rm := collect(t, reader)

	calls := findMetric(rm, "pdxparks.tool.calls")
	if calls == nil {
		t.Fatal("pdxparks.tool.calls not found")
	}
	if got := sumFor(t, calls, map[string]string{"tool": "choose_pdx_park", "status": "ok"}); got != 2 {
		t.Errorf("ok calls = %d, want 2", got)
	}
	if got := sumFor(t, calls, map[string]string{"tool": "choose_pdx_park", "status": "error"}); got != 1 {
		t.Errorf("error calls = %d, want 1", got)
	}

	dur := findMetric(rm, "pdxparks.tool.duration")
	if dur == nil {
		t.Fatal("pdxparks.tool.duration not found")
	}
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("pdxparks.tool.duration is not a histogram")
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 3 {
		t.Errorf("duration data points = %+v, want one point with 3 samples", hist.DataPoints)
	}
}

func TestRecordLookup(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLookup(ctx, "northwest")
	m.RecordLookup(ctx, "northwest")
	m.RecordLookup(ctx, "")

	rm := collect(t, reader)
	met := findMetric(rm, "pdxparks.lookup.results")
	if met == nil {
		t.Fatal("metric not found")
	}
	if got := sumFor(t, met, map[string]string{"district": "northwest", "result": "hit"}); got != 2 {
		t.Errorf("northwest hits = %d, want 2", got)
	}
	if got := sumFor(t, met, map[string]string{"result": "miss"}); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
}

func TestRecordDatasetLoad(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordDatasetLoad(ctx, "not_found", 0)
	m.RecordDatasetLoad(ctx, "ok", 5)

	rm := collect(t, reader)
	loads := findMetric(rm, "pdxparks.dataset.loads")
	if loads == nil {
		t.Fatal("pdxparks.dataset.loads not found")
	}
	if got := sumFor(t, loads, map[string]string{"status": "ok"}); got != 1 {
		t.Errorf("ok loads = %d, want 1", got)
	}
	if got := sumFor(t, loads, map[string]string{"status": "not_found"}); got != 1 {
		t.Errorf("not_found loads = %d, want 1", got)
	}

	gauge := findMetric(rm, "pdxparks.dataset.districts")
	if gauge == nil {
		t.Fatal("pdxparks.dataset.districts not found")
	}
	g, ok := gauge.Data.(metricdata.Gauge[int64])
	if !ok {
		t.Fatal("pdxparks.dataset.districts is not an int64 gauge")
	}
	if len(g.DataPoints) != 1 || g.DataPoints[0].Value != 5 {
		t.Errorf("districts gauge = %+v, want 5", g.DataPoints)
	}
}

func TestHTTPRequestDuration(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.HTTPRequestDuration.Record(context.Background(), 0.01,
		metric.WithAttributes(attribute.String("method", "POST"), attribute.String("route", "/mcp")),
	)

	rm := collect(t, reader)
	if findMetric(rm, "pdxparks.http.request.duration") == nil {
		t.Fatal("pdxparks.http.request.duration not found")
	}
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a == nil || a != b {
		t.Errorf("DefaultMetrics returned %p and %p, want the same non-nil pointer", a, b)
	}
}
