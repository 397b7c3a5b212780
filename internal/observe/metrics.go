// Package observe provides application-wide observability primitives for
// pdxparks: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all pdxparks metrics.
const meterName = "github.com/MrWong99/pdxparks"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ToolExecutionDuration tracks MCP tool execution latency. Use with
	// attribute: attribute.String("tool", ...)
	ToolExecutionDuration metric.Float64Histogram

	// ToolCalls counts tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter

	// LookupResults counts park lookups. Use with attributes:
	//   attribute.String("district", ...), attribute.String("result", "hit"|"miss")
	LookupResults metric.Int64Counter

	// DatasetLoads counts dataset load attempts. Use with attribute:
	//   attribute.String("status", "ok"|"not_found"|"malformed"|"unexpected")
	DatasetLoads metric.Int64Counter

	// DatasetDistricts reports the number of districts in the served table.
	DatasetDistricts metric.Int64Gauge

	// HTTPRequestDuration tracks HTTP request processing time. Attributes:
	// method, route (see [Middleware]) and status class ("2xx", "5xx", ...).
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Lookups are
// in-memory, so the interesting range sits well below a millisecond.
var latencyBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ToolExecutionDuration, err = m.Float64Histogram("pdxparks.tool.duration",
		metric.WithDescription("Latency of MCP tool execution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.ToolCalls, err = m.Int64Counter("pdxparks.tool.calls",
		metric.WithDescription("Total tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.LookupResults, err = m.Int64Counter("pdxparks.lookup.results",
		metric.WithDescription("Total park lookups by district and result."),
	); err != nil {
		return nil, err
	}
	if met.DatasetLoads, err = m.Int64Counter("pdxparks.dataset.loads",
		metric.WithDescription("Total dataset load attempts by status."),
	); err != nil {
		return nil, err
	}

	if met.DatasetDistricts, err = m.Int64Gauge("pdxparks.dataset.districts",
		metric.WithDescription("Number of districts in the dataset currently served."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("pdxparks.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status class."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordToolCall records a tool call counter increment and its duration.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string, seconds float64) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
	m.ToolExecutionDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("tool", tool)),
	)
}

// RecordLookup records a park lookup. district is empty on a miss.
func (m *Metrics) RecordLookup(ctx context.Context, district string) {
	result := "hit"
	if district == "" {
		result = "miss"
	}
	m.LookupResults.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("district", district),
			attribute.String("result", result),
		),
	)
}

// RecordDatasetLoad records a dataset load attempt and the size of the table
// being served afterwards. status is "ok" or the error kind.
func (m *Metrics) RecordDatasetLoad(ctx context.Context, status string, districts int) {
	m.DatasetLoads.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	m.DatasetDistricts.Record(ctx, int64(districts))
}
