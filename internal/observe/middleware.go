package observe

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

// sessionHeader carries the streamable-http session id assigned by the MCP
// server.
const sessionHeader = "Mcp-Session-Id"

// routes are the paths served by pdxparks. Anything else is reported as
// "other" so that scanners cannot blow up metric cardinality.
var routes = map[string]bool{
	"/mcp":     true,
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// quietRoutes are polled by orchestrators and scrapers and log at debug.
var quietRoutes = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// route maps a request path onto its metric label.
func route(path string) string {
	if routes[path] {
		return path
	}
	return "other"
}

// statusClass turns 404 into "4xx".
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// responseWriter remembers the status code written by the handler. It keeps
// Flush working, which the event streams of the MCP endpoint rely on.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets [http.ResponseController] reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Middleware instruments every request with a server span (continuing any
// incoming W3C trace context), an X-Correlation-ID response header holding
// the trace id, a duration sample in [Metrics.HTTPRequestDuration] labelled by
// method, route and status class, and a completion log line.
func Middleware(m *Metrics) func(http.Handler) http.Handler {
	prop := propagation.TraceContext{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rt := route(r.URL.Path)

			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := StartSpan(ctx, "HTTP "+r.Method+" "+rt,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					semconv.HTTPRoute(rt),
				),
			)
			defer span.End()
			if sid := r.Header.Get(sessionHeader); sid != "" {
				span.SetAttributes(attribute.String("mcp.session_id", sid))
			}

			cid := CorrelationID(ctx)
			if cid != "" {
				w.Header().Set("X-Correlation-ID", cid)
			}
			prop.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(ctx))

			elapsed := time.Since(start)
			span.SetAttributes(semconv.HTTPResponseStatusCode(rw.status))
			m.HTTPRequestDuration.Record(ctx, elapsed.Seconds(),
				metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("route", rt),
					attribute.String("status", statusClass(rw.status)),
				),
			)

			level := slog.LevelInfo
			if quietRoutes[rt] {
				level = slog.LevelDebug
			}
			slog.LogAttrs(ctx, level, "http request",
				slog.String("trace_id", cid),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.status),
				slog.Duration("elapsed", elapsed),
			)
		})
	}
}
