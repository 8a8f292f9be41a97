// Package observability provides Prometheus metrics and lightweight
// span tracing for engine operations.
//
// Spans are stored in an in-memory ring buffer for inspection over the
// status endpoint; in a larger deployment the tracer would wrap an
// OpenTelemetry SDK instead.
package observability

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ═══════════════════════════════════════════════════════════════════════════
// Trace Spans
// ═══════════════════════════════════════════════════════════════════════════

// SpanKind classifies a span.
type SpanKind int

const (
	SpanInternal SpanKind = iota
	SpanServer
	SpanClient
)

// Span represents a unit of work within a trace.
type Span struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Operation string            `json:"operation"`
	Kind      SpanKind          `json:"kind"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Status    SpanStatus        `json:"status"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// SpanStatus indicates success/failure.
type SpanStatus int

const (
	SpanOK SpanStatus = iota
	SpanError
)

// ─── Tracer ─────────────────────────────────────────────────────────────────

// Tracer records spans in memory for inspection and export.
type Tracer struct {
	mu       sync.Mutex
	spans    []Span
	maxSpans int
	enabled  bool
}

// TracerConfig configures the tracer.
type TracerConfig struct {
	Enabled  bool
	MaxSpans int // ring buffer size (default 10_000)
}

// DefaultTracerConfig returns production defaults.
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		Enabled:  true,
		MaxSpans: 10_000,
	}
}

// NewTracer creates a new tracer.
func NewTracer(cfg TracerConfig) *Tracer {
	return &Tracer{
		spans:    make([]Span, 0, cfg.MaxSpans),
		maxSpans: cfg.MaxSpans,
		enabled:  cfg.Enabled,
	}
}

// StartSpan begins a new span with the given operation name.
// Returns the span (caller must call EndSpan when done).
func (t *Tracer) StartSpan(ctx context.Context, operation string, attrs map[string]string) *Span {
	if !t.enabled {
		return &Span{Operation: operation}
	}

	return &Span{
		TraceID:   traceIDFromContext(ctx),
		SpanID:    generateID(),
		ParentID:  spanIDFromContext(ctx),
		Operation: operation,
		Kind:      SpanInternal,
		StartTime: time.Now(),
		Status:    SpanOK,
		Attrs:     attrs,
	}
}

// EndSpan completes a span and records it.
func (t *Tracer) EndSpan(span *Span, err error) {
	if !t.enabled || span == nil {
		return
	}

	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	if err != nil {
		span.Status = SpanError
		if span.Attrs == nil {
			span.Attrs = make(map[string]string)
		}
		span.Attrs["error"] = err.Error()
		TraceErrors.Inc()
	}
	TracesRecorded.Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Ring buffer: overwrite oldest if at capacity
	if len(t.spans) >= t.maxSpans {
		t.spans = t.spans[1:]
	}
	t.spans = append(t.spans, *span)
}

// Spans returns a copy of the recent spans.
func (t *Tracer) Spans(limit int) []Span {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || limit > len(t.spans) {
		limit = len(t.spans)
	}

	// Return most recent spans
	start := len(t.spans) - limit
	out := make([]Span, limit)
	copy(out, t.spans[start:])
	return out
}

// SpanCount returns the number of recorded spans.
func (t *Tracer) SpanCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}

// Reset clears all recorded spans.
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = t.spans[:0]
}

// ─── Context Helpers ────────────────────────────────────────────────────────

type contextKey string

const (
	traceIDKey contextKey = "curia-trace-id"
	spanIDKey  contextKey = "curia-span-id"
)

// WithTraceID returns a context with the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithSpanID returns a context with the given span ID.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

func traceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return generateID()
}

func spanIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(spanIDKey).(string); ok {
		return v
	}
	return ""
}

// generateID creates a short unique ID (not cryptographically secure — fine for tracing).
var spanCounter atomic.Int64

func generateID() string {
	n := spanCounter.Add(1)
	return fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), n)
}

// ═══════════════════════════════════════════════════════════════════════════
// Prometheus Metrics
// ═══════════════════════════════════════════════════════════════════════════

// ─── Score Metrics ──────────────────────────────────────────────────────────

// Subjects tracks the number of known subjects.
var Subjects = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "curia",
	Subsystem: "score",
	Name:      "subjects",
	Help:      "Number of subjects with a score account.",
})

// Adjustments tracks score adjustments by cause.
var Adjustments = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "score",
	Name:      "adjustments_total",
	Help:      "Total score adjustments by cause.",
}, []string{"cause"})

// ─── Verification Metrics ───────────────────────────────────────────────────

// Items tracks items by verification state.
var Items = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "curia",
	Subsystem: "verify",
	Name:      "items",
	Help:      "Number of items by verification state.",
}, []string{"state"})

// Reveals tracks accepted reveals by outcome.
var Reveals = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "verify",
	Name:      "reveals_total",
	Help:      "Total accepted reveals by outcome.",
}, []string{"outcome"})

// RevealFailures tracks reveals rejected with a hash mismatch.
var RevealFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "verify",
	Name:      "reveal_failures_total",
	Help:      "Total reveals that did not match their commitment.",
})

// SecretReuseWarnings tracks reveals whose secret was probably seen before.
var SecretReuseWarnings = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "verify",
	Name:      "secret_reuse_warnings_total",
	Help:      "Total reveals flagged for probable secret reuse.",
})

// ─── Governance Metrics ─────────────────────────────────────────────────────

// Proposals tracks proposals reaching a terminal state.
var Proposals = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "governance",
	Name:      "proposals_total",
	Help:      "Total proposals by terminal state.",
}, []string{"state"})

// Votes tracks accepted votes.
var Votes = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "governance",
	Name:      "votes_total",
	Help:      "Total accepted votes.",
})

// ─── Bonding Metrics ────────────────────────────────────────────────────────

// ActiveBonds tracks the number of live bond records.
var ActiveBonds = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "curia",
	Subsystem: "bonding",
	Name:      "active_bonds",
	Help:      "Number of live (subject, target) bond records.",
})

// BondedAmount tracks the total bonded score.
var BondedAmount = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "curia",
	Subsystem: "bonding",
	Name:      "bonded_amount",
	Help:      "Total score currently bonded across all subjects.",
})

// PendingUnbonds tracks outstanding unbond requests.
var PendingUnbonds = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "curia",
	Subsystem: "bonding",
	Name:      "pending_unbonds",
	Help:      "Number of outstanding unbond requests.",
})

// ─── Badge Metrics ──────────────────────────────────────────────────────────

// BadgeClaims tracks granted badge claims.
var BadgeClaims = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "badge",
	Name:      "claims_total",
	Help:      "Total badge claims granted.",
})

// ─── Journal Metrics ────────────────────────────────────────────────────────

// JournalWriteFailures tracks best-effort journal appends that failed.
var JournalWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "journal",
	Name:      "write_failures_total",
	Help:      "Total journal writes that failed and were skipped.",
})

// ─── API Metrics ────────────────────────────────────────────────────────────

// APIRequests tracks HTTP requests by route and status class.
var APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "api",
	Name:      "requests_total",
	Help:      "Total API requests by route and status.",
}, []string{"route", "status"})

// ─── Trace Metrics ──────────────────────────────────────────────────────────

// TracesRecorded tracks total spans recorded.
var TracesRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "traces",
	Name:      "spans_recorded_total",
	Help:      "Total trace spans recorded.",
})

// TraceErrors tracks error spans.
var TraceErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "curia",
	Subsystem: "traces",
	Name:      "error_spans_total",
	Help:      "Total trace spans with error status.",
})
