package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var expvarSeq uint64

// ExpvarMetricsRecorder publishes per-operation latency totals and outcome
// counters through expvar.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
}

// ExpvarMetricsSnapshot is a copy of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder publishes a recorder under name, or under a
// generated unique name when name is empty. expvar names are process-global,
// so a name may be published only once.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("orchard_genome_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name.
func (r *ExpvarMetricsRecorder) Name() string {
	return r.name
}

// Snapshot returns a copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make(map[string]map[string]int64, len(r.results))
	for op, counts := range r.results {
		results[op] = maps.Clone(counts)
	}
	return ExpvarMetricsSnapshot{
		DurationsMS: maps.Clone(r.durations),
		Results:     results,
		RecordedAt:  time.Now().UTC(),
	}
}

// Observe records an operation outcome.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)
	status := statusLabel(success)

	r.mu.Lock()
	r.durations[operation] += ms
	if _, ok := r.results[operation]; !ok {
		r.results[operation] = make(map[string]int64, 2)
	}
	r.results[operation][status]++
	r.mu.Unlock()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// JSONTraceEntry is one span written by JSONTraceTracer.
type JSONTraceEntry struct {
	SpanID     string    `json:"span_id"`
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceTracer writes spans as JSON lines and retains them for inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	entries []JSONTraceEntry
	enc     *json.Encoder
	clock   Clock
}

// NewJSONTracer constructs a tracer writing to w; a nil w only retains spans.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &JSONTraceTracer{enc: enc, clock: ClockFunc(nil)}
}

// Entries returns a copy of all recorded spans.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]JSONTraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

type spanIDKey struct{}

// SpanID returns the id of the innermost JSONTraceTracer span carried by ctx.
func SpanID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(spanIDKey{}).(string)
	return id, ok
}

// Start implements Tracer. The span id is attached to the returned context.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	span := &jsonTraceSpan{
		tracer:    t,
		id:        uuid.NewString(),
		operation: operation,
		started:   t.clock.Now(),
	}
	return context.WithValue(ctx, spanIDKey{}, span.id), span
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	id        string
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	ended := s.tracer.clock.Now()
	entry := JSONTraceEntry{
		SpanID:     s.id,
		Operation:  s.operation,
		Status:     statusLabel(err == nil),
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		Error:      errMsg,
		StartedAt:  s.started,
		EndedAt:    ended,
	}

	s.tracer.mu.Lock()
	s.tracer.entries = append(s.tracer.entries, entry)
	if s.tracer.enc != nil {
		_ = s.tracer.enc.Encode(entry)
	}
	s.tracer.mu.Unlock()
}
