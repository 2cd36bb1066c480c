package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	blockcore "orchard/internal/block/core"
	"orchard/internal/infra/block/memory"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// faultyStore wraps the memory backend with injectable failures and call counts.
type faultyStore struct {
	*memory.Store
	mu        sync.Mutex
	reads     int
	failRead  error
	failPatch error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memory.New()}
}

func (f *faultyStore) GetData(ctx context.Context, id blockcore.ID) ([]byte, bool, error) {
	f.mu.Lock()
	f.reads++
	fail := f.failRead
	f.mu.Unlock()
	if fail != nil {
		return nil, false, fail
	}
	return f.Store.GetData(ctx, id)
}

func (f *faultyStore) PatchData(ctx context.Context, id blockcore.ID, buf []byte, offset int) error {
	f.mu.Lock()
	fail := f.failPatch
	f.mu.Unlock()
	if fail != nil {
		return fail
	}
	return f.Store.PatchData(ctx, id, buf, offset)
}

var errDevice = errors.New("device not ready")

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	mu      sync.Mutex
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (c *captureLogger) record(level, msg string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, fmt.Sprint(append([]any{level, " ", msg, " "}, args...)...))
}

func (c *captureLogger) Debug(msg string, args ...any) { c.record("DEBUG", msg, args...) }
func (c *captureLogger) Info(msg string, args ...any)  { c.record("INFO", msg, args...) }
func (c *captureLogger) Warn(msg string, args ...any)  { c.record("WARN", msg, args...) }
func (c *captureLogger) Error(msg string, args ...any) { c.record("ERROR", msg, args...) }

func (c *captureLogger) contains(level, msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := level + " " + msg
	for _, e := range c.entries {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}
