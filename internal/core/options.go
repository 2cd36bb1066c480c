package core

import (
	"context"
	"time"

	blockcore "orchard/internal/block/core"
	"orchard/pkg/genome"
)

// Clock supplies the current time for duration measurements.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock. A nil ClockFunc reads the wall clock.
type ClockFunc func() time.Time

// Now returns the function's time in UTC.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// Logger is the structured logging surface used by FamilyStore. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder observes the outcome and latency of store operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer opens a span per store operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation result.
type TraceSpan interface {
	End(err error)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// Option configures a FamilyStore.
type Option func(*FamilyStore)

// WithClock overrides the clock used for latency measurements.
func WithClock(clock Clock) Option {
	return func(s *FamilyStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger installs a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *FamilyStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder installs a metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *FamilyStore) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *FamilyStore) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithRandomSource replaces the generator used for regeneration.
func WithRandomSource(src genome.RandomSource) Option {
	return func(s *FamilyStore) {
		if src != nil {
			s.random = src
		}
	}
}

// WithBlock places the record at offset within block id.
func WithBlock(id blockcore.ID, offset int) Option {
	return func(s *FamilyStore) {
		s.block = id
		s.offset = offset
	}
}
