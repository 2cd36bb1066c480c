package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"orchard/internal/infra/block/memory"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "orchard_genome_metrics_") {
		t.Fatalf("unexpected generated name %s", rec.Name())
	}
	ctx := context.Background()
	rec.Observe(ctx, OpEnsureValid, true, 2*time.Millisecond)
	rec.Observe(ctx, OpEnsureValid, false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Second)

	snap := rec.Snapshot()
	if snap.DurationsMS[OpEnsureValid] != 3 {
		t.Fatalf("expected 3ms total, got %v", snap.DurationsMS[OpEnsureValid])
	}
	if snap.Results[OpEnsureValid]["success"] != 1 || snap.Results[OpEnsureValid]["error"] != 1 {
		t.Fatalf("unexpected results %+v", snap.Results)
	}
	if len(snap.Results) != 1 {
		t.Fatalf("empty operation must be ignored")
	}

	snap.Results[OpEnsureValid]["success"] = 100
	if rec.Snapshot().Results[OpEnsureValid]["success"] != 1 {
		t.Fatalf("snapshot must be a copy")
	}

	published := expvar.Get(rec.Name())
	if published == nil || !strings.Contains(published.String(), "durations_ms_total") {
		t.Fatalf("recorder not published")
	}
}

func TestJSONTraceTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	ctx, span := tracer.Start(context.Background(), OpRegenerate)
	id, ok := SpanID(ctx)
	if !ok {
		t.Fatalf("span id missing from context")
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("span id is not a uuid: %v", err)
	}
	span.End(errors.New("boom"))
	_, span = tracer.Start(context.Background(), OpGet)
	span.End(nil)

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].SpanID != id || entries[0].Status != "error" || entries[0].Error != "boom" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Status != "success" || entries[1].SpanID == id {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 json lines, got %d", len(lines))
	}
	var decoded JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Operation != OpRegenerate || decoded.SpanID != id {
		t.Fatalf("unexpected decoded entry %+v", decoded)
	}

	if _, ok := SpanID(context.Background()); ok {
		t.Fatalf("plain context has no span")
	}
}

func TestJSONTraceTracer_NilWriterRetains(t *testing.T) {
	tracer := NewJSONTracer(nil)
	fs := NewFamilyStore(memory.New(), WithTracer(tracer), WithRandomSource(seeded(10)))
	if _, _, err := fs.EnsureValid(context.Background()); err != nil {
		t.Fatalf("ensure valid: %v", err)
	}
	entries := tracer.Entries()
	if len(entries) != 1 || entries[0].Operation != OpEnsureValid {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	fs := NewFamilyStore(memory.New(), WithMetricsRecorder(rec), WithRandomSource(seeded(11)))
	ctx := context.Background()
	if _, _, err := fs.EnsureValid(ctx); err != nil {
		t.Fatalf("ensure valid: %v", err)
	}
	if _, err := fs.Individual(ctx, -1); err == nil {
		t.Fatalf("expected range error")
	}
	rec.Observe(ctx, "", true, time.Second)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	var histograms int
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetName() {
			case "orchard_genome_operations_total":
				key := ""
				for _, lp := range m.GetLabel() {
					key += lp.GetValue() + "/"
				}
				counts[key] = m.GetCounter().GetValue()
			case "orchard_genome_operation_duration_seconds":
				histograms++
			}
		}
	}
	if counts[OpEnsureValid+"/success/"] != 1 || counts[OpIndividual+"/error/"] != 1 {
		t.Fatalf("unexpected counters %v", counts)
	}
	if histograms != 2 {
		t.Fatalf("expected 2 histogram series, got %d", histograms)
	}

	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("duplicate registration must fail")
	}
}
