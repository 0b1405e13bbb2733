package metrics

import (
	"errors"
	"testing"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordPredictions([]model.PredictionResult) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordTick(TickEvent) error {
	r.count++
	return nil
}

type predictionsOnly struct{ count int }

func (p *predictionsOnly) RecordPredictions([]model.PredictionResult) error {
	p.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordPredictions(nil); err != nil {
		t.Fatalf("record predictions: %v", err)
	}
	if err := m.RecordTick(TickEvent{Producer: "vehicle"}); err != nil {
		t.Fatalf("record tick: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded")
	}
}

func TestMultiSink_OptionalAndErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordSink{err: boom}
	plain := &predictionsOnly{}
	m := NewMultiSink(failing, plain)

	if err := m.RecordPredictions(nil); !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if plain.count != 1 {
		t.Fatalf("second sink skipped after failure")
	}
	if err := m.RecordTask(TaskEvent{}); err != nil {
		t.Fatalf("unsupported recorder should be a no-op: %v", err)
	}
}
