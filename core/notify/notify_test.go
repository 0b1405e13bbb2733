package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/factory"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

type memorySink struct {
	mu   sync.Mutex
	recs []Record
	err  error
}

func (m *memorySink) Notify(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return m.err
}

func (m *memorySink) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		tier model.RiskTier
		want Severity
	}{
		{model.TierCritical, SeverityCritical},
		{model.TierHigh, SeverityWarning},
		{model.TierMedium, SeverityWarning},
		{model.TierLow, SeverityNormal},
		{model.TierNormal, SeverityNormal},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.tier), c.tier.String())
	}
}

func TestNewRecord(t *testing.T) {
	ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	res := model.PredictionResult{
		AssetID:   "V1",
		Kind:      model.AssetVehicle,
		Score:     1,
		Risk:      1,
		Tier:      model.TierCritical,
		Action:    model.ActionImmediateMaintenance,
		Timestamp: ts,
	}
	rec := NewRecord(res)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, SeverityCritical, rec.Severity)
	assert.Equal(t, model.ActionImmediateMaintenance, rec.Action)
	assert.Equal(t, ts, rec.Timestamp)
	assert.Contains(t, rec.Message, "100%")

	other := NewRecord(res)
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestMinSeverityAndMulti(t *testing.T) {
	a, b := &memorySink{}, &memorySink{err: errors.New("down")}
	sink := MinSeverity(SeverityWarning, NewMultiSink(a, b))

	require.NoError(t, sink.Notify(context.Background(), Record{Severity: SeverityNormal}))
	assert.Equal(t, 0, a.len())

	err := sink.Notify(context.Background(), Record{Severity: SeverityCritical})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, a.len())
	assert.Equal(t, 1, b.len())
}

func TestQueuePublishDropsWhenFull(t *testing.T) {
	sink := &memorySink{}
	q := NewQueue(sink, 2)
	assert.True(t, q.Publish(Record{ID: "1"}))
	assert.True(t, q.Publish(Record{ID: "2"}))
	assert.False(t, q.Publish(Record{ID: "3"}))
	assert.Equal(t, uint64(1), q.Dropped())
	assert.Equal(t, 2, q.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, q.Run(ctx))
	assert.Equal(t, 2, sink.len())
	assert.Equal(t, 0, q.Len())
}

func TestQueueRunDelivers(t *testing.T) {
	sink := &memorySink{err: errors.New("flaky")}
	q := NewQueue(sink, 8, WithDeliveryTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = q.Run(ctx)
		close(done)
	}()
	for i := 0; i < 5; i++ {
		q.Publish(Record{AssetID: "B1"})
	}
	require.Eventually(t, func() bool { return sink.len() == 5 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, uint64(5), q.Failed())
}

func TestNewSink(t *testing.T) {
	s, err := NewSink(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSink{}, s)

	s, err = NewSink(Config{Sinks: []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MultiSink{}, s)

	_, err = NewSink(Config{Sinks: []factory.ModuleConfig{{Type: "pager"}}}, nil)
	assert.Error(t, err)

	mem := &memorySink{}
	require.NoError(t, RegisterSink("memory-test", func(map[string]any) (Sink, error) { return mem, nil }))
	s, err = NewSink(Config{MinSeverity: SeverityCritical, Sinks: []factory.ModuleConfig{{Type: "memory-test"}}}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Notify(context.Background(), Record{Severity: SeverityWarning}))
	assert.Equal(t, 0, mem.len())
}
