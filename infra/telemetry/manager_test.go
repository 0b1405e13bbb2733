package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/feed"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

var fixedNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newTestManager(size int) *Manager {
	m := NewManager(Config{BufferSize: size})
	m.now = func() time.Time { return fixedNow }
	return m
}

func TestProcess(t *testing.T) {
	mgr := newTestManager(0)
	payload := []byte(`{"asset_id":"V1","kind":"vehicle","metrics":{"engineTemp":115,"brakeWear":"N/A"},"ts":1748858400}`)
	if err := mgr.process(payload, ""); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, err := mgr.Pull(context.Background(), model.AssetVehicle)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if len(got) != 1 || got[0].AssetID != "V1" {
		t.Fatalf("unexpected readings: %#v", got)
	}
	if !got[0].Timestamp.Equal(time.Unix(1748858400, 0)) {
		t.Fatalf("unexpected timestamp %v", got[0].Timestamp)
	}
	sr, rejected := feed.Normalize(got[0])
	if sr.Metrics["engineTemp"] != 115 || len(rejected) != 1 || rejected[0] != "brakeWear" {
		t.Fatalf("unexpected normalisation %v %v", sr.Metrics, rejected)
	}
	if again, _ := mgr.Pull(context.Background(), model.AssetVehicle); len(again) != 0 {
		t.Fatalf("buffer not drained")
	}
}

func TestProcessFromTopic(t *testing.T) {
	mgr := newTestManager(0)
	payload := []byte(`{"metrics":{"structuralIntegrity":40},"ts":"2025-06-02T09:00:00Z"}`)
	if err := mgr.process(payload, "sensors/infrastructure/B9"); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, _ := mgr.Pull(context.Background(), model.AssetInfrastructure)
	if len(got) != 1 || got[0].AssetID != "B9" || got[0].Kind != model.AssetInfrastructure {
		t.Fatalf("unexpected readings: %#v", got)
	}
	if got[0].Timestamp.Hour() != 9 {
		t.Fatalf("unexpected timestamp %v", got[0].Timestamp)
	}
}

func TestProcessRejects(t *testing.T) {
	mgr := newTestManager(0)
	if err := mgr.process([]byte(`{`), "sensors/vehicle/V1"); err == nil {
		t.Fatal("expected decode error")
	}
	if err := mgr.process([]byte(`{}`), "sensors/drone/D1"); err == nil {
		t.Fatal("expected kind error")
	}
	if err := mgr.process([]byte(`{"ts":"yesterday"}`), "sensors/vehicle/V1"); err == nil {
		t.Fatal("expected ts error")
	}
}

func TestBufferDropsOldest(t *testing.T) {
	mgr := newTestManager(2)
	before := testutil.ToFloat64(mgr.dropped)
	for _, id := range []string{"V1", "V2", "V3"} {
		if err := mgr.process([]byte(`{}`), "sensors/vehicle/"+id); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	got, _ := mgr.Pull(context.Background(), model.AssetVehicle)
	if len(got) != 2 || got[0].AssetID != "V2" || got[1].AssetID != "V3" {
		t.Fatalf("unexpected buffer: %#v", got)
	}
	if v := testutil.ToFloat64(mgr.dropped) - before; v != 1 {
		t.Fatalf("expected 1 drop, got %v", v)
	}
}

func TestExtractID(t *testing.T) {
	id := extractID("sensors/vehicle/veh42")
	if id != "veh42" {
		t.Fatalf("unexpected id %s", id)
	}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestSnapshot(t *testing.T) {
	mgr := newTestManager(0)
	if _, err := mgr.Snapshot(context.Background()); !errors.Is(err, feed.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
	body, _ := json.Marshal(model.FlowSnapshot{Volume: 1200, Weather: model.WeatherRain})
	mgr.onSnapshot(nil, &fakeMessage{topic: "sensors/traffic/snapshot", payload: body})
	snap, err := mgr.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Volume != 1200 || !snap.Time.Equal(fixedNow) {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
}

func TestOnReadingCountsDecodeErrors(t *testing.T) {
	mgr := newTestManager(0)
	before := testutil.ToFloat64(mgr.decodeErrors)
	mgr.onReading(nil, &fakeMessage{topic: "sensors/vehicle/V1", payload: []byte("garbage")})
	if v := testutil.ToFloat64(mgr.decodeErrors) - before; v != 1 {
		t.Fatalf("expected 1 decode error, got %v", v)
	}
}

type fakeSubscriber struct{ topics []string }

func (f *fakeSubscriber) Subscribe(topic, class string, _ paho.MessageHandler) error {
	f.topics = append(f.topics, topic)
	return nil
}

func TestStartSubscribes(t *testing.T) {
	mgr := NewManager(Config{Prefix: "city/"})
	sub := &fakeSubscriber{}
	if err := mgr.Start(sub); err != nil {
		t.Fatalf("start: %v", err)
	}
	want := map[string]bool{"city/vehicle/+": true, "city/infrastructure/+": true, "city/traffic/snapshot": true}
	if len(sub.topics) != 3 {
		t.Fatalf("unexpected topics %v", sub.topics)
	}
	for _, tp := range sub.topics {
		if !want[tp] {
			t.Fatalf("unexpected topic %s", tp)
		}
	}
}
