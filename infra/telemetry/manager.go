// Package telemetry receives sensor readings and traffic snapshots pushed by
// field devices over MQTT and exposes them as feed sources for the
// dispatcher.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/feed"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/logger"
)

// DefaultBufferSize bounds the readings held per asset kind between pulls.
const DefaultBufferSize = 1024

// Config selects the topics the manager listens on.
type Config struct {
	// Prefix is the topic root, readings arrive on <prefix>/vehicle/<id>,
	// <prefix>/infrastructure/<id> and snapshots on <prefix>/traffic/snapshot.
	Prefix     string `json:"prefix"`
	BufferSize int    `json:"buffer_size"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Prefix == "" {
		c.Prefix = "sensors"
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
}

// Subscriber is the part of the MQTT client the manager needs.
type Subscriber interface {
	Subscribe(topic, class string, handler paho.MessageHandler) error
}

// Manager buffers pushed telemetry until the dispatcher pulls it. It
// implements feed.Source and feed.TrafficSource.
type Manager struct {
	cfg Config
	log logger.Logger
	now func() time.Time

	mu       sync.Mutex
	buffers  map[model.AssetKind][]feed.Reading
	snapshot *model.FlowSnapshot

	messages     *prometheus.CounterVec
	decodeErrors prometheus.Counter
	dropped      prometheus.Counter
	lastMessage  prometheus.Gauge
}

// NewManager creates a manager. Call Start to subscribe.
func NewManager(cfg Config) *Manager {
	cfg.SetDefaults()
	m := &Manager{
		cfg:     cfg,
		log:     logger.New("telemetry"),
		now:     time.Now,
		buffers: map[model.AssetKind][]feed.Reading{},
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_messages_total",
			Help: "Telemetry messages received by topic kind",
		}, []string{"kind"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_decode_errors_total",
			Help: "Telemetry payloads that could not be decoded",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_buffer_dropped_total",
			Help: "Readings dropped because the buffer was full",
		}),
		lastMessage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "telemetry_last_message_timestamp_seconds",
			Help: "Unix timestamp of the last telemetry message",
		}),
	}
	m.messages = register(m.messages)
	m.decodeErrors = register(m.decodeErrors)
	m.dropped = register(m.dropped)
	m.lastMessage = register(m.lastMessage)
	return m
}

// register adds c to the default registry, reusing an existing collector
// when a previous manager already registered it.
func register[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// Start subscribes to the reading and snapshot topics.
func (m *Manager) Start(sub Subscriber) error {
	prefix := strings.TrimSuffix(m.cfg.Prefix, "/")
	topics := map[string]paho.MessageHandler{
		prefix + "/" + string(model.AssetVehicle) + "/+":        m.onReading,
		prefix + "/" + string(model.AssetInfrastructure) + "/+": m.onReading,
		prefix + "/traffic/snapshot":                            m.onSnapshot,
	}
	for topic, h := range topics {
		if err := sub.Subscribe(topic, "sensors", h); err != nil {
			return err
		}
	}
	m.log.Infof("telemetry listening on %s/#", prefix)
	return nil
}

func (m *Manager) onReading(_ paho.Client, msg paho.Message) {
	if err := m.process(msg.Payload(), msg.Topic()); err != nil {
		m.decodeErrors.Inc()
		m.log.Errorf("decode %s: %v", msg.Topic(), err)
	}
}

func (m *Manager) onSnapshot(_ paho.Client, msg paho.Message) {
	var snap model.FlowSnapshot
	if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
		m.decodeErrors.Inc()
		m.log.Errorf("decode snapshot: %v", err)
		return
	}
	if snap.Time.IsZero() {
		snap.Time = m.now()
	}
	m.messages.WithLabelValues("traffic").Inc()
	m.lastMessage.SetToCurrentTime()
	m.mu.Lock()
	m.snapshot = &snap
	m.mu.Unlock()
}

func extractID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}

// kindFromTopic returns the asset kind segment preceding the id.
func kindFromTopic(topic string) model.AssetKind {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ""
	}
	return model.AssetKind(parts[len(parts)-2])
}

func (m *Manager) process(payload []byte, topic string) error {
	var msg struct {
		AssetID  string          `json:"asset_id"`
		Kind     model.AssetKind `json:"kind"`
		Metrics  map[string]any  `json:"metrics"`
		Location *model.GeoPoint `json:"location"`
		Routes   []string        `json:"routes"`
		TS       json.RawMessage `json:"ts"`
	}
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.UseNumber()
	if err := dec.Decode(&msg); err != nil {
		return err
	}
	if msg.AssetID == "" {
		msg.AssetID = extractID(topic)
	}
	if msg.Kind == "" {
		msg.Kind = kindFromTopic(topic)
	}
	if !msg.Kind.Valid() {
		return fmt.Errorf("unknown asset kind %q", msg.Kind)
	}
	ts, err := parseTS(msg.TS)
	if err != nil {
		return err
	}
	if ts.IsZero() {
		ts = m.now()
	}
	r := feed.Reading{
		AssetID:   msg.AssetID,
		Kind:      msg.Kind,
		Timestamp: ts,
		Metrics:   msg.Metrics,
		Location:  msg.Location,
		Routes:    msg.Routes,
	}
	m.messages.WithLabelValues(string(msg.Kind)).Inc()
	m.lastMessage.SetToCurrentTime()

	m.mu.Lock()
	defer m.mu.Unlock()
	buf := m.buffers[msg.Kind]
	if len(buf) >= m.cfg.BufferSize {
		buf = buf[1:]
		m.dropped.Inc()
	}
	m.buffers[msg.Kind] = append(buf, r)
	return nil
}

// parseTS accepts unix seconds or an RFC3339 string.
func parseTS(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	var secs int64
	if err := json.Unmarshal(raw, &secs); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("invalid ts %s", raw)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ts %q: %w", s, err)
	}
	return t, nil
}

// Pull drains the readings buffered for kind.
func (m *Manager) Pull(ctx context.Context, kind model.AssetKind) ([]feed.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.buffers[kind]
	delete(m.buffers, kind)
	return out, nil
}

// Snapshot returns the latest traffic snapshot.
func (m *Manager) Snapshot(ctx context.Context) (model.FlowSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.FlowSnapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return model.FlowSnapshot{}, feed.ErrNoSnapshot
	}
	return *m.snapshot, nil
}

var (
	_ feed.Source        = (*Manager)(nil)
	_ feed.TrafficSource = (*Manager)(nil)
)
