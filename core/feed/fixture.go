package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	"k8s.io/utils/clock"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// Fixture is a recorded sequence of batches.
type Fixture struct {
	Name           string                   `json:"name" yaml:"name"`
	Vehicle        [][]Reading              `json:"vehicle" yaml:"vehicle"`
	Infrastructure [][]Reading              `json:"infrastructure" yaml:"infrastructure"`
	Traffic        []model.FlowSnapshot     `json:"traffic" yaml:"traffic"`
	Emergency      []model.EmergencyVehicle `json:"emergency" yaml:"emergency"`
}

// LoadFixture reads a fixture from a YAML or JSON file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &fx)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, &fx)
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return &fx, nil
}

// FixtureSource replays a Fixture batch by batch. Once a sequence is
// exhausted it returns empty batches unless looping is enabled.
type FixtureSource struct {
	mu    sync.Mutex
	fx    Fixture
	clock clock.PassiveClock
	loop  bool
	next  map[string]int
}

// FixtureOption customises a FixtureSource.
type FixtureOption func(*FixtureSource)

// WithLoop restarts every sequence after its last batch.
func WithLoop() FixtureOption { return func(s *FixtureSource) { s.loop = true } }

// WithFixtureClock stamps readings lacking a timestamp with the clock time.
func WithFixtureClock(c clock.PassiveClock) FixtureOption {
	return func(s *FixtureSource) { s.clock = c }
}

// NewFixtureSource creates a source over fx.
func NewFixtureSource(fx Fixture, opts ...FixtureOption) *FixtureSource {
	s := &FixtureSource{fx: fx, clock: clock.RealClock{}, next: map[string]int{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *FixtureSource) Pull(ctx context.Context, kind model.AssetKind) ([]Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var batches [][]Reading
	switch kind {
	case model.AssetVehicle:
		batches = s.fx.Vehicle
	case model.AssetInfrastructure:
		batches = s.fx.Infrastructure
	default:
		return nil, fmt.Errorf("unknown asset kind %q", kind)
	}
	s.mu.Lock()
	i, ok := s.advance(string(kind), len(batches))
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	now := s.clock.Now()
	out := make([]Reading, len(batches[i]))
	for j, r := range batches[i] {
		if r.Kind == "" {
			r.Kind = kind
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = now
		}
		out[j] = r
	}
	return out, nil
}

func (s *FixtureSource) Snapshot(ctx context.Context) (model.FlowSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.FlowSnapshot{}, err
	}
	s.mu.Lock()
	i, ok := s.advance("traffic", len(s.fx.Traffic))
	s.mu.Unlock()
	if !ok {
		return model.FlowSnapshot{}, ErrNoSnapshot
	}
	snap := s.fx.Traffic[i]
	if snap.Time.IsZero() {
		snap.Time = s.clock.Now()
	}
	return snap, nil
}

// Emergency returns the recorded emergency requests.
func (s *FixtureSource) Emergency() []model.EmergencyVehicle {
	return append([]model.EmergencyVehicle(nil), s.fx.Emergency...)
}

func (s *FixtureSource) advance(key string, n int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	i := s.next[key]
	if i >= n {
		if !s.loop {
			return 0, false
		}
		i = 0
	}
	s.next[key] = i + 1
	return i, true
}
