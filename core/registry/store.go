package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// DefaultHistory is the number of readings retained per asset.
const DefaultHistory = 50

var (
	// ErrNotFound is returned when an asset is unknown.
	ErrNotFound = errors.New("registry: asset not found")
	// ErrInvalidReading is returned for readings without identity.
	ErrInvalidReading = errors.New("registry: invalid reading")
	// ErrKindMismatch is returned when a reading disagrees with the kind of
	// an existing profile.
	ErrKindMismatch = errors.New("registry: asset kind mismatch")
)

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Kind    model.AssetKind
	MinTier model.RiskTier
	// ScoredOnly skips profiles that were never scored.
	ScoredOnly bool
}

func (f Filter) match(p *model.AssetProfile) bool {
	if f.Kind != "" && p.Kind != f.Kind {
		return false
	}
	if f.ScoredOnly && !p.Scored {
		return false
	}
	if f.MinTier > model.TierNormal && (!p.Scored || p.LastTier < f.MinTier) {
		return false
	}
	return true
}

// Store is the asset registry contract.
type Store interface {
	UpsertReading(r model.SensorReading) (model.AssetProfile, error)
	Profile(id string, kind model.AssetKind) model.AssetProfile
	Lookup(id string) (model.AssetProfile, bool)
	Annotate(id string, loc model.GeoPoint, routes []string) error
	SetScore(id string, res model.PredictionResult) error
	List(f Filter) []model.AssetProfile
	Len() int
}

// MemoryStore keeps profiles in a contiguous arena indexed by identifier.
type MemoryStore struct {
	mu      sync.RWMutex
	arena   []model.AssetProfile
	index   map[string]int
	history int
}

// NewMemoryStore returns an empty registry retaining history readings per
// asset. A non-positive history selects DefaultHistory.
func NewMemoryStore(history int) *MemoryStore {
	if history <= 0 {
		history = DefaultHistory
	}
	return &MemoryStore{index: map[string]int{}, history: history}
}

// getOrCreate must be called with the write lock held.
func (s *MemoryStore) getOrCreate(id string, kind model.AssetKind) *model.AssetProfile {
	if i, ok := s.index[id]; ok {
		return &s.arena[i]
	}
	s.arena = append(s.arena, model.AssetProfile{ID: id, Kind: kind})
	s.index[id] = len(s.arena) - 1
	return &s.arena[len(s.arena)-1]
}

// UpsertReading records r in the history of its asset, creating the profile
// when needed, and returns the updated profile.
func (s *MemoryStore) UpsertReading(r model.SensorReading) (model.AssetProfile, error) {
	if r.AssetID == "" || !r.Kind.Valid() {
		return model.AssetProfile{}, fmt.Errorf("%w: id=%q kind=%q", ErrInvalidReading, r.AssetID, r.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[r.AssetID]; ok && s.arena[i].Kind != r.Kind {
		return model.AssetProfile{}, fmt.Errorf("%w: %s is %s", ErrKindMismatch, r.AssetID, s.arena[i].Kind)
	}
	p := s.getOrCreate(r.AssetID, r.Kind)
	rec := r.Clone()

	pos := sort.Search(len(p.Readings), func(i int) bool {
		return !p.Readings[i].Timestamp.After(rec.Timestamp)
	})
	p.Readings = append(p.Readings, model.SensorReading{})
	copy(p.Readings[pos+1:], p.Readings[pos:])
	p.Readings[pos] = rec
	if len(p.Readings) > s.history {
		p.Readings[len(p.Readings)-1] = model.SensorReading{}
		p.Readings = p.Readings[:s.history]
	}
	if rec.Timestamp.After(p.UpdatedAt) {
		p.UpdatedAt = rec.Timestamp
	}
	refreshUsage(p, rec)
	return p.Clone(), nil
}

func refreshUsage(p *model.AssetProfile, r model.SensorReading) {
	if v, ok := r.Metric(model.MetricAge); ok && v >= 0 {
		p.Age = v
		if p.Kind == model.AssetInfrastructure {
			p.Usage = v
		}
	}
	if p.Kind == model.AssetVehicle {
		if v, ok := r.Metric(model.MetricMileage); ok && v >= p.Usage {
			p.Usage = v
		}
	}
}

// Profile returns the profile for id, creating a default one for an unseen
// identifier.
func (s *MemoryStore) Profile(id string, kind model.AssetKind) model.AssetProfile {
	s.mu.RLock()
	if i, ok := s.index[id]; ok {
		p := s.arena[i].Clone()
		s.mu.RUnlock()
		return p
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(id, kind).Clone()
}

// Lookup returns the profile for id without creating it.
func (s *MemoryStore) Lookup(id string) (model.AssetProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.AssetProfile{}, false
	}
	return s.arena[i].Clone(), true
}

// Annotate sets the location and the routes served by an asset.
func (s *MemoryStore) Annotate(id string, loc model.GeoPoint, routes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.arena[i].Location = loc
	s.arena[i].Routes = append([]string(nil), routes...)
	return nil
}

// SetScore stores the outcome of the latest scoring pass.
func (s *MemoryStore) SetScore(id string, res model.PredictionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.arena[i].LastScore = res.Score
	s.arena[i].LastTier = res.Tier
	s.arena[i].Scored = true
	return nil
}

// List returns matching profiles sorted by identifier.
func (s *MemoryStore) List(f Filter) []model.AssetProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.AssetProfile, 0, len(s.arena))
	for i := range s.arena {
		if f.match(&s.arena[i]) {
			res = append(res, s.arena[i].Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len returns the number of known assets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.arena)
}
