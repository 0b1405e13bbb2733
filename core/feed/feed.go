// Package feed defines where sensor readings and traffic snapshots come
// from. The engine depends on the Source and TrafficSource capabilities and
// never generates data itself; FixtureSource replays recorded batches.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// ErrNoSnapshot is returned by traffic sources with nothing to report yet.
var ErrNoSnapshot = errors.New("feed: no traffic snapshot available")

// Reading is a raw sensor report as received from the field. Metric values
// are untyped and may be missing or malformed.
type Reading struct {
	AssetID   string          `json:"asset_id" yaml:"asset_id"`
	Kind      model.AssetKind `json:"kind" yaml:"kind"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Metrics   map[string]any  `json:"metrics" yaml:"metrics"`
	// Location and Routes are optional; infrastructure feeds use them to
	// annotate the registry for traffic impact assessment.
	Location *model.GeoPoint `json:"location,omitempty" yaml:"location,omitempty"`
	Routes   []string        `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// Source yields the next batch of readings for one asset kind.
type Source interface {
	Pull(ctx context.Context, kind model.AssetKind) ([]Reading, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(ctx context.Context, kind model.AssetKind) ([]Reading, error)

func (f SourceFunc) Pull(ctx context.Context, kind model.AssetKind) ([]Reading, error) {
	return f(ctx, kind)
}

// TrafficSource yields the current network state.
type TrafficSource interface {
	Snapshot(ctx context.Context) (model.FlowSnapshot, error)
}

// Normalize converts r into a numeric SensorReading. Values that are not
// finite numbers are dropped and their keys returned in lexical order.
func Normalize(r Reading) (model.SensorReading, []string) {
	out := model.SensorReading{
		AssetID:   r.AssetID,
		Kind:      r.Kind,
		Timestamp: r.Timestamp,
		Metrics:   make(map[string]float64, len(r.Metrics)),
	}
	var rejected []string
	for k, raw := range r.Metrics {
		v, ok := toFloat(raw)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			rejected = append(rejected, k)
			continue
		}
		out.Metrics[k] = v
	}
	sort.Strings(rejected)
	return out, rejected
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
