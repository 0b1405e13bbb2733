// Package journal persists notification records so operators can audit
// what the engine reported. Stores append records and answer simple
// queries by time range, asset and severity.
package journal

import (
	"context"
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
)

// Query defines filters for retrieving records. Zero fields match all.
type Query struct {
	Start    time.Time
	End      time.Time
	AssetID  string
	Severity notify.Severity
}

// Match reports whether rec satisfies q.
func (q Query) Match(rec notify.Record) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.AssetID != "" && rec.AssetID != q.AssetID {
		return false
	}
	if q.Severity != "" && rec.Severity != q.Severity {
		return false
	}
	return true
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec notify.Record) error
	Query(ctx context.Context, q Query) ([]notify.Record, error)
	Close() error
}

// Sink adapts a Store into a notify.Sink.
type Sink struct {
	Store Store
}

// NewSink wraps store.
func NewSink(store Store) *Sink { return &Sink{Store: store} }

func (s *Sink) Notify(ctx context.Context, rec notify.Record) error {
	return s.Store.Append(ctx, rec)
}
