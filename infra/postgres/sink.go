// Package postgres persists notification records in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/factory"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
)

// DefaultTable stores records when no table is configured.
const DefaultTable = "maintenance_alerts"

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config selects the database and table.
type Config struct {
	DSN   string `json:"dsn"`
	Table string `json:"table"`
}

// Execer is satisfied by *pgxpool.Pool and pgx transactions.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Sink upserts notification records keyed by record id.
type Sink struct {
	db    Execer
	table string
}

// NewSink wraps db. The table name must be a plain SQL identifier.
func NewSink(db Execer, table string) (*Sink, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Sink{db: db, table: table}, nil
}

// EnsureSchema creates the table when missing.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			asset_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			severity TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			action TEXT NOT NULL,
			record JSONB NOT NULL
		)`, s.table))
	return err
}

func (s *Sink) Notify(ctx context.Context, rec notify.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, ts, asset_id, kind, severity, score, action, record)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			severity = EXCLUDED.severity,
			score = EXCLUDED.score,
			record = EXCLUDED.record
	`, s.table), rec.ID, rec.Timestamp, rec.AssetID, string(rec.Kind), string(rec.Severity), rec.Score, string(rec.Action), data)
	if err != nil {
		return fmt.Errorf("insert alert %s: %w", rec.ID, err)
	}
	return nil
}

// Factory connects a pool from a module configuration and prepares the
// table.
func Factory(conf map[string]any) (notify.Sink, error) {
	var cfg Config
	if err := factory.Decode(conf, &cfg); err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres notify sink requires dsn")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s, err := NewSink(pool, cfg.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return s, nil
}
