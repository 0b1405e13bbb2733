package journal

import (
	"fmt"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/factory"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
)

// Config selects a journal backend.
type Config struct {
	// Backend is one of jsonl, rotating or sqlite.
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// Open creates the store described by cfg.
func Open(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("journal: path required")
	}
	switch cfg.Backend {
	case "", "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		if cfg.MaxSizeMB <= 0 {
			cfg.MaxSizeMB = 10
		}
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("journal: unknown backend %q", cfg.Backend)
	}
}

// Factory builds a journal sink from raw module configuration.
func Factory(conf map[string]any) (notify.Sink, error) {
	var c Config
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	store, err := Open(c)
	if err != nil {
		return nil, err
	}
	return NewSink(store), nil
}
