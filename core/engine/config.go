package engine

import (
	"errors"
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/emergency"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/prediction"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/registry"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/scheduler"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/traffic"
)

// Config gathers the settings of every engine component.
type Config struct {
	// HistorySize bounds the readings kept per asset.
	HistorySize int                   `json:"history_size"`
	Scoring     prediction.Thresholds `json:"scoring"`
	Maintenance scheduler.Config      `json:"maintenance"`
	Traffic     traffic.Config        `json:"traffic"`
	Emergency   emergency.Config      `json:"emergency"`
}

// SetDefaults fills unset values of every section.
func (c *Config) SetDefaults() {
	if c.HistorySize <= 0 {
		c.HistorySize = registry.DefaultHistory
	}
	c.Scoring.SetDefaults()
	c.Maintenance.SetDefaults()
	c.Traffic.SetDefaults()
	c.Emergency.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	return errors.Join(
		c.Scoring.Validate(),
		c.Maintenance.Validate(),
		c.Traffic.Validate(),
		c.Emergency.Validate(),
	)
}

// DispatcherConfig holds the producer cadence.
type DispatcherConfig struct {
	VehicleInterval        time.Duration `json:"vehicle_interval"`
	InfrastructureInterval time.Duration `json:"infrastructure_interval"`
	TrafficInterval        time.Duration `json:"traffic_interval"`
	// PullTimeout bounds every source call. A tick whose pull exceeds it is
	// skipped.
	PullTimeout time.Duration `json:"pull_timeout"`
}

// SetDefaults fills unset intervals.
func (c *DispatcherConfig) SetDefaults() {
	if c.VehicleInterval == 0 {
		c.VehicleInterval = 5 * time.Second
	}
	if c.InfrastructureInterval == 0 {
		c.InfrastructureInterval = 30 * time.Second
	}
	if c.TrafficInterval == 0 {
		c.TrafficInterval = 10 * time.Second
	}
	if c.PullTimeout == 0 {
		c.PullTimeout = 2 * time.Second
	}
}

// Validate rejects negative intervals. A negative interval is an error; use
// a nil source to disable a producer.
func (c DispatcherConfig) Validate() error {
	if c.VehicleInterval < 0 || c.InfrastructureInterval < 0 || c.TrafficInterval < 0 {
		return errors.New("dispatcher intervals must not be negative")
	}
	if c.PullTimeout < 0 {
		return errors.New("pull_timeout must not be negative")
	}
	return nil
}
