package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// HourBand is a daily interval [Start, End) in whole hours.
type HourBand struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Config defines scheduling and costing parameters.
type Config struct {
	HourlyRate float64 `json:"hourly_rate"`
	// OverheadRate is a pointer so that 0 can be configured; nil takes the default.
	OverheadRate            *float64   `json:"overhead_rate"`
	VehicleMaterials        float64    `json:"vehicle_materials"`
	InfrastructureMaterials float64    `json:"infrastructure_materials"`
	CrewCapacity            int        `json:"crew_capacity"`
	SlotMinutes             int        `json:"slot_minutes"`
	RushHours               []HourBand `json:"rush_hours"`
	// MinTier is the lowest tier that produces a task.
	MinTier     string `json:"min_tier"`
	HistorySize int    `json:"history_size"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.HourlyRate == 0 {
		c.HourlyRate = 75
	}
	if c.OverheadRate == nil {
		rate := 0.2
		c.OverheadRate = &rate
	}
	if c.VehicleMaterials == 0 {
		c.VehicleMaterials = 350
	}
	if c.InfrastructureMaterials == 0 {
		c.InfrastructureMaterials = 1500
	}
	if c.CrewCapacity == 0 {
		c.CrewCapacity = 2
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = 60
	}
	if c.RushHours == nil {
		c.RushHours = []HourBand{{Start: 7, End: 9}, {Start: 17, End: 19}}
	}
	if c.MinTier == "" {
		c.MinTier = model.TierMedium.String()
	}
	if c.HistorySize == 0 {
		c.HistorySize = 100
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.HourlyRate < 0 || (c.OverheadRate != nil && *c.OverheadRate < 0) {
		return errors.New("hourly_rate and overhead_rate must not be negative")
	}
	if c.CrewCapacity < 1 {
		return errors.New("crew_capacity must be positive")
	}
	if c.SlotMinutes < 1 || c.SlotMinutes > 24*60 {
		return errors.New("slot_minutes must be within one day")
	}
	for _, b := range c.RushHours {
		if b.Start < 0 || b.End > 24 || b.Start >= b.End {
			return fmt.Errorf("invalid rush band %d-%d", b.Start, b.End)
		}
	}
	if _, err := parseTier(c.MinTier); err != nil {
		return err
	}
	return nil
}

func parseTier(s string) (model.RiskTier, error) {
	var t model.RiskTier
	_ = t.UnmarshalText([]byte(s))
	if t.String() != strings.ToLower(s) {
		return 0, fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}
