package traffic

import "errors"

// Band is a daily interval [Start, End) in whole hours.
type Band struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (b Band) contains(hour int) bool {
	if b.Start <= b.End {
		return hour >= b.Start && hour < b.End
	}
	return hour >= b.Start || hour < b.End
}

// Config holds the predictor and optimizer constants.
type Config struct {
	RushHours   []Band  `json:"rush_hours"`
	RushFactor  float64 `json:"rush_factor"`
	Night       Band    `json:"night"`
	NightFactor float64 `json:"night_factor"`

	RainFactor float64 `json:"rain_factor"`
	SnowFactor float64 `json:"snow_factor"`
	FogFactor  float64 `json:"fog_factor"`

	BaseConfidence float64 `json:"base_confidence"`
	MinConfidence  float64 `json:"min_confidence"`
	MaxConfidence  float64 `json:"max_confidence"`
	// Confidence penalties are pointers: nil takes the default, 0 disables.
	RainPenalty       *float64 `json:"rain_penalty"`
	SnowPenalty       *float64 `json:"snow_penalty"`
	FogPenalty        *float64 `json:"fog_penalty"`
	CongestionPenalty *float64 `json:"congestion_penalty"`

	// MinGreen bounds every phase in seconds.
	MinGreen float64 `json:"min_green"`
	// MaxImprovement caps the reported improvement percentage.
	MaxImprovement float64 `json:"max_improvement"`
	// GradualThreshold is the timing change in seconds above which the new
	// plan is phased in gradually.
	GradualThreshold float64 `json:"gradual_threshold"`

	HighSeverity   float64 `json:"high_severity"`
	MediumSeverity float64 `json:"medium_severity"`
	// CapacityFloor is the share of the point volume an alternative must
	// absorb to be considered under high severity.
	CapacityFloor   float64 `json:"capacity_floor"`
	ReductionFactor float64 `json:"reduction_factor"`
	MaxReduction    float64 `json:"max_reduction"`
}

func def(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}

func defPenalty(v **float64, d float64) {
	if *v == nil {
		*v = &d
	}
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.RushHours == nil {
		c.RushHours = []Band{{Start: 7, End: 9}, {Start: 17, End: 19}}
	}
	def(&c.RushFactor, 1.15)
	if c.Night == (Band{}) {
		c.Night = Band{Start: 22, End: 5}
	}
	def(&c.NightFactor, 0.85)
	def(&c.RainFactor, 0.9)
	def(&c.SnowFactor, 0.75)
	def(&c.FogFactor, 0.95)
	def(&c.BaseConfidence, 0.9)
	def(&c.MinConfidence, 0.3)
	def(&c.MaxConfidence, 0.95)
	defPenalty(&c.RainPenalty, 0.1)
	defPenalty(&c.SnowPenalty, 0.2)
	defPenalty(&c.FogPenalty, 0.15)
	defPenalty(&c.CongestionPenalty, 0.05)
	def(&c.MinGreen, 10)
	def(&c.MaxImprovement, 35)
	def(&c.GradualThreshold, 10)
	def(&c.HighSeverity, 0.7)
	def(&c.MediumSeverity, 0.4)
	def(&c.CapacityFloor, 0.2)
	def(&c.ReductionFactor, 0.6)
	def(&c.MaxReduction, 80)
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.MinConfidence > c.MaxConfidence {
		return errors.New("min_confidence exceeds max_confidence")
	}
	if c.MediumSeverity >= c.HighSeverity {
		return errors.New("medium_severity must be below high_severity")
	}
	if c.MaxReduction > 100 {
		return errors.New("max_reduction must not exceed 100")
	}
	for _, b := range append([]Band{c.Night}, c.RushHours...) {
		if b.Start < 0 || b.Start > 23 || b.End < 0 || b.End > 24 {
			return errors.New("hour bands must lie within a day")
		}
	}
	return nil
}
