package traffic

import "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"

// Predictor projects the network volume for the next interval.
type Predictor struct {
	cfg Config
}

// NewPredictor returns a Predictor. Unset values take their defaults.
func NewPredictor(cfg Config) *Predictor {
	cfg.SetDefaults()
	return &Predictor{cfg: cfg}
}

// TimeFactor returns the volume multiplier for the hour of day.
func (p *Predictor) TimeFactor(hour int) float64 {
	for _, b := range p.cfg.RushHours {
		if b.contains(hour) {
			return p.cfg.RushFactor
		}
	}
	if p.cfg.Night.contains(hour) {
		return p.cfg.NightFactor
	}
	return 1
}

// WeatherFactor returns the volume multiplier and the confidence penalty for
// a weather condition.
func (p *Predictor) WeatherFactor(w model.Weather) (factor, penalty float64) {
	switch w {
	case model.WeatherRain:
		return p.cfg.RainFactor, orZero(p.cfg.RainPenalty)
	case model.WeatherSnow:
		return p.cfg.SnowFactor, orZero(p.cfg.SnowPenalty)
	case model.WeatherFog:
		return p.cfg.FogFactor, orZero(p.cfg.FogPenalty)
	default:
		return 1, 0
	}
}

// Predict applies the time and weather multipliers to the current volume.
func (p *Predictor) Predict(s model.FlowSnapshot) model.FlowPrediction {
	tf := p.TimeFactor(s.Time.Hour())
	wf, penalty := p.WeatherFactor(s.Weather)

	conf := p.cfg.BaseConfidence - penalty
	for _, cp := range s.CongestionPoints {
		if cp.Severity >= p.cfg.MediumSeverity {
			conf -= orZero(p.cfg.CongestionPenalty)
		}
	}
	return model.FlowPrediction{
		CurrentVolume:   s.Volume,
		PredictedVolume: round2(s.Volume * tf * wf),
		TimeFactor:      tf,
		WeatherFactor:   wf,
		Confidence:      round2(clamp(conf, p.cfg.MinConfidence, p.cfg.MaxConfidence)),
	}
}
