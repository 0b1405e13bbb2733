package prediction

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

const day = 24 * time.Hour

// minTrendPoints is the history length required before a trend is trusted.
const minTrendPoints = 3

// maxDays is the longest span a time.Duration can hold.
var maxDays = float64(math.MaxInt64 / int64(day))

// days converts a day count to a duration bounded to [0, limit].
func days(n, limit float64) time.Duration {
	limit = math.Min(limit, maxDays)
	if !(n > 0) || limit <= 0 {
		return 0
	}
	return time.Duration(math.Min(n, limit) * float64(day))
}

// TimeToFailure converts a vehicle failure probability into an expected
// number of days before failure.
func TimeToFailure(p float64, t VehicleThresholds) time.Duration {
	return days((1-clamp(p, 0, 1))*t.HorizonDays, t.HorizonDays)
}

// RemainingLifespan estimates how long an infrastructure asset keeps above
// the failure health level. With enough history and a declining trend the
// least-squares slope is extrapolated; otherwise the current health is
// applied to the design life. The estimate never exceeds the design life.
func RemainingLifespan(p model.AssetProfile, health float64, t InfraThresholds) time.Duration {
	limit := t.DesignLifeYears * 365
	if slope, ok := healthTrend(p, t); ok && slope < 0 {
		if health <= t.FailureHealth {
			return 0
		}
		return days((health-t.FailureHealth)/-slope, limit)
	}
	return days(health/100*limit, limit)
}

// healthTrend fits health against time in days and returns the slope in
// health points per day.
func healthTrend(p model.AssetProfile, t InfraThresholds) (float64, bool) {
	n := len(p.Readings)
	if n < minTrendPoints {
		return 0, false
	}
	oldest := p.Readings[n-1].Timestamp
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := n - 1; i >= 0; i-- {
		r := p.Readings[i]
		h, _ := InfrastructureHealth(InfraFeaturesFrom(r, p), t)
		xs = append(xs, r.Timestamp.Sub(oldest).Hours()/24)
		ys = append(ys, h)
	}
	if floats.Max(xs)-floats.Min(xs) <= 0 {
		return 0, false
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, true
}
