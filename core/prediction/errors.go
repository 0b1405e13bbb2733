package prediction

import "errors"

var (
	// ErrNoReadings is returned when a profile has no reading to score.
	ErrNoReadings = errors.New("prediction: profile has no readings")
	// ErrUnknownKind is returned for profiles of an unsupported asset kind.
	ErrUnknownKind = errors.New("prediction: unknown asset kind")

	errTierOrder      = errors.New("prediction: tier thresholds must satisfy low < medium < high < critical")
	errTierRange      = errors.New("prediction: tier thresholds must lie in (0,1]")
	errNegativeWeight = errors.New("prediction: penalties and weights must not be negative")
)
