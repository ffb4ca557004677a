package location

import "agroalerta.app/internal/ports"

// Base confidence weight per coordinate source. Remote geolocation ranks
// highest, raw IP lookups lowest; the fallback coordinate is barely trusted.
var sourceWeights = map[ports.CoordinateSource]float64{
	ports.SourceRemoteGeolocation: 0.95,
	ports.SourcePlacesRefined:     0.90,
	ports.SourceGPS:               0.85,
	ports.SourceNetwork:           0.75,
	ports.SourcePassive:           0.65,
	ports.SourceIP:                0.60,
	ports.SourceFallback:          0.30,
}

const unknownSourceWeight = 0.30

// Accuracy tier multipliers, tightest first
const (
	tightAccuracyM  = 50
	mediumAccuracyM = 200
	looseAccuracyM  = 1000
)

// Confidence scores a resolved location in [0, 1] from its source and
// reported accuracy. Pure and deterministic: same inputs, same score.
func Confidence(source ports.CoordinateSource, accuracyM float64) float64 {
	weight, ok := sourceWeights[source]
	if !ok {
		weight = unknownSourceWeight
	}

	var multiplier float64
	switch {
	case accuracyM <= tightAccuracyM:
		multiplier = 1.0
	case accuracyM <= mediumAccuracyM:
		multiplier = 0.9
	case accuracyM <= looseAccuracyM:
		multiplier = 0.7
	default:
		multiplier = 0.5
	}

	score := weight * multiplier
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
