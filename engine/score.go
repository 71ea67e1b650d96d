package engine

import (
	"math"

	"conflict-service/models"
)

// Scoring policy. The weights and thresholds are fixed literals so results
// stay reproducible; recalibrate them against real adjudication outcomes,
// not ad hoc.
const (
	mediumThreshold   = 25.0
	highThreshold     = 50.0
	criticalThreshold = 75.0
)

// overlapPoints scores a direct overlap: a 40-point floor plus 2 points per
// km² of overlap, capped at 80 total.
func overlapPoints(areaKm2 float64) float64 {
	return 40 + math.Min(40, areaKm2*2)
}

// bufferPoints scores a buffer-zone conflict: warnings scale with how deep
// inside the buffer the layer sits, info conflicts are a flat 5.
func bufferPoints(bufferKm, distKm float64, severity string) float64 {
	if severity == models.SeverityWarning {
		return 15 + math.Min(15, bufferKm-distKm)
	}
	return 5
}

// RiskLevel maps a clamped 0-100 score to its presentation band.
func RiskLevel(score float64) string {
	switch {
	case score >= criticalThreshold:
		return models.RiskCritical
	case score >= highThreshold:
		return models.RiskHigh
	case score >= mediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
