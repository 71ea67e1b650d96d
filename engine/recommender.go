package engine

import (
	"fmt"
	"math"
	"sync"

	"conflict-service/footprint"
	"conflict-service/geometry"
	"conflict-service/models"
	"conflict-service/services"
)

// Grid search bounds. Candidates sit at 8 compass bearings on rings of
// increasing radius; rings are searched inner to outer so a good nearby
// placement wins over an equally good distant one.
const (
	searchBearings = 8
	ringStepKm     = 10.0
	maxRingKm      = 50.0

	// A relocation must improve the score by more than this.
	minImprovement = 5.0
	// Stop expanding rings once the best candidate is this far below
	// baseline and out of the medium band.
	earlyStopDrop = 20.0
)

var compassNames = [searchBearings]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

type candidate struct {
	ok      bool
	bearing int
	center  geometry.Point
	result  *AnalysisResult
}

// Recommend searches nearby placements for a materially lower-risk
// alternative. It only runs for high or critical baselines. Candidates on a
// ring are evaluated in parallel; selection scans them in bearing order, so
// ties resolve to the smaller ring, then the smaller bearing index, exactly
// as a sequential search would.
func (e *Engine) Recommend(fp *footprint.Footprint, cat *services.Catalog, baseline *AnalysisResult) models.Recommendation {
	if baseline.RiskLevel != models.RiskHigh && baseline.RiskLevel != models.RiskCritical {
		return models.Recommendation{Action: models.ActionNone, Reasoning: "Risk acceptable"}
	}

	plane := geometry.NewPlane(fp.Center)
	var (
		best     *candidate
		bestDist float64
	)
	for distKm := ringStepKm; distKm <= maxRingKm; distKm += ringStepKm {
		ring := e.evaluateRing(plane, fp, cat, distKm)
		for i := range ring {
			c := &ring[i]
			if c.ok && (best == nil || c.result.RiskScore < best.result.RiskScore) {
				best = c
				bestDist = distKm
			}
		}
		if best != nil &&
			best.result.RiskScore <= baseline.RiskScore-earlyStopDrop &&
			best.result.RiskScore < mediumThreshold {
			break
		}
	}

	if best == nil || best.result.RiskScore >= baseline.RiskScore-minImprovement {
		return models.Recommendation{
			Action:    models.ActionNone,
			Reasoning: "No materially better location found nearby",
		}
	}

	lat, lon, score := best.center.Lat, best.center.Lon, best.result.RiskScore
	return models.Recommendation{
		Action:       models.ActionRelocate,
		SuggestedLat: &lat,
		SuggestedLon: &lon,
		NewRiskScore: &score,
		Reasoning:    relocationReasoning(baseline, best.result, bestDist, compassNames[best.bearing]),
	}
}

// evaluateRing analyzes all candidates on one ring concurrently and returns
// them indexed by bearing.
func (e *Engine) evaluateRing(plane geometry.Plane, fp *footprint.Footprint, cat *services.Catalog, distKm float64) []candidate {
	cands := make([]candidate, searchBearings)
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := 0; i < searchBearings; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			bearing := 2 * math.Pi * float64(i) / searchBearings
			center := plane.ToGeo(geometry.XY{
				X: distKm * math.Sin(bearing),
				Y: distKm * math.Cos(bearing),
			})
			moved, err := fp.MoveTo(center)
			if err != nil {
				return
			}
			res, err := e.Analyze(moved, cat)
			if err != nil {
				return
			}
			cands[i] = candidate{ok: true, bearing: i, center: center, result: res}
		}(i)
	}
	wg.Wait()
	return cands
}

// relocationReasoning explains the move, naming the dominant conflict the
// new placement resolves.
func relocationReasoning(baseline, improved *AnalysisResult, distKm float64, direction string) string {
	msg := fmt.Sprintf("Moving %.0f km %s reduces risk from %.1f to %.1f",
		distKm, direction, baseline.RiskScore, improved.RiskScore)

	remaining := make(map[string]bool, len(improved.Conflicts))
	for _, c := range improved.Conflicts {
		remaining[c.LayerID+"/"+c.Type] = true
	}
	for _, c := range baseline.Conflicts {
		if !remaining[c.LayerID+"/"+c.Type] {
			return fmt.Sprintf("%s, clearing the %s conflict with %s.", msg, c.Type, c.LayerName)
		}
	}
	return msg + "."
}
