// Package engine detects spatial conflicts between a project footprint and
// the layer catalog, scores them, and searches for lower-risk placements.
// Every entry point is a pure function of its inputs: the engine holds no
// state, so concurrent analyses need no coordination.
package engine

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/golang/geo/s2"

	"conflict-service/footprint"
	"conflict-service/geometry"
	"conflict-service/models"
	"conflict-service/services"
)

// AnalysisResult is the outcome of one analysis call. Center and RadiusKm
// snapshot the footprint actually scored.
type AnalysisResult struct {
	RiskScore float64
	RiskLevel string
	Conflicts []models.Conflict
	Center    geometry.Point
	RadiusKm  float64
}

type Engine struct {
	workers int
}

func New() *Engine {
	return &Engine{workers: runtime.GOMAXPROCS(0)}
}

// Analyze checks the footprint against every catalog layer and returns the
// scored result. Two calls with the same inputs produce identical results.
func (e *Engine) Analyze(fp *footprint.Footprint, cat *services.Catalog) (*AnalysisResult, error) {
	plane := geometry.NewPlane(fp.Center)
	local := geometry.EnsureCCW(plane.ToLocalRing(fp.Ring))
	if geometry.SelfIntersects(local) {
		return nil, fmt.Errorf("%w: footprint ring is self-intersecting", models.ErrInvalidGeometry)
	}

	bound := ringBound(fp.Ring)
	var conflicts []models.Conflict
	var raw float64
	for _, layer := range cat.Layers() {
		if layer.Bound.IsEmpty() {
			continue
		}
		if !layer.Bound.Intersects(expandRect(bound, layer.BufferKm, fp.Center.Lat)) {
			continue
		}
		if c, pts, ok := e.checkLayer(plane, local, layer); ok {
			conflicts = append(conflicts, c)
			raw += pts
		}
	}

	sortBySeverity(conflicts)
	score := round1(clamp(raw, 0, 100))
	return &AnalysisResult{
		RiskScore: score,
		RiskLevel: RiskLevel(score),
		Conflicts: conflicts,
		Center:    fp.Center,
		RadiusKm:  fp.RadiusKm,
	}, nil
}

// checkLayer runs the overlap check and, failing that, the buffer check for
// one layer. At most one conflict is emitted per layer; overlap areas sum
// across the layer's features and buffer distance is the minimum.
func (e *Engine) checkLayer(plane geometry.Plane, local []geometry.XY, layer *services.Layer) (models.Conflict, float64, bool) {
	var (
		overlap     bool
		overlapArea float64
		overlapName string
	)
	for _, feat := range layer.Features {
		for _, ring := range feat.Polygons {
			lr := plane.ToLocalRing(ring)
			if geometry.RingsIntersect(local, lr) {
				overlap = true
				overlapArea += geometry.IntersectionArea(local, lr)
				if overlapName == "" {
					overlapName = feat.Name
				}
			}
		}
		for _, line := range feat.Lines {
			if geometry.PolylineIntersectsRing(plane.ToLocalRing(line), local) {
				overlap = true
				if overlapName == "" {
					overlapName = feat.Name
				}
			}
		}
		for _, pt := range feat.Points {
			if geometry.PointInRing(plane.ToLocal(pt), local) {
				overlap = true
				if overlapName == "" {
					overlapName = feat.Name
				}
			}
		}
	}
	if overlap {
		area := round2(overlapArea)
		return models.Conflict{
			LayerID:        layer.ID,
			LayerName:      layer.Name,
			Type:           models.ConflictOverlap,
			Severity:       models.SeverityCritical,
			Detail:         fmt.Sprintf("%s overlap", layer.Name),
			OverlapAreaKm2: &area,
		}, overlapPoints(area), true
	}

	expanded := geometry.Expand(local, layer.BufferKm)
	dist := math.Inf(1)
	name := layer.Name
	hit := false
	for _, feat := range layer.Features {
		for _, ring := range feat.Polygons {
			lr := plane.ToLocalRing(ring)
			if !geometry.RingsIntersect(expanded, lr) {
				continue
			}
			hit = true
			if d := geometry.RingDistance(local, lr); d < dist {
				dist = d
				name = feat.Name
			}
		}
		for _, line := range feat.Lines {
			ll := plane.ToLocalRing(line)
			if !geometry.PolylineIntersectsRing(ll, expanded) {
				continue
			}
			hit = true
			if d := geometry.PolylineRingDistance(ll, local); d < dist {
				dist = d
				name = feat.Name
			}
		}
		for _, pt := range feat.Points {
			lp := plane.ToLocal(pt)
			if !geometry.PointInRing(lp, expanded) {
				continue
			}
			hit = true
			if d := geometry.PointRingDistance(lp, local); d < dist {
				dist = d
				name = feat.Name
			}
		}
	}
	if !hit {
		return models.Conflict{}, 0, false
	}

	severity := models.SeverityInfo
	if dist <= layer.BufferKm/2 {
		severity = models.SeverityWarning
	}
	d := round2(dist)
	return models.Conflict{
		LayerID:    layer.ID,
		LayerName:  layer.Name,
		Type:       models.ConflictBuffer,
		Severity:   severity,
		Detail:     fmt.Sprintf("within %.1f km of %s", dist, name),
		DistanceKm: &d,
	}, bufferPoints(layer.BufferKm, dist, severity), true
}

var severityRank = map[string]int{
	models.SeverityCritical: 0,
	models.SeverityWarning:  1,
	models.SeverityInfo:     2,
}

// sortBySeverity orders conflicts critical first for presentation, keeping
// insertion order within each band.
func sortBySeverity(conflicts []models.Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		return severityRank[conflicts[i].Severity] < severityRank[conflicts[j].Severity]
	})
}

func ringBound(ring []geometry.Point) s2.Rect {
	rect := s2.EmptyRect()
	for _, p := range ring {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
	}
	return rect
}

// expandRect grows a bounding rect by a km margin, for the cheap
// rect-vs-rect rejection that runs before exact geometry tests. The margin
// is applied per interval, in radians.
func expandRect(rect s2.Rect, marginKm, lat float64) s2.Rect {
	latRad := marginKm / geometry.EarthRadiusKm
	cosLat := math.Cos(lat * math.Pi / 180)
	if math.Abs(cosLat) < 1e-9 {
		cosLat = 1e-9
	}
	return s2.Rect{
		Lat: rect.Lat.Expanded(latRad),
		Lng: rect.Lng.Expanded(latRad / cosLat),
	}
}
