// Package footprint builds project footprints: closed geographic polygons
// derived from a shape specification or a user-drawn vertex list.
package footprint

import (
	"fmt"
	"math"

	"conflict-service/geometry"
	"conflict-service/models"
)

const maxRadiusKm = 200.0

// shapeSides maps regular shape kinds to vertex count and rotation. The
// square is rotated an eighth turn so edges, not corners, face the cardinal
// directions.
var shapeSides = map[string]struct {
	sides    int
	rotation float64
}{
	models.ShapeCircle:  {sides: 64, rotation: 0},
	models.ShapeSquare:  {sides: 4, rotation: math.Pi / 4},
	models.ShapeHexagon: {sides: 6, rotation: 0},
}

// Spec describes a footprint to build. Drawn shapes carry Vertices (unclosed,
// in click order) and ignore Center/RadiusKm, which are derived.
type Spec struct {
	Shape    string
	Center   geometry.Point
	RadiusKm float64
	Vertices []geometry.Point
}

// Footprint is an immutable project extent. Ring is closed (first == last).
// RadiusKm is a nominal size: the construction radius for regular shapes and
// the bounding centroid-to-vertex radius for drawn ones.
type Footprint struct {
	Center   geometry.Point
	RadiusKm float64
	Shape    string
	Ring     []geometry.Point
}

// Build constructs a footprint from a spec. It fails with
// models.ErrValidation on out-of-range inputs and models.ErrInvalidGeometry
// on degenerate or self-intersecting drawn shapes.
func Build(spec Spec) (*Footprint, error) {
	if spec.Shape == models.ShapeDrawn {
		return buildDrawn(spec.Vertices)
	}
	return buildRegular(spec)
}

func buildRegular(spec Spec) (*Footprint, error) {
	def, ok := shapeSides[spec.Shape]
	if !ok {
		return nil, fmt.Errorf("%w: unknown shape %q", models.ErrValidation, spec.Shape)
	}
	if spec.RadiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius_km must be positive, got %v", models.ErrValidation, spec.RadiusKm)
	}
	if spec.RadiusKm > maxRadiusKm {
		return nil, fmt.Errorf("%w: radius_km must be at most %v", models.ErrValidation, maxRadiusKm)
	}
	if err := checkCoords(spec.Center); err != nil {
		return nil, err
	}

	latRad := spec.Center.Lat * math.Pi / 180
	ring := make([]geometry.Point, 0, def.sides+1)
	for i := 0; i <= def.sides; i++ {
		angle := float64(i)/float64(def.sides)*2*math.Pi + def.rotation
		dLat := spec.RadiusKm / geometry.EarthRadiusKm * math.Cos(angle)
		dLon := spec.RadiusKm / geometry.EarthRadiusKm * math.Sin(angle) / math.Cos(latRad)
		ring = append(ring, geometry.Point{
			Lon: spec.Center.Lon + dLon*180/math.Pi,
			Lat: spec.Center.Lat + dLat*180/math.Pi,
		})
	}
	// Close exactly; the loop's first and last vertices agree only up to
	// floating point.
	ring[len(ring)-1] = ring[0]

	return &Footprint{
		Center:   spec.Center,
		RadiusKm: spec.RadiusKm,
		Shape:    spec.Shape,
		Ring:     ring,
	}, nil
}

func buildDrawn(vertices []geometry.Point) (*Footprint, error) {
	distinct := dedupe(vertices)
	if len(distinct) < 3 {
		return nil, fmt.Errorf("%w: drawn shape needs at least 3 distinct vertices, got %d",
			models.ErrInvalidGeometry, len(distinct))
	}
	for _, v := range distinct {
		if err := checkCoords(v); err != nil {
			return nil, err
		}
	}

	ring := append(append([]geometry.Point(nil), distinct...), distinct[0])

	var sumLon, sumLat float64
	for _, v := range distinct {
		sumLon += v.Lon
		sumLat += v.Lat
	}
	center := geometry.Point{
		Lon: sumLon / float64(len(distinct)),
		Lat: sumLat / float64(len(distinct)),
	}

	var radius float64
	for _, v := range distinct {
		if d := geometry.Haversine(center, v); d > radius {
			radius = d
		}
	}

	plane := geometry.NewPlane(center)
	if geometry.SelfIntersects(plane.ToLocalRing(ring)) {
		return nil, fmt.Errorf("%w: drawn shape is self-intersecting", models.ErrInvalidGeometry)
	}

	return &Footprint{
		Center:   center,
		RadiusKm: radius,
		Shape:    models.ShapeDrawn,
		Ring:     ring,
	}, nil
}

// MoveTo rebuilds the footprint at a new center: regular shapes are
// reconstructed, drawn rings are translated vertex by vertex.
func (f *Footprint) MoveTo(center geometry.Point) (*Footprint, error) {
	if f.Shape != models.ShapeDrawn {
		return Build(Spec{Shape: f.Shape, Center: center, RadiusKm: f.RadiusKm})
	}
	if err := checkCoords(center); err != nil {
		return nil, err
	}
	dLon := center.Lon - f.Center.Lon
	dLat := center.Lat - f.Center.Lat
	ring := make([]geometry.Point, len(f.Ring))
	for i, v := range f.Ring {
		ring[i] = geometry.Point{Lon: v.Lon + dLon, Lat: v.Lat + dLat}
	}
	return &Footprint{
		Center:   center,
		RadiusKm: f.RadiusKm,
		Shape:    models.ShapeDrawn,
		Ring:     ring,
	}, nil
}

func dedupe(vertices []geometry.Point) []geometry.Point {
	var out []geometry.Point
	for _, v := range vertices {
		dup := false
		for _, u := range out {
			if u == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func checkCoords(p geometry.Point) error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", models.ErrValidation, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", models.ErrValidation, p.Lon)
	}
	return nil
}
