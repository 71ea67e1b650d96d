// Package geometry implements the local-plane math shared by every metric
// operation: an equirectangular projection centered on a request's footprint,
// great-circle distances, and planar polygon operations. The projection is a
// small-angle approximation; it is accurate enough for project radii up to
// low hundreds of km and is reused, never re-derived, so that buffer, area
// and distance results stay self-consistent within one analysis.
package geometry

import "math"

const EarthRadiusKm = 6371.0

const degToRad = math.Pi / 180.0

// Point is a geographic coordinate in degrees.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// XY is a coordinate in a local metric plane, in km.
type XY struct {
	X float64
	Y float64
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(p, q Point) float64 {
	dLat := (q.Lat - p.Lat) * degToRad
	dLon := (q.Lon - p.Lon) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(p.Lat*degToRad)*math.Cos(q.Lat*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Plane is an equirectangular projection centered at an origin point.
type Plane struct {
	origin Point
	cosLat float64
}

func NewPlane(origin Point) Plane {
	cosLat := math.Cos(origin.Lat * degToRad)
	// Degenerate at the poles; clamp so the inverse stays finite.
	if math.Abs(cosLat) < 1e-9 {
		cosLat = 1e-9
	}
	return Plane{origin: origin, cosLat: cosLat}
}

func (p Plane) Origin() Point {
	return p.origin
}

// ToLocal converts a geographic point to local km coordinates.
func (p Plane) ToLocal(pt Point) XY {
	return XY{
		X: (pt.Lon - p.origin.Lon) * p.cosLat * EarthRadiusKm * degToRad,
		Y: (pt.Lat - p.origin.Lat) * EarthRadiusKm * degToRad,
	}
}

// ToGeo converts local km coordinates back to a geographic point.
func (p Plane) ToGeo(xy XY) Point {
	return Point{
		Lon: p.origin.Lon + xy.X/(p.cosLat*EarthRadiusKm*degToRad),
		Lat: p.origin.Lat + xy.Y/(EarthRadiusKm*degToRad),
	}
}

// ToLocalRing projects a closed geographic ring into the local plane.
func (p Plane) ToLocalRing(ring []Point) []XY {
	out := make([]XY, len(ring))
	for i, pt := range ring {
		out[i] = p.ToLocal(pt)
	}
	return out
}
