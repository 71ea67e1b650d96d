package geometry

import "math"

// Rings are closed vertex lists (first == last) in local km coordinates.
// Operations that care about orientation expect counter-clockwise rings;
// EnsureCCW normalizes.

// open drops the closing vertex if present.
func open(ring []XY) []XY {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		return ring[:n-1]
	}
	return ring
}

func signedArea(pts []XY) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// RingArea returns the absolute area of a closed ring in km².
func RingArea(ring []XY) float64 {
	return math.Abs(signedArea(open(ring)))
}

// EnsureCCW returns the ring in counter-clockwise orientation.
func EnsureCCW(ring []XY) []XY {
	if signedArea(open(ring)) >= 0 {
		return ring
	}
	out := make([]XY, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

func cross(o, a, b XY) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func onSegment(p, q, r XY) bool {
	return math.Min(p.X, r.X)-1e-12 <= q.X && q.X <= math.Max(p.X, r.X)+1e-12 &&
		math.Min(p.Y, r.Y)-1e-12 <= q.Y && q.Y <= math.Max(p.Y, r.Y)+1e-12
}

// SegmentsIntersect reports whether segments a1-a2 and b1-b2 touch or cross,
// including collinear overlap.
func SegmentsIntersect(a1, a2, b1, b2 XY) bool {
	d1 := cross(a1, a2, b1)
	d2 := cross(a1, a2, b2)
	d3 := cross(b1, b2, a1)
	d4 := cross(b1, b2, a2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(a1, b1, a2) {
		return true
	}
	if d2 == 0 && onSegment(a1, b2, a2) {
		return true
	}
	if d3 == 0 && onSegment(b1, a1, b2) {
		return true
	}
	if d4 == 0 && onSegment(b1, a2, b2) {
		return true
	}
	return false
}

// PointInRing is a ray-cast containment test. Boundary points count as inside.
func PointInRing(p XY, ring []XY) bool {
	pts := open(ring)
	n := len(pts)
	if n < 3 {
		return false
	}
	inside := false
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		if cross(a, b, p) == 0 && onSegment(a, p, b) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// RingsIntersect reports whether two closed rings overlap, touch, or contain
// one another.
func RingsIntersect(a, b []XY) bool {
	pa, pb := open(a), open(b)
	for i := 0; i < len(pa); i++ {
		for j := 0; j < len(pb); j++ {
			if SegmentsIntersect(pa[i], pa[(i+1)%len(pa)], pb[j], pb[(j+1)%len(pb)]) {
				return true
			}
		}
	}
	if len(pa) > 0 && PointInRing(pa[0], b) {
		return true
	}
	if len(pb) > 0 && PointInRing(pb[0], a) {
		return true
	}
	return false
}

func pointSegDistance(p, a, b XY) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

func segSegDistance(a1, a2, b1, b2 XY) float64 {
	if SegmentsIntersect(a1, a2, b1, b2) {
		return 0
	}
	d := pointSegDistance(a1, b1, b2)
	d = math.Min(d, pointSegDistance(a2, b1, b2))
	d = math.Min(d, pointSegDistance(b1, a1, a2))
	return math.Min(d, pointSegDistance(b2, a1, a2))
}

// RingDistance returns the minimum separation between two closed rings, or 0
// when they intersect or contain one another.
func RingDistance(a, b []XY) float64 {
	if RingsIntersect(a, b) {
		return 0
	}
	pa, pb := open(a), open(b)
	best := math.Inf(1)
	for i := 0; i < len(pa); i++ {
		for j := 0; j < len(pb); j++ {
			d := segSegDistance(pa[i], pa[(i+1)%len(pa)], pb[j], pb[(j+1)%len(pb)])
			if d < best {
				best = d
			}
		}
	}
	return best
}

// PolylineIntersectsRing reports whether an open polyline crosses or enters a
// closed ring.
func PolylineIntersectsRing(line []XY, ring []XY) bool {
	pr := open(ring)
	for i := 0; i+1 < len(line); i++ {
		for j := 0; j < len(pr); j++ {
			if SegmentsIntersect(line[i], line[i+1], pr[j], pr[(j+1)%len(pr)]) {
				return true
			}
		}
	}
	for _, p := range line {
		if PointInRing(p, ring) {
			return true
		}
	}
	return false
}

// PolylineRingDistance returns the minimum separation between an open
// polyline and a closed ring, 0 when they intersect.
func PolylineRingDistance(line []XY, ring []XY) float64 {
	if PolylineIntersectsRing(line, ring) {
		return 0
	}
	pr := open(ring)
	best := math.Inf(1)
	for i := 0; i+1 < len(line); i++ {
		for j := 0; j < len(pr); j++ {
			d := segSegDistance(line[i], line[i+1], pr[j], pr[(j+1)%len(pr)])
			if d < best {
				best = d
			}
		}
	}
	if len(line) == 1 {
		best = PointRingDistance(line[0], ring)
	}
	return best
}

// PointRingDistance returns the distance from a point to a closed ring, 0
// when the point is inside.
func PointRingDistance(p XY, ring []XY) float64 {
	if PointInRing(p, ring) {
		return 0
	}
	pr := open(ring)
	best := math.Inf(1)
	for i := 0; i < len(pr); i++ {
		d := pointSegDistance(p, pr[i], pr[(i+1)%len(pr)])
		if d < best {
			best = d
		}
	}
	return best
}

// SelfIntersects reports whether any two non-adjacent edges of a closed ring
// cross. Shared endpoints of adjacent edges do not count.
func SelfIntersects(ring []XY) bool {
	pts := open(ring)
	n := len(pts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges, including the first-last pair.
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if SegmentsIntersect(pts[i], pts[(i+1)%n], pts[j], pts[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// Triangulate splits a closed counter-clockwise ring into triangles by ear
// clipping. Falls back to a fan when no ear can be found on degenerate input.
func Triangulate(ring []XY) [][3]XY {
	pts := append([]XY(nil), open(EnsureCCW(ring))...)
	var tris [][3]XY
	for len(pts) > 3 {
		clipped := false
		n := len(pts)
		for i := 0; i < n; i++ {
			prev, cur, next := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
			if cross(prev, cur, next) <= 0 {
				continue // reflex or degenerate vertex
			}
			ear := true
			for j := 0; j < n; j++ {
				if j == (i+n-1)%n || j == i || j == (i+1)%n {
					continue
				}
				if pointInTriangle(pts[j], prev, cur, next) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, [3]XY{prev, cur, next})
			pts = append(pts[:i], pts[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Degenerate ring; fan out from the first vertex.
			for i := 1; i+1 < len(pts); i++ {
				tris = append(tris, [3]XY{pts[0], pts[i], pts[i+1]})
			}
			return tris
		}
	}
	if len(pts) == 3 {
		tris = append(tris, [3]XY{pts[0], pts[1], pts[2]})
	}
	return tris
}

func pointInTriangle(p, a, b, c XY) bool {
	d1 := cross(a, b, p)
	d2 := cross(b, c, p)
	d3 := cross(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// clipConvex clips an open subject polygon against a convex counter-clockwise
// clip polygon (Sutherland-Hodgman) and returns the open result.
func clipConvex(subject []XY, clip []XY) []XY {
	out := append([]XY(nil), subject...)
	n := len(clip)
	for i := 0; i < n && len(out) > 0; i++ {
		a, b := clip[i], clip[(i+1)%n]
		in := out
		out = nil
		for j := 0; j < len(in); j++ {
			cur, next := in[j], in[(j+1)%len(in)]
			curIn := cross(a, b, cur) >= 0
			nextIn := cross(a, b, next) >= 0
			switch {
			case curIn && nextIn:
				out = append(out, next)
			case curIn && !nextIn:
				out = append(out, lineIntersection(cur, next, a, b))
			case !curIn && nextIn:
				out = append(out, lineIntersection(cur, next, a, b), next)
			}
		}
	}
	return out
}

func lineIntersection(p1, p2, q1, q2 XY) XY {
	a1, b1 := p2.Y-p1.Y, p1.X-p2.X
	c1 := a1*p1.X + b1*p1.Y
	a2, b2 := q2.Y-q1.Y, q1.X-q2.X
	c2 := a2*q1.X + b2*q1.Y
	det := a1*b2 - a2*b1
	if det == 0 {
		return p2
	}
	return XY{X: (b2*c1 - b1*c2) / det, Y: (a1*c2 - a2*c1) / det}
}

// IntersectionArea computes the exact planar area shared by two closed simple
// rings. The first ring is triangulated and the second is clipped against
// each triangle; triangles partition the ring, so the clipped areas sum.
func IntersectionArea(a, b []XY) float64 {
	subject := open(EnsureCCW(b))
	if len(subject) < 3 {
		return 0
	}
	var area float64
	for _, tri := range Triangulate(a) {
		clipped := clipConvex(subject, tri[:])
		if len(clipped) >= 3 {
			area += math.Abs(signedArea(clipped))
		}
	}
	return area
}

// Expand offsets every edge of a closed counter-clockwise ring outward by d
// km using mitered joins. Sharp vertices are capped to avoid unbounded miter
// spikes.
func Expand(ring []XY, d float64) []XY {
	pts := open(EnsureCCW(ring))
	n := len(pts)
	if n < 3 || d <= 0 {
		return append([]XY(nil), ring...)
	}
	out := make([]XY, 0, n+1)
	for i := 0; i < n; i++ {
		prev, cur, next := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
		n1 := edgeNormal(prev, cur)
		n2 := edgeNormal(cur, next)
		mx, my := n1.X+n2.X, n1.Y+n2.Y
		ml := math.Hypot(mx, my)
		if ml < 1e-12 {
			// U-turn vertex; fall back to the incoming edge normal.
			mx, my, ml = n1.X, n1.Y, 1
		}
		mx, my = mx/ml, my/ml
		scale := d / math.Max(mx*n1.X+my*n1.Y, 0.25)
		out = append(out, XY{X: cur.X + mx*scale, Y: cur.Y + my*scale})
	}
	out = append(out, out[0])
	return out
}

// edgeNormal returns the outward unit normal of edge a-b on a CCW ring.
func edgeNormal(a, b XY) XY {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return XY{}
	}
	return XY{X: dy / l, Y: -dx / l}
}
