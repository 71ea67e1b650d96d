package footprint

import (
	"errors"
	"math"
	"testing"

	"conflict-service/geometry"
	"conflict-service/models"
)

func TestBuildRegularShapes(t *testing.T) {
	center := geometry.Point{Lon: -70.0, Lat: 40.0}
	testCases := []struct {
		name     string
		shape    string
		radiusKm float64
		vertices int
	}{
		{"Circle", models.ShapeCircle, 5, 65},
		{"Square", models.ShapeSquare, 10, 5},
		{"Hexagon", models.ShapeHexagon, 2.5, 7},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fp, err := Build(Spec{Shape: tc.shape, Center: center, RadiusKm: tc.radiusKm})
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if len(fp.Ring) != tc.vertices {
				t.Errorf("vertex count = %d, want %d", len(fp.Ring), tc.vertices)
			}
			if fp.Ring[0] != fp.Ring[len(fp.Ring)-1] {
				t.Error("ring is not closed")
			}
			if fp.RadiusKm != tc.radiusKm || fp.Center != center || fp.Shape != tc.shape {
				t.Errorf("footprint attributes not preserved: %+v", fp)
			}
			// Every vertex sits at the nominal radius, within the
			// small-angle approximation slack.
			for i, v := range fp.Ring {
				d := geometry.Haversine(center, v)
				if d > tc.radiusKm*1.05 || d < tc.radiusKm*0.95 {
					t.Errorf("vertex %d at distance %v, want ~%v", i, d, tc.radiusKm)
				}
			}
		})
	}
}

func TestBuildSquareRotation(t *testing.T) {
	// The square is rotated an eighth turn: the first vertex sits
	// northeast of center, so edges face the cardinal directions.
	fp, err := Build(Spec{Shape: models.ShapeSquare, Center: geometry.Point{Lon: 0, Lat: 0}, RadiusKm: 10})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	v := fp.Ring[0]
	if v.Lon <= 0 || v.Lat <= 0 {
		t.Errorf("first square vertex should be northeast of center, got %+v", v)
	}
}

func TestBuildDrawn(t *testing.T) {
	vertices := []geometry.Point{
		{Lon: -70.0, Lat: 40.0},
		{Lon: -69.9, Lat: 40.0},
		{Lon: -69.95, Lat: 40.1},
	}
	fp, err := Build(Spec{Shape: models.ShapeDrawn, Vertices: vertices})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(fp.Ring) != 4 {
		t.Errorf("ring length = %d, want 4", len(fp.Ring))
	}
	if fp.Ring[0] != fp.Ring[3] {
		t.Error("ring is not closed")
	}

	wantCenter := geometry.Point{Lon: (-70.0 - 69.9 - 69.95) / 3, Lat: (40.0 + 40.0 + 40.1) / 3}
	if math.Abs(fp.Center.Lon-wantCenter.Lon) > 1e-9 || math.Abs(fp.Center.Lat-wantCenter.Lat) > 1e-9 {
		t.Errorf("centroid = %+v, want %+v", fp.Center, wantCenter)
	}

	// The centroid of the distinct vertices lies inside the drawn ring.
	plane := geometry.NewPlane(fp.Center)
	if !geometry.PointInRing(plane.ToLocal(fp.Center), plane.ToLocalRing(fp.Ring)) {
		t.Error("centroid should lie within the drawn ring")
	}

	// Bounding radius reaches the farthest vertex.
	var far float64
	for _, v := range vertices {
		if d := geometry.Haversine(fp.Center, v); d > far {
			far = d
		}
	}
	if math.Abs(fp.RadiusKm-far) > 1e-9 {
		t.Errorf("radius = %v, want %v", fp.RadiusKm, far)
	}
}

func TestBuildDrawnClosedInput(t *testing.T) {
	// An already-closed click sequence must not grow an extra vertex.
	vertices := []geometry.Point{
		{Lon: 0, Lat: 0},
		{Lon: 1, Lat: 0},
		{Lon: 0.5, Lat: 1},
		{Lon: 0, Lat: 0},
	}
	fp, err := Build(Spec{Shape: models.ShapeDrawn, Vertices: vertices})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(fp.Ring) != 4 {
		t.Errorf("ring length = %d, want 4", len(fp.Ring))
	}
}

func TestBuildErrors(t *testing.T) {
	testCases := []struct {
		name string
		spec Spec
		want error
	}{
		{
			name: "Zero radius",
			spec: Spec{Shape: models.ShapeCircle, Center: geometry.Point{Lon: 0, Lat: 0}, RadiusKm: 0},
			want: models.ErrValidation,
		}, {
			name: "Negative radius",
			spec: Spec{Shape: models.ShapeHexagon, Center: geometry.Point{Lon: 0, Lat: 0}, RadiusKm: -3},
			want: models.ErrValidation,
		}, {
			name: "Radius beyond bound",
			spec: Spec{Shape: models.ShapeCircle, Center: geometry.Point{Lon: 0, Lat: 0}, RadiusKm: 500},
			want: models.ErrValidation,
		}, {
			name: "Unknown shape",
			spec: Spec{Shape: "blob", Center: geometry.Point{Lon: 0, Lat: 0}, RadiusKm: 5},
			want: models.ErrValidation,
		}, {
			name: "Latitude out of range",
			spec: Spec{Shape: models.ShapeCircle, Center: geometry.Point{Lon: 0, Lat: 95}, RadiusKm: 5},
			want: models.ErrValidation,
		}, {
			name: "Longitude out of range",
			spec: Spec{Shape: models.ShapeCircle, Center: geometry.Point{Lon: -190, Lat: 0}, RadiusKm: 5},
			want: models.ErrValidation,
		}, {
			name: "Drawn with two vertices",
			spec: Spec{Shape: models.ShapeDrawn, Vertices: []geometry.Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}}},
			want: models.ErrInvalidGeometry,
		}, {
			name: "Drawn with duplicate vertices",
			spec: Spec{Shape: models.ShapeDrawn, Vertices: []geometry.Point{
				{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0}, {Lon: 1, Lat: 1},
			}},
			want: models.ErrInvalidGeometry,
		}, {
			name: "Drawn self-intersecting",
			spec: Spec{Shape: models.ShapeDrawn, Vertices: []geometry.Point{
				{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 1, Lat: 0}, {Lon: 0, Lat: 1},
			}},
			want: models.ErrInvalidGeometry,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.spec)
			if !errors.Is(err, tc.want) {
				t.Errorf("Build() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMoveTo(t *testing.T) {
	center := geometry.Point{Lon: -70, Lat: 40}
	fp, err := Build(Spec{Shape: models.ShapeHexagon, Center: center, RadiusKm: 8})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	dest := geometry.Point{Lon: -69.8, Lat: 40.1}
	moved, err := fp.MoveTo(dest)
	if err != nil {
		t.Fatalf("MoveTo() error: %v", err)
	}
	if moved.Center != dest || moved.RadiusKm != 8 || moved.Shape != models.ShapeHexagon {
		t.Errorf("moved footprint attributes wrong: %+v", moved)
	}
	if fp.Center != center {
		t.Error("MoveTo must not mutate the original footprint")
	}

	drawn, err := Build(Spec{Shape: models.ShapeDrawn, Vertices: []geometry.Point{
		{Lon: 0, Lat: 0}, {Lon: 0.1, Lat: 0}, {Lon: 0.05, Lat: 0.1},
	}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	movedDrawn, err := drawn.MoveTo(geometry.Point{Lon: 1, Lat: 1})
	if err != nil {
		t.Fatalf("MoveTo() error: %v", err)
	}
	if movedDrawn.RadiusKm != drawn.RadiusKm {
		t.Errorf("translated drawn radius changed: %v vs %v", movedDrawn.RadiusKm, drawn.RadiusKm)
	}
	if len(movedDrawn.Ring) != len(drawn.Ring) {
		t.Errorf("translated drawn ring length changed")
	}
}
