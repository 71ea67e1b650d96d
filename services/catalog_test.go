package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/s2"
	geojson "github.com/paulmach/go.geojson"
)

func latLng(lat, lon float64) s2.LatLng {
	return s2.LatLngFromDegrees(lat, lon)
}

func polygonFeature(props map[string]interface{}, ring [][]float64) *geojson.Feature {
	f := geojson.NewPolygonFeature([][][]float64{ring})
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

var testRing = [][]float64{
	{-70.2, 39.8},
	{-69.8, 39.8},
	{-69.8, 40.2},
	{-70.2, 40.2},
	{-70.2, 39.8},
}

func TestLayerFromGeoJSON(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.AddFeature(polygonFeature(map[string]interface{}{"Site_Name": "Stellwagen Bank"}, testRing))

	def := LayerDef{ID: "marine-protected-areas", Name: "Marine Protected Areas", Kind: KindPolygon, BufferKm: 5}
	layer := LayerFromGeoJSON(def, fc)

	if len(layer.Features) != 1 {
		t.Fatalf("feature count = %d, want 1", len(layer.Features))
	}
	feat := layer.Features[0]
	if feat.Name != "Stellwagen Bank" {
		t.Errorf("feature name = %q", feat.Name)
	}
	if len(feat.Polygons) != 1 {
		t.Fatalf("polygon count = %d, want 1", len(feat.Polygons))
	}
	ring := feat.Polygons[0]
	if ring[0] != ring[len(ring)-1] {
		t.Error("parsed ring is not closed")
	}
	if layer.Bound.IsEmpty() {
		t.Error("layer bound should not be empty")
	}
	if !layer.Bound.ContainsLatLng(latLng(40.0, -70.0)) {
		t.Error("layer bound should contain the ring interior")
	}
}

func TestLayerFromGeoJSONMultiAndLines(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	multi := geojson.NewMultiPolygonFeature(
		[][][]float64{testRing},
		[][][]float64{{{-60, 30}, {-59, 30}, {-59, 31}, {-60, 30}}},
	)
	fc.AddFeature(multi)
	fc.AddFeature(geojson.NewLineStringFeature([][]float64{{-70, 39}, {-69, 39.5}, {-68, 39}}))
	fc.AddFeature(geojson.NewPointFeature([]float64{-69.5, 40.5}))

	layer := LayerFromGeoJSON(LayerDef{ID: "mixed", Name: "Mixed", Kind: KindPolygon, BufferKm: 2}, fc)
	if len(layer.Features) != 3 {
		t.Fatalf("feature count = %d, want 3", len(layer.Features))
	}
	if len(layer.Features[0].Polygons) != 2 {
		t.Errorf("multipolygon rings = %d, want 2", len(layer.Features[0].Polygons))
	}
	if len(layer.Features[1].Lines) != 1 {
		t.Errorf("line count = %d, want 1", len(layer.Features[1].Lines))
	}
	if len(layer.Features[2].Points) != 1 {
		t.Errorf("point count = %d, want 1", len(layer.Features[2].Points))
	}
}

func TestFeatureNamePriority(t *testing.T) {
	testCases := []struct {
		name  string
		props map[string]interface{}
		e     string
	}{
		{"Site_Name wins", map[string]interface{}{"Site_Name": "A", "name": "B"}, "A"},
		{"Lease number", map[string]interface{}{"LEASE_NUMB": "OCS-A 0501"}, "OCS-A 0501"},
		{"Lowercase name", map[string]interface{}{"name": "Gulf Stream"}, "Gulf Stream"},
		{"Object id", map[string]interface{}{"OBJECTID": 17}, "17"},
		{"Fallback to layer", map[string]interface{}{"other": "x"}, "Fallback"},
		{"Empty properties", map[string]interface{}{}, "Fallback"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := featureName(tc.props, "Fallback"); got != tc.e {
				t.Errorf("featureName() = %q, want %q", got, tc.e)
			}
		})
	}
}

func TestLoadCatalogDegradesOnMissingFiles(t *testing.T) {
	dir := t.TempDir()
	windLeases := `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {"LEASE_NUMB": "OCS-A 0486"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[-70.2, 39.8], [-69.8, 39.8], [-69.8, 40.2], [-70.2, 40.2], [-70.2, 39.8]]]
			}
		}]
	}`
	if err := os.WriteFile(filepath.Join(dir, "wind_leases.geojson"), []byte(windLeases), 0o644); err != nil {
		t.Fatal(err)
	}
	// Corrupt file degrades the same way a missing one does.
	if err := os.WriteFile(filepath.Join(dir, "shipping_lanes.geojson"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cat := LoadCatalog(dir)
	if cat.Len() != len(DefaultLayerDefs) {
		t.Fatalf("catalog size = %d, want %d", cat.Len(), len(DefaultLayerDefs))
	}

	wind, ok := cat.Get("wind-leases")
	if !ok {
		t.Fatal("wind-leases layer missing")
	}
	if len(wind.Features) != 1 {
		t.Errorf("wind-leases features = %d, want 1", len(wind.Features))
	}
	if wind.Features[0].Name != "OCS-A 0486" {
		t.Errorf("wind lease feature name = %q", wind.Features[0].Name)
	}

	for _, id := range []string{"marine-protected-areas", "shipping-lanes", "submarine-cables"} {
		layer, ok := cat.Get(id)
		if !ok {
			t.Fatalf("layer %s missing", id)
		}
		if len(layer.Features) != 0 {
			t.Errorf("layer %s should be empty, has %d features", id, len(layer.Features))
		}
	}
}

func TestFromLayersOrderAndLookup(t *testing.T) {
	a := LayerFromGeoJSON(LayerDef{ID: "a", Name: "A"}, geojson.NewFeatureCollection())
	b := LayerFromGeoJSON(LayerDef{ID: "b", Name: "B"}, geojson.NewFeatureCollection())
	cat := FromLayers([]*Layer{a, b})

	if cat.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cat.Len())
	}
	if cat.Layers()[0].ID != "a" || cat.Layers()[1].ID != "b" {
		t.Error("layer order not preserved")
	}
	if _, ok := cat.Get("a"); !ok {
		t.Error("Get(a) should succeed")
	}
	if _, ok := cat.Get("zzz"); ok {
		t.Error("Get(zzz) should fail")
	}
}
