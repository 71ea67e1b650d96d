// Package services holds the reference-data catalog: the immutable set of
// regulatory and infrastructure layers every analysis is checked against.
package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/golang/geo/s2"
	geojson "github.com/paulmach/go.geojson"

	"conflict-service/geometry"
)

// Layer kinds.
const (
	KindPolygon = "polygon"
	KindLine    = "line"
	KindPoint   = "point"
)

// LayerDef describes one catalog layer and where its data lives.
type LayerDef struct {
	ID         string
	Name       string
	Kind       string
	Color      string
	File       string
	BufferKm   float64
	SourceName string
	SourceURL  string
}

// DefaultLayerDefs is the bundled federal reference dataset manifest.
var DefaultLayerDefs = []LayerDef{
	{
		ID:         "wind-leases",
		Name:       "Offshore Wind Leases",
		Kind:       KindPolygon,
		Color:      "#3B82F6",
		File:       "wind_leases.geojson",
		BufferKm:   5.0,
		SourceName: "BOEM Renewable Energy GIS Data",
		SourceURL:  "https://www.boem.gov/renewable-energy/mapping-and-data/renewable-energy-gis-data",
	},
	{
		ID:         "marine-protected-areas",
		Name:       "Marine Protected Areas",
		Kind:       KindPolygon,
		Color:      "#10B981",
		File:       "marine_protected_areas.geojson",
		BufferKm:   5.0,
		SourceName: "NOAA MPA Inventory",
		SourceURL:  "https://marineprotectedareas.noaa.gov/dataanalysis/mpainventory/",
	},
	{
		ID:         "shipping-lanes",
		Name:       "Shipping Lanes",
		Kind:       KindPolygon,
		Color:      "#F59E0B",
		File:       "shipping_lanes.geojson",
		BufferKm:   10.0,
		SourceName: "MarineCadastre AIS Data",
		SourceURL:  "https://marinecadastre.gov/ais/",
	},
	{
		ID:         "submarine-cables",
		Name:       "Submarine Cables",
		Kind:       KindLine,
		Color:      "#8B5CF6",
		File:       "submarine_cables.geojson",
		BufferKm:   2.0,
		SourceName: "TeleGeography Submarine Cable Map",
		SourceURL:  "https://www.submarinecablemap.com/",
	},
}

// Feature is one parsed geometry of a layer, with its display name resolved
// from the GeoJSON properties.
type Feature struct {
	Name     string
	Polygons [][]geometry.Point // closed outer rings
	Lines    [][]geometry.Point
	Points   []geometry.Point
}

// Layer is an immutable catalog entry: the raw GeoJSON for the layers API
// plus parsed geometries and an s2 bounding rect for fast rejection.
type Layer struct {
	ID         string
	Name       string
	Kind       string
	Color      string
	BufferKm   float64
	SourceName string
	SourceURL  string
	GeoJSON    *geojson.FeatureCollection
	Features   []Feature
	Bound      s2.Rect
}

// Catalog is the immutable, ordered set of layers shared read-only by all
// analysis calls. It is an explicit value, never ambient state.
type Catalog struct {
	layers []*Layer
	byID   map[string]*Layer
}

func FromLayers(layers []*Layer) *Catalog {
	byID := make(map[string]*Layer, len(layers))
	for _, l := range layers {
		byID[l.ID] = l
	}
	return &Catalog{layers: layers, byID: byID}
}

func (c *Catalog) Layers() []*Layer {
	return c.layers
}

func (c *Catalog) Get(id string) (*Layer, bool) {
	l, ok := c.byID[id]
	return l, ok
}

func (c *Catalog) Len() int {
	return len(c.layers)
}

// LoadCatalog reads every layer in DefaultLayerDefs from dataDir. A missing
// or unreadable file degrades to an empty layer so a partial catalog still
// serves analyses.
func LoadCatalog(dataDir string) *Catalog {
	layers := make([]*Layer, 0, len(DefaultLayerDefs))
	for _, def := range DefaultLayerDefs {
		fc := loadFeatureCollection(filepath.Join(dataDir, def.File), def.ID)
		layers = append(layers, LayerFromGeoJSON(def, fc))
	}
	cat := FromLayers(layers)
	for _, l := range cat.Layers() {
		log.Infof("Layer %s: %d features", l.ID, len(l.Features))
	}
	return cat
}

func loadFeatureCollection(path, layerID string) *geojson.FeatureCollection {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnf("Layer %s: %s not readable, creating empty layer: %v", layerID, path, err)
		return geojson.NewFeatureCollection()
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.Warnf("Layer %s: failed to parse %s, creating empty layer: %v", layerID, path, err)
		return geojson.NewFeatureCollection()
	}
	return fc
}

// LayerFromGeoJSON parses a feature collection into an immutable layer.
// Unparseable features are skipped, not fatal.
func LayerFromGeoJSON(def LayerDef, fc *geojson.FeatureCollection) *Layer {
	layer := &Layer{
		ID:         def.ID,
		Name:       def.Name,
		Kind:       def.Kind,
		Color:      def.Color,
		BufferKm:   def.BufferKm,
		SourceName: def.SourceName,
		SourceURL:  def.SourceURL,
		GeoJSON:    fc,
		Bound:      s2.EmptyRect(),
	}
	for _, f := range fc.Features {
		feat, ok := parseFeature(f, def.Name)
		if !ok {
			continue
		}
		layer.Features = append(layer.Features, feat)
		for _, ring := range feat.Polygons {
			for _, p := range ring {
				layer.Bound = layer.Bound.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
			}
		}
		for _, line := range feat.Lines {
			for _, p := range line {
				layer.Bound = layer.Bound.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
			}
		}
		for _, p := range feat.Points {
			layer.Bound = layer.Bound.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
		}
	}
	return layer
}

func parseFeature(f *geojson.Feature, fallbackName string) (Feature, bool) {
	if f == nil || f.Geometry == nil {
		return Feature{}, false
	}
	feat := Feature{Name: featureName(f.Properties, fallbackName)}
	g := f.Geometry
	switch g.Type {
	case geojson.GeometryPolygon:
		if ring, ok := toRing(g.Polygon); ok {
			feat.Polygons = append(feat.Polygons, ring)
		}
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			if ring, ok := toRing(poly); ok {
				feat.Polygons = append(feat.Polygons, ring)
			}
		}
	case geojson.GeometryLineString:
		if line := toLine(g.LineString); len(line) >= 2 {
			feat.Lines = append(feat.Lines, line)
		}
	case geojson.GeometryMultiLineString:
		for _, ls := range g.MultiLineString {
			if line := toLine(ls); len(line) >= 2 {
				feat.Lines = append(feat.Lines, line)
			}
		}
	case geojson.GeometryPoint:
		if len(g.Point) >= 2 {
			feat.Points = append(feat.Points, geometry.Point{Lon: g.Point[0], Lat: g.Point[1]})
		}
	case geojson.GeometryMultiPoint:
		for _, pt := range g.MultiPoint {
			if len(pt) >= 2 {
				feat.Points = append(feat.Points, geometry.Point{Lon: pt[0], Lat: pt[1]})
			}
		}
	default:
		return Feature{}, false
	}
	if len(feat.Polygons) == 0 && len(feat.Lines) == 0 && len(feat.Points) == 0 {
		return Feature{}, false
	}
	return feat, true
}

// toRing converts a GeoJSON polygon's outer ring. Interior rings (holes) are
// ignored; the reference datasets do not carry them and treating a hole as
// solid only overstates risk.
func toRing(poly [][][]float64) ([]geometry.Point, bool) {
	if len(poly) == 0 || len(poly[0]) < 4 {
		return nil, false
	}
	outer := poly[0]
	ring := make([]geometry.Point, len(outer))
	for i, c := range outer {
		if len(c) < 2 {
			return nil, false
		}
		ring[i] = geometry.Point{Lon: c[0], Lat: c[1]}
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring, true
}

func toLine(coords [][]float64) []geometry.Point {
	line := make([]geometry.Point, 0, len(coords))
	for _, c := range coords {
		if len(c) >= 2 {
			line = append(line, geometry.Point{Lon: c[0], Lat: c[1]})
		}
	}
	return line
}

// featureName picks a human-readable name from feature properties, trying
// the attribute keys the federal datasets actually use.
func featureName(props map[string]interface{}, fallback string) string {
	for _, key := range []string{"Site_Name", "LEASE_NUMB", "NAME", "name", "OBJECTID"} {
		if v, ok := props[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return fallback
}
