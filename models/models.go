package models

import (
	"errors"

	geojson "github.com/paulmach/go.geojson"
)

// Error taxonomy. Geometry and validation errors are terminal for a single
// request; they are never retried since the same input reproduces the same
// failure.
var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrValidation      = errors.New("validation error")
)

// Conflict types.
const (
	ConflictOverlap   = "overlap"
	ConflictBuffer    = "buffer"
	ConflictProximity = "proximity"
)

// Conflict severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Risk levels.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Recommendation actions.
const (
	ActionRelocate = "relocate"
	ActionNone     = "none"
)

// Footprint shape kinds.
const (
	ShapeCircle  = "circle"
	ShapeSquare  = "square"
	ShapeHexagon = "hexagon"
	ShapeDrawn   = "drawn"
)

type ConflictCheckRequest struct {
	ProjectType string  `json:"project_type"` // offshore_wind | aquaculture | oae | cable
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RadiusKm    float64 `json:"radius_km"`
	Name        string  `json:"name,omitempty"`

	// Optional shape override. Defaults to circle. Drawn shapes carry
	// their unclosed vertex list as [lon, lat] pairs in click order.
	Shape    string      `json:"shape,omitempty"`
	Vertices [][]float64 `json:"vertices,omitempty"`
}

type Conflict struct {
	LayerID        string   `json:"layer_id"`
	LayerName      string   `json:"layer_name"`
	Type           string   `json:"type"`
	Severity       string   `json:"severity"`
	Detail         string   `json:"detail"`
	OverlapAreaKm2 *float64 `json:"overlap_area_km2,omitempty"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`
}

type Recommendation struct {
	Action       string   `json:"action"`
	SuggestedLat *float64 `json:"suggested_lat,omitempty"`
	SuggestedLon *float64 `json:"suggested_lon,omitempty"`
	NewRiskScore *float64 `json:"new_risk_score,omitempty"`
	Reasoning    string   `json:"reasoning"`
}

// ProjectCircle reports the footprint actually scored. Center is [lat, lon].
type ProjectCircle struct {
	Center   [2]float64 `json:"center"`
	RadiusKm float64    `json:"radius_km"`
}

type ConflictCheckResponse struct {
	RiskScore      float64        `json:"risk_score"`
	RiskLevel      string         `json:"risk_level"`
	Conflicts      []Conflict     `json:"conflicts"`
	Recommendation Recommendation `json:"recommendation"`
	ProjectCircle  ProjectCircle  `json:"project_circle"`
}

// LayerInfo is the wire form of a catalog layer for GET /api/layers.
type LayerInfo struct {
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	Type       string                     `json:"type"`
	Color      string                     `json:"color"`
	Visible    bool                       `json:"visible"`
	SourceName string                     `json:"source_name,omitempty"`
	SourceURL  string                     `json:"source_url,omitempty"`
	GeoJSON    *geojson.FeatureCollection `json:"geojson"`
}

type LayersResponse struct {
	Layers []LayerInfo `json:"layers"`
}

// HistoryEntry is one stored analysis record.
type HistoryEntry struct {
	Id          int64   `json:"id"`
	Name        string  `json:"name"`
	ProjectType string  `json:"project_type"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RadiusKm    float64 `json:"radius_km"`
	RiskScore   float64 `json:"risk_score"`
	RiskLevel   string  `json:"risk_level"`
	Conflicts   int     `json:"conflicts"`
	Action      string  `json:"action"`
	CreatedAt   string  `json:"created_at"`
}

type HistoryResponse struct {
	Analyses []HistoryEntry `json:"analyses"`
}
