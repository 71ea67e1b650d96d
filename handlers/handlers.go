package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"conflict-service/database"
	"conflict-service/engine"
	"conflict-service/footprint"
	"conflict-service/geometry"
	"conflict-service/models"
	"conflict-service/services"
)

type AnalysisHandler struct {
	engine  *engine.Engine
	catalog *services.Catalog
	history *database.HistoryService // nil when no database is configured
}

func NewAnalysisHandler(eng *engine.Engine, catalog *services.Catalog, history *database.HistoryService) *AnalysisHandler {
	return &AnalysisHandler{
		engine:  eng,
		catalog: catalog,
		history: history,
	}
}

// HealthCheck reports service status and per-layer feature counts
func (h *AnalysisHandler) HealthCheck(c *gin.Context) {
	counts := make(map[string]int, h.catalog.Len())
	for _, l := range h.catalog.Layers() {
		counts[l.ID] = len(l.Features)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        "conflict-service",
		"layers_loaded":  h.catalog.Len(),
		"feature_counts": counts,
	})
}

// ConflictCheck runs the full analysis pipeline: build footprint, detect
// conflicts, score, recommend.
func (h *AnalysisHandler) ConflictCheck(c *gin.Context) {
	args := &models.ConflictCheckRequest{}

	if err := c.ShouldBindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /conflict-check call: %w", err)
		c.String(http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	spec, err := requestSpec(args)
	if err != nil {
		respondBuildError(c, err)
		return
	}
	fp, err := footprint.Build(spec)
	if err != nil {
		respondBuildError(c, err)
		return
	}
	h.analyze(c, args, fp)
}

func respondBuildError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.String(http.StatusBadRequest, fmt.Sprint(err))
	case errors.Is(err, models.ErrInvalidGeometry):
		c.String(http.StatusUnprocessableEntity, fmt.Sprint(err))
	default:
		log.Errorf("Error building footprint: %w", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
	}
}

func (h *AnalysisHandler) analyze(c *gin.Context, args *models.ConflictCheckRequest, fp *footprint.Footprint) {
	result, err := h.engine.Analyze(fp, h.catalog)
	if err != nil {
		if errors.Is(err, models.ErrInvalidGeometry) {
			c.String(http.StatusUnprocessableEntity, fmt.Sprint(err))
			return
		}
		log.Errorf("Error analyzing footprint: %w", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	recommendation := h.engine.Recommend(fp, h.catalog, result)

	conflicts := result.Conflicts
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	resp := &models.ConflictCheckResponse{
		RiskScore:      result.RiskScore,
		RiskLevel:      result.RiskLevel,
		Conflicts:      conflicts,
		Recommendation: recommendation,
		ProjectCircle: models.ProjectCircle{
			Center:   [2]float64{result.Center.Lat, result.Center.Lon},
			RadiusKm: result.RadiusKm,
		},
	}

	if h.history != nil {
		entry := &models.HistoryEntry{
			Name:        args.Name,
			ProjectType: args.ProjectType,
			Latitude:    result.Center.Lat,
			Longitude:   result.Center.Lon,
			RadiusKm:    result.RadiusKm,
			RiskScore:   result.RiskScore,
			RiskLevel:   result.RiskLevel,
			Conflicts:   len(conflicts),
			Action:      recommendation.Action,
		}
		if err := h.history.SaveAnalysis(c.Request.Context(), entry); err != nil {
			log.Errorf("Error saving analysis history: %w", err)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetLayers returns all catalog layers with their raw GeoJSON
func (h *AnalysisHandler) GetLayers(c *gin.Context) {
	layers := make([]models.LayerInfo, 0, h.catalog.Len())
	for _, l := range h.catalog.Layers() {
		layers = append(layers, layerInfo(l))
	}
	c.JSON(http.StatusOK, &models.LayersResponse{Layers: layers})
}

// GetLayer returns a single layer by ID
func (h *AnalysisHandler) GetLayer(c *gin.Context) {
	id := c.Param("id")
	layer, ok := h.catalog.Get(id)
	if !ok {
		c.String(http.StatusNotFound, fmt.Sprintf("Layer %q not found", id))
		return
	}
	c.JSON(http.StatusOK, layerInfo(layer))
}

// GetHistory returns recent analysis records
func (h *AnalysisHandler) GetHistory(c *gin.Context) {
	if h.history == nil {
		c.String(http.StatusServiceUnavailable, "analysis history is not configured")
		return
	}
	limit := 20
	if limitStr, ok := c.GetQuery("limit"); ok {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v <= 0 {
			c.String(http.StatusBadRequest, fmt.Sprintf("Parsing limit: %v", limitStr))
			return
		}
		limit = v
	}
	entries, err := h.history.RecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		log.Errorf("Error getting analysis history: %w", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, &models.HistoryResponse{Analyses: entries})
}

func requestSpec(args *models.ConflictCheckRequest) (footprint.Spec, error) {
	shape := args.Shape
	if shape == "" {
		shape = models.ShapeCircle
	}
	if shape == models.ShapeDrawn {
		vertices := make([]geometry.Point, 0, len(args.Vertices))
		for _, v := range args.Vertices {
			if len(v) != 2 {
				return footprint.Spec{}, fmt.Errorf("%w: drawn vertices must be [lon, lat] pairs", models.ErrValidation)
			}
			vertices = append(vertices, geometry.Point{Lon: v[0], Lat: v[1]})
		}
		return footprint.Spec{Shape: shape, Vertices: vertices}, nil
	}
	return footprint.Spec{
		Shape:    shape,
		Center:   geometry.Point{Lon: args.Longitude, Lat: args.Latitude},
		RadiusKm: args.RadiusKm,
	}, nil
}

func layerInfo(l *services.Layer) models.LayerInfo {
	return models.LayerInfo{
		ID:         l.ID,
		Name:       l.Name,
		Type:       l.Kind,
		Color:      l.Color,
		Visible:    true,
		SourceName: l.SourceName,
		SourceURL:  l.SourceURL,
		GeoJSON:    l.GeoJSON,
	}
}
