package main

import (
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"conflict-service/config"
	"conflict-service/database"
	"conflict-service/engine"
	"conflict-service/handlers"
	"conflict-service/services"
	"conflict-service/version"
)

const (
	EndPointHealth        = "/health"
	EndPointConflictCheck = "/conflict-check"
	EndPointLayers        = "/layers"
	EndPointLayer         = "/layer/:id"
	EndPointHistory       = "/history"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg := config.Load()

	log.Info("Starting the conflict service...")

	// Load the layer catalog once; it is shared read-only by all requests.
	catalog := services.LoadCatalog(cfg.DataDir)
	log.Infof("Catalog loaded with %d layers", catalog.Len())

	// Optional analysis-history store. The service runs without it.
	var history *database.HistoryService
	if cfg.HistoryEnabled() {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := database.InitSchema(db); err != nil {
			log.Fatalf("Failed to initialize database schema: %v", err)
		}
		history = database.NewHistoryService(db)
	} else {
		log.Info("No DB_HOST configured, analysis history disabled")
	}

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(engine.New(), catalog, history)

	// Setup router
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get("conflict-service"))
	})

	// Register health endpoint (outside API group)
	router.GET(EndPointHealth, analysisHandler.HealthCheck)

	// Create API router group
	api := router.Group("/api")
	{
		api.POST(EndPointConflictCheck, analysisHandler.ConflictCheck)
		api.GET(EndPointLayers, analysisHandler.GetLayers)
		api.GET(EndPointLayer, analysisHandler.GetLayer)
		api.GET(EndPointHistory, analysisHandler.GetHistory)
	}

	// Get server port from config
	serverPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatalf("Invalid PORT configuration: %v", err)
	}

	// Start server
	log.Infof("Conflict service starting on port %d", serverPort)
	if err := router.Run(fmt.Sprintf(":%d", serverPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
