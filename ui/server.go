package ui

import (
	"github.com/gin-gonic/gin"

	"datalens/internal/auth"
	"datalens/internal/config"
	"datalens/internal/dataset"
)

// Server wires the HTTP routes to the auth and dataset services
type Server struct {
	router   *gin.Engine
	auth     *auth.Service
	datasets *dataset.Service
}

// NewServer creates the gin engine and registers all routes
func NewServer(cfg *config.Config, authService *auth.Service, datasetService *dataset.Service) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:   gin.Default(),
		auth:     authService,
		datasets: datasetService,
	}
	s.router.MaxMultipartMemory = cfg.Upload.MaxFileSize
	s.registerRoutes()
	return s
}

// Router exposes the engine for serving and for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth())

	v1 := s.router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister())
		authGroup.POST("/login", s.handleLogin())
		authGroup.POST("/logout", s.requireAuth(), s.handleLogout())
	}

	users := v1.Group("/users", s.requireAuth())
	{
		users.GET("/me", s.handleGetMe())
		users.PUT("/me", s.handleUpdateMe())
		users.DELETE("/me", s.handleDeleteMe())
	}

	datasets := v1.Group("/datasets", s.requireAuth())
	{
		datasets.POST("/upload", s.handleUpload())
		datasets.GET("", s.handleListDatasets())
		datasets.GET("/:id", s.handleGetDataset())
		datasets.PUT("/:id", s.handleRenameDataset())
		datasets.DELETE("/:id", s.handleDeleteDataset())
		datasets.GET("/:id/preview", s.handlePreview())
		datasets.GET("/:id/info", s.handleDatasetInfo())
	}

	analysis := v1.Group("/analysis", s.requireAuth())
	{
		analysis.GET("/:id/statistics", s.handleStatistics())
		analysis.GET("/:id/correlation", s.handleCorrelation())
		analysis.GET("/:id/outliers", s.handleOutliers())
		analysis.GET("/:id/trends", s.handleTrends())
		analysis.GET("/:id/summary", s.handleSummary())

		analysis.POST("/:id/visualize/bar", s.handleBarChart())
		analysis.POST("/:id/visualize/line", s.handleLineChart())
		analysis.POST("/:id/visualize/pie", s.handlePieChart())
		analysis.POST("/:id/visualize/scatter", s.handleScatterChart())
		analysis.POST("/:id/visualize/histogram", s.handleHistogramChart())
		analysis.GET("/:id/visualize/heatmap", s.handleHeatmapChart())
		analysis.GET("/:id/visualize/suggest", s.handleSuggestChart())
	}
}

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
}

// Run serves HTTP on the given address until the listener fails
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
