package ui

import (
	"log"
	"net/http"

	"policysim/adapters/excel"
	"policysim/app"
	"policysim/internal/api"
	"policysim/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Server is the backend-for-frontend: a JSON view of the catalog, detail
// and simulator state plus an event stream announcing changes.
type Server struct {
	router    *gin.Engine
	catalog   *app.CatalogService
	policies  *app.PolicyService
	simulator *app.SimulatorService
	exporter  *excel.CatalogExporter
	hub       *api.SSEHub
	registry  *prometheus.Registry
}

// Deps are the services the server exposes
type Deps struct {
	Catalog   *app.CatalogService
	Policies  *app.PolicyService
	Simulator *app.SimulatorService
	Exporter  *excel.CatalogExporter
	Hub       *api.SSEHub
	Registry  *prometheus.Registry
}

// NewServer creates a new web server instance with every route registered
func NewServer(deps Deps) *Server {
	s := &Server{
		router:    gin.New(),
		catalog:   deps.Catalog,
		policies:  deps.Policies,
		simulator: deps.Simulator,
		exporter:  deps.Exporter,
		hub:       deps.Hub,
		registry:  deps.Registry,
	}
	if s.exporter == nil {
		s.exporter = excel.NewCatalogExporter(excel.DefaultExportConfig(), nil)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.registry != nil {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler(s.registry)))
	}

	catalogHandler := NewCatalogHandler(s.catalog, s.exporter)
	policyHandler := NewPolicyHandler(s.policies)
	simulatorHandler := NewSimulatorHandler(s.simulator)

	routes := s.router.Group("/api")
	{
		routes.GET("/catalog", catalogHandler.HandleView())
		routes.POST("/catalog/refresh", catalogHandler.HandleRefresh())
		routes.PUT("/catalog/filters", catalogHandler.HandleReplaceFilters())
		routes.PUT("/catalog/filters/:facet", catalogHandler.HandleSetFilter())
		routes.DELETE("/catalog/filters", catalogHandler.HandleClearFilters())
		routes.POST("/catalog/more", catalogHandler.HandleLoadMore())
		routes.GET("/catalog/export", catalogHandler.HandleExport())

		routes.GET("/policy/:id", policyHandler.HandleDetail())

		routes.GET("/simulator", simulatorHandler.HandleView())
		routes.PATCH("/simulator/config", simulatorHandler.HandlePatchConfig())
		routes.POST("/simulator/reset", simulatorHandler.HandleReset())
		routes.POST("/simulator/run", simulatorHandler.HandleRun())
		routes.GET("/simulator/runs", simulatorHandler.HandleRuns())
		routes.GET("/simulator/runs/:id", simulatorHandler.HandleRunByID())
	}

	if s.hub != nil {
		routes.GET("/events", s.hub.HandleSSE)
	}
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting policysim on http://%s", addr)
	return s.router.Run(addr)
}
