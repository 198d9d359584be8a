package container

import (
	"context"
	"fmt"
	"log"

	"policysim/adapters/api"
	"policysim/adapters/excel"
	"policysim/adapters/postgres"
	"policysim/app"
	"policysim/internal"
	internalapi "policysim/internal/api"
	"policysim/internal/config"
	"policysim/internal/metrics"
	"policysim/internal/migration"
	"policysim/ports"
	"policysim/ui"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB       *sqlx.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Recorder
	Client   *api.Client
	SSEHub   *internalapi.SSEHub

	// Repositories (data access layer)
	RunRepo ports.RunRepository

	// View services
	Catalog   *app.CatalogService
	Policies  *app.PolicyService
	Simulator *app.SimulatorService
	Exporter  *excel.CatalogExporter
}

// New creates a new dependency injection container. Run history is only
// wired when the config names a database.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level)),
	}

	c.initMetrics()
	c.initClient()

	if cfg.Database.Enabled() {
		db, err := postgres.Open(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := c.InitWithDatabase(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	c.initServices()
	return c, nil
}

// InitWithDatabase migrates the schema and wires repositories
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	c.RunRepo = postgres.NewRunRepository(db)
	log.Printf("Run history enabled")
	return nil
}

func (c *Container) initMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewRecorder(c.Registry)
}

func (c *Container) initClient() {
	cfg := api.ClientConfigFrom(c.Config.Upstream)
	cfg.Metrics = c.Metrics
	cfg.Logger = c.Logger
	c.Client = api.NewClient(cfg)
}

// initServices wires the view services to the upstream client and the event hub
func (c *Container) initServices() {
	c.SSEHub = internalapi.NewSSEHub(c.Metrics, c.Logger)
	sink := internalapi.FanoutSink{c.SSEHub, internalapi.NewLogSink(c.Logger)}

	c.Catalog = app.NewCatalogService(c.Client, c.Config.Catalog.PageSize, sink, c.Metrics, c.Logger)
	c.Policies = app.NewPolicyService(c.Client, c.Logger)
	c.Simulator = app.NewSimulatorService(c.Client, c.RunRepo, sink, c.Metrics, c.Logger)
	c.Exporter = excel.NewCatalogExporter(excel.DefaultExportConfig(), c.Logger)

	log.Printf("View services initialized: Catalog, Policies, Simulator")
}

// Server builds the web server over the container's services
func (c *Container) Server() *ui.Server {
	return ui.NewServer(ui.Deps{
		Catalog:   c.Catalog,
		Policies:  c.Policies,
		Simulator: c.Simulator,
		Exporter:  c.Exporter,
		Hub:       c.SSEHub,
		Registry:  c.Registry,
	})
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}

	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
