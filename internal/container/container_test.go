package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"policysim/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Upstream: config.UpstreamConfig{PolicyURL: "http://127.0.0.1:1", ScoringURL: "http://127.0.0.1:1"},
		Catalog:  config.CatalogConfig{PageSize: 15},
		Server:   config.ServerConfig{Port: "8080", GinMode: "test"},
		Logging:  config.LoggingConfig{Level: "error"},
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNewWithoutDatabase(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Nil(t, c.DB)
	assert.Nil(t, c.RunRepo)
	assert.NotNil(t, c.Catalog)
	assert.NotNil(t, c.Policies)
	assert.NotNil(t, c.Simulator)
	assert.NotNil(t, c.SSEHub)

	_, err = c.Simulator.History(context.Background(), 0)
	assert.Error(t, err, "history is unavailable without a database")
}

func TestNewWithSQLiteHistory(t *testing.T) {
	cfg := testConfig()
	cfg.Database.URL = "file:" + t.Name() + "?mode=memory&cache=shared"

	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	require.NotNil(t, c.RunRepo)
	runs, err := c.Simulator.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestNewRejectsUnknownDatabaseScheme(t *testing.T) {
	cfg := testConfig()
	cfg.Database.URL = "mysql://localhost/runs"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestServerRoutes(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	h := c.Server().Handler()
	for _, path := range []string{"/healthz", "/metrics", "/api/simulator"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
