package dependency

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/supervisor/internal/config"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

func testConfig() *config.Config {
	return &config.Config{
		SupervisorName:      "supervisor",
		WorkerTimeout:       time.Second,
		HealthTimeout:       time.Second,
		HealthSchedule:      "@every 1m",
		HealthStaleAfter:    time.Minute,
		SendMaxAttempts:     1,
		AssistTimeout:       time.Second,
		AssistMinConfidence: 0.6,
	}
}

func TestNewWiresEmbeddedCatalogue(t *testing.T) {
	c, err := New(testConfig(), zerolog.Nop())

	require.NoError(t, err)
	assert.Len(t, c.Registry().All(), 15)
	assert.NotNil(t, c.Orchestrator())
	assert.NotNil(t, c.Monitor())
	assert.NotNil(t, c.Hub())

	rec := httptest.NewRecorder()
	c.Server().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewWithAssist(t *testing.T) {
	cfg := testConfig()
	cfg.AssistWorkerID = "gemini_wrapper_agent"

	c, err := New(cfg, zerolog.Nop())

	require.NoError(t, err)
	_, err = c.Registry().Lookup("gemini_wrapper_agent")
	assert.NoError(t, err)
}

func TestNewRejectsUnknownAssist(t *testing.T) {
	cfg := testConfig()
	cfg.AssistWorkerID = "oracle"

	_, err := New(cfg, zerolog.Nop())

	assert.ErrorIs(t, err, worker.ErrNotFound)
}

func TestNewRejectsMissingCatalogue(t *testing.T) {
	cfg := testConfig()
	cfg.WorkerCatalogue = "/does/not/exist.yaml"

	_, err := New(cfg, zerolog.Nop())

	assert.Error(t, err)
}
