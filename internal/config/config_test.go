package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsWhenEnvironmentIsEmpty(t *testing.T) {
	for _, key := range []string{
		"LYNXGET_ENV", "LYNXGET_FETCH_TIMEOUT", "LYNXGET_FETCH_RETRIES", "LYNXGET_PROXY",
		"AGENT_FETCH_COOKIE_FILE", "LYNXGET_PRESET", "AGENT_FETCH_E2E_FIXTURES",
		"LYNXGET_CRAWL_MAX_DEPTH", "LYNXGET_CRAWL_MAX_PAGES", "LYNXGET_CRAWL_MAX_QUEUE", "LYNXGET_CRAWL_RPS",
		"RECORD_E2E_DB", "RECORD_HTML", "LYNXGET_DEFAULT_JSON", "LYNXGET_DEFAULT_QUIET",
		"LOG_LEVEL", "LYNXGET_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2, cfg.Fetch.MaxRetries)
	assert.Equal(t, "chrome", cfg.Fetch.TLSPreset)
	assert.Equal(t, 3, cfg.Crawl.MaxDepth)
	assert.Equal(t, 200, cfg.Crawl.MaxPages)
	assert.Equal(t, 5000, cfg.Crawl.MaxQueueSize)
	assert.Equal(t, 2.0, cfg.Crawl.RequestsPerSecond)
	assert.False(t, cfg.Telemetry.RecordHTML)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DevelopmentEnvDefaultsToTextLogFormat(t *testing.T) {
	t.Setenv("LYNXGET_ENV", "development")
	t.Setenv("LYNXGET_LOG_FORMAT", "")
	cfg := Load()
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ExplicitLogFormatOverridesEnvDefault(t *testing.T) {
	t.Setenv("LYNXGET_ENV", "development")
	t.Setenv("LYNXGET_LOG_FORMAT", "json")
	cfg := Load()
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ParsesOverriddenNumericAndBoolEnvVars(t *testing.T) {
	t.Setenv("LYNXGET_FETCH_RETRIES", "5")
	t.Setenv("LYNXGET_CRAWL_RPS", "0.5")
	t.Setenv("RECORD_HTML", "true")

	cfg := Load()
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)
	assert.Equal(t, 0.5, cfg.Crawl.RequestsPerSecond)
	assert.True(t, cfg.Telemetry.RecordHTML)
}

func TestLoad_IgnoresUnparsableNumericOverrideAndFallsBack(t *testing.T) {
	t.Setenv("LYNXGET_FETCH_RETRIES", "not-a-number")
	cfg := Load()
	assert.Equal(t, 2, cfg.Fetch.MaxRetries)
}
