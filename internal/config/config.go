// Package config loads lynxget's configuration from environment
// variables, following the same envOr/envIntOr helper-function style the
// rest of this codebase's ancestry uses.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every subsystem's configuration.
type Config struct {
	Fetch     FetchConfig
	Crawl     CrawlConfig
	Telemetry TelemetryConfig
	CLI       CLIConfig
	Log       LogConfig
}

// FetchConfig controls the transport collaborator.
type FetchConfig struct {
	Timeout        time.Duration // default: 30s
	MaxRetries     int           // default: 2
	Proxy          string
	CookieFile     string
	TLSPreset      string // default: "chrome"
	FixtureDir     string // AGENT_FETCH_E2E_FIXTURES
}

// CrawlConfig controls the bounded BFS crawler.
type CrawlConfig struct {
	MaxDepth          int     // default: 3
	MaxPages          int     // default: 200
	MaxQueueSize      int     // default: 5000
	RequestsPerSecond float64 // default: 2.0
}

// TelemetryConfig controls the optional e2e-run recorder.
type TelemetryConfig struct {
	DBPath     string // RECORD_E2E_DB; empty disables telemetry entirely
	RecordHTML bool   // RECORD_HTML
}

// CLIConfig controls the lynxget CLI's default behavior.
type CLIConfig struct {
	DefaultJSON  bool
	DefaultQuiet bool
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default depends on LYNXGET_ENV
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	logFormat := "json"
	if envOr("LYNXGET_ENV", "production") == "development" {
		logFormat = "text"
	}

	return &Config{
		Fetch: FetchConfig{
			Timeout:    envDurationOr("LYNXGET_FETCH_TIMEOUT", 30*time.Second),
			MaxRetries: envIntOr("LYNXGET_FETCH_RETRIES", 2),
			Proxy:      os.Getenv("LYNXGET_PROXY"),
			CookieFile: os.Getenv("AGENT_FETCH_COOKIE_FILE"),
			TLSPreset:  envOr("LYNXGET_PRESET", "chrome"),
			FixtureDir: os.Getenv("AGENT_FETCH_E2E_FIXTURES"),
		},
		Crawl: CrawlConfig{
			MaxDepth:          envIntOr("LYNXGET_CRAWL_MAX_DEPTH", 3),
			MaxPages:          envIntOr("LYNXGET_CRAWL_MAX_PAGES", 200),
			MaxQueueSize:      envIntOr("LYNXGET_CRAWL_MAX_QUEUE", 5000),
			RequestsPerSecond: envFloatOr("LYNXGET_CRAWL_RPS", 2.0),
		},
		Telemetry: TelemetryConfig{
			DBPath:     os.Getenv("RECORD_E2E_DB"),
			RecordHTML: envBoolOr("RECORD_HTML", false),
		},
		CLI: CLIConfig{
			DefaultJSON:  envBoolOr("LYNXGET_DEFAULT_JSON", false),
			DefaultQuiet: envBoolOr("LYNXGET_DEFAULT_QUIET", false),
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LYNXGET_LOG_FORMAT", logFormat),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
