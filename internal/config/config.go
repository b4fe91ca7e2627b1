package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds service configuration.
type Config struct {
	ServerAddr          string
	SupervisorName      string
	WorkerCatalogue     string
	WorkerTimeout       time.Duration
	HealthTimeout       time.Duration
	HealthSchedule      string
	HealthStaleAfter    time.Duration
	HealthConcurrency   int
	HealthMonitor       bool
	SendMaxAttempts     int
	SendBackoff         time.Duration
	RuleMinScore        int
	RuleMargin          int
	AssistWorkerID      string
	AssistTimeout       time.Duration
	AssistMinConfidence float64
	StateSigningKey     []byte
	LogLevel            zerolog.Level
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	key, err := parseHexKey(os.Getenv("STATE_SIGNING_KEY"))
	if err != nil {
		return nil, fmt.Errorf("STATE_SIGNING_KEY: %w", err)
	}
	level, err := zerolog.ParseLevel(strings.ToLower(getenv("LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return &Config{
		ServerAddr:          getenv("SERVER_ADDR", "0.0.0.0:8000"),
		SupervisorName:      getenv("SUPERVISOR_NAME", "supervisor"),
		WorkerCatalogue:     os.Getenv("WORKER_CATALOGUE"),
		WorkerTimeout:       parseDuration(os.Getenv("WORKER_TIMEOUT"), 30*time.Second),
		HealthTimeout:       parseDuration(os.Getenv("HEALTH_TIMEOUT"), 5*time.Second),
		HealthSchedule:      getenv("HEALTH_SCHEDULE", "@every 30s"),
		HealthStaleAfter:    parseDuration(os.Getenv("HEALTH_STALE_AFTER"), 60*time.Second),
		HealthConcurrency:   parseInt(os.Getenv("HEALTH_CONCURRENCY"), 8),
		HealthMonitor:       parseBool(os.Getenv("HEALTH_MONITOR_ENABLED"), true),
		SendMaxAttempts:     parseInt(os.Getenv("SEND_MAX_ATTEMPTS"), 2),
		SendBackoff:         parseDuration(os.Getenv("SEND_BACKOFF"), 250*time.Millisecond),
		RuleMinScore:        parseInt(os.Getenv("RULE_MIN_SCORE"), 1),
		RuleMargin:          parseInt(os.Getenv("RULE_MARGIN"), 1),
		AssistWorkerID:      os.Getenv("ASSIST_WORKER_ID"),
		AssistTimeout:       parseDuration(os.Getenv("ASSIST_TIMEOUT"), 10*time.Second),
		AssistMinConfidence: parseFloat(os.Getenv("ASSIST_MIN_CONFIDENCE"), 0.6),
		StateSigningKey:     key,
		LogLevel:            level,
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseBool(val string, def bool) bool {
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

func parseFloat(val string, def float64) float64 {
	if val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return f
}

func parseHexKey(val string) ([]byte, error) {
	if val == "" {
		return nil, nil
	}
	return hex.DecodeString(val)
}
