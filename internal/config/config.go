package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Exactly one of DatabasePath (bolt driver) and RedisURL (redis
	// driver) selects the store backend.
	DatabasePath string
	RedisURL     string

	LogLevel  string
	LogFormat string

	// AnalyticsURL is the telemetry sink; empty disables event posting.
	AnalyticsURL string

	VoteMaxAttempts    int
	VoteInitialBackoff time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		AnalyticsURL: getEnv("ANALYTICS_URL", ""),
	}

	if cfg.DatabasePath == "" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("DATABASE_PATH or REDIS_URL is required")
	}
	if cfg.DatabasePath != "" && cfg.RedisURL != "" {
		return nil, fmt.Errorf("DATABASE_PATH and REDIS_URL are mutually exclusive")
	}

	attempts, err := strconv.Atoi(getEnv("VOTE_MAX_ATTEMPTS", "8"))
	if err != nil || attempts < 1 {
		return nil, fmt.Errorf("VOTE_MAX_ATTEMPTS must be a positive integer")
	}
	cfg.VoteMaxAttempts = attempts

	backoff, err := time.ParseDuration(getEnv("VOTE_INITIAL_BACKOFF", "5ms"))
	if err != nil || backoff <= 0 {
		return nil, fmt.Errorf("VOTE_INITIAL_BACKOFF must be a positive duration")
	}
	cfg.VoteInitialBackoff = backoff

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
