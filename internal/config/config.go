// Package config handles loading of application settings from environment
// variables and of the sources file that lists the CSV extracts to load.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application, typically loaded from
// environment variables (populated from .env in cmd/main).
type Config struct {
	MongoURI         string
	DatabaseName     string
	CollectionName   string
	ChunkSize        int
	OperationTimeout time.Duration
	ScheduleTime     string
	SourcesFile      string
	LogLevel         string
}

const (
	defaultDatabase    = "analytics"
	defaultCollection  = "records"
	defaultChunkSize   = 50000
	defaultTimeout     = 30 * time.Second
	defaultSchedule    = "02:00"
	defaultSourcesFile = "configs/sources.json"
)

// LoadConfig reads settings from the environment. Only MONGODB_URI is
// required; everything else has a default matching production.
func LoadConfig() (*Config, error) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		return nil, errors.New("MONGODB_URI environment variable not set")
	}

	cfg := &Config{
		MongoURI:         uri,
		DatabaseName:     envOrDefault("DATABASE_NAME", defaultDatabase),
		CollectionName:   envOrDefault("COLLECTION_NAME", defaultCollection),
		ChunkSize:        defaultChunkSize,
		OperationTimeout: defaultTimeout,
		ScheduleTime:     envOrDefault("SCHEDULE_TIME", defaultSchedule),
		SourcesFile:      envOrDefault("SOURCES_FILE", defaultSourcesFile),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
	}

	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid CHUNK_SIZE %q", v)
		}
		cfg.ChunkSize = n
	}

	if v := os.Getenv("OPERATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid OPERATION_TIMEOUT %q", v)
		}
		cfg.OperationTimeout = d
	}

	if _, err := ParseScheduleTime(cfg.ScheduleTime); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseScheduleTime validates an "HH:MM" daily trigger time and returns the
// hour and minute packed as minutes since midnight.
func ParseScheduleTime(s string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid SCHEDULE_TIME %q (want HH:MM)", s)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid SCHEDULE_TIME %q (want HH:MM)", s)
	}
	return hh*60 + mm, nil
}
