package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// config holds all daemon configuration, read from environment variables.
type config struct {
	Port        string
	DBPath      string
	SchemaFile  string // optional YAML overriding the built-in tool schemas
	LogMode     string // "prod" or "dev"
	ToolTimeout time.Duration
}

func loadConfig() (*config, error) {
	timeout := 5 * time.Second
	if raw := getEnv("TOOL_TIMEOUT", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TOOL_TIMEOUT %q: %w", raw, err)
		}
		timeout = d
	}
	cfg := &config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "./data/tutorsy.db"),
		SchemaFile:  getEnv("SCHEMA_FILE", ""),
		LogMode:     strings.ToLower(getEnv("LOG_MODE", "dev")),
		ToolTimeout: timeout,
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT cannot be empty")
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH cannot be empty")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
