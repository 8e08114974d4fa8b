package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"deployfreq/internal/circleci"
	"deployfreq/internal/config"
	"deployfreq/internal/deploys"
)

var (
	configFile  string
	circleToken string
	targetName  string
	logLevel    string
	logJSON     bool
)

// environment is everything a command needs to resolve deploys
type environment struct {
	Logger   *slog.Logger
	Config   *config.Config
	Registry *config.Registry
	Resolver *deploys.Resolver
}

// setupEnvironment loads configuration and builds the CircleCI client
func setupEnvironment() (*environment, error) {
	logger, err := setupLogging(logLevel, logJSON)
	if err != nil {
		return nil, err
	}

	if circleToken == "" {
		return nil, fmt.Errorf("CircleCI token required: set --token or CIRCLECI_TOKEN")
	}

	cfg, targets, path, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if path == "" {
		logger.Debug("No configuration file found, using built-in target", "searched", config.SearchPaths())
	} else {
		logger.Debug("Loaded configuration", "config", path, "targets", len(targets))
	}

	client := circleci.NewClient(circleToken, circleci.Options{
		BaseURL:           cfg.APIURL,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	resolver := deploys.NewResolver(client, logger)
	resolver.AppURL = cfg.AppURL

	return &environment{
		Logger:   logger,
		Config:   cfg,
		Registry: config.NewRegistry(targets, cfg.DefaultTarget),
		Resolver: resolver,
	}, nil
}

// setupLogging configures slog on stderr so stdout stays clean for reports
func setupLogging(level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler), nil
}

// Helper functions for environment variables
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
