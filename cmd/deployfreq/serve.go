package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deployfreq/internal/server"

	"github.com/spf13/cobra"
)

var (
	host     string
	port     int
	testMode bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server exposing deploys per day as JSON and as charts.

Every configured target is served under /deploys/{target} and /chart/{target}.`,
	RunE: runServe,
}

func init() {
	// Flags for serve command
	serveCmd.Flags().StringVar(&host, "host", getEnvOrDefault("DEPLOYFREQ_HOST", "127.0.0.1"), "Host to bind to")
	serveCmd.Flags().IntVarP(&port, "port", "p", getEnvOrDefaultInt("DEPLOYFREQ_PORT", 5000), "Port to listen on")
	serveCmd.Flags().BoolVar(&testMode, "test-mode", os.Getenv("DEPLOYFREQ_TEST_MODE") == "1", "Enable test mode (no rate limiting)")
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := setupEnvironment()
	if err != nil {
		return err
	}

	logger := env.Logger
	logger.Info("Starting deployfreq", "version", version, "targets", env.Registry.List())

	if env.Registry.Count() == 0 {
		logger.Warn("No targets configured, every deploys request will return 404")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(env.Registry, env.Resolver, logger, testMode)
	if err := srv.Start(ctx, host, port); err != nil {
		logger.Error("Server failed", "error", err)
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
