package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freightflow/gateway/internal/server"
)

var version = "0.0.1"

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "gateway",
	Short:   "FreightFlow Gateway - freight dashboard API over identity and data-platform backends",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	store := initStore(cfg)
	data := initDataplane(cfg, store, logger)
	bridge := initBridge(cfg, data, store, logger)
	registry := initProviderRegistry(cfg, data, logger)

	// Rebuild the credential from durable state before serving traffic.
	// A missing session just means the first caller has to log in.
	if cred, err := bridge.Restore(ctx); err == nil && cred != nil {
		logger.Info("Restored session",
			zap.String("user_id", cred.User.ID),
			zap.Bool("degraded", cred.Degraded()),
		)
	}

	logger.Info("Starting FreightFlow Gateway",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("default_carriers", cfg.DefaultCarriers),
	)

	srv := server.New(server.Config{
		Port:                    cfg.Port,
		RecommendMaxTransitDays: cfg.RecommendMaxTransitDays,
	}, bridge, registry, data, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
