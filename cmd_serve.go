package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/adapter/gemini"
	"github.com/xiaot623/gogo/vizstudio/internal/config"
	"github.com/xiaot623/gogo/vizstudio/internal/contextdoc"
	"github.com/xiaot623/gogo/vizstudio/internal/logging"
	"github.com/xiaot623/gogo/vizstudio/internal/policy"
	store "github.com/xiaot623/gogo/vizstudio/internal/repository"
	"github.com/xiaot623/gogo/vizstudio/internal/service"
	httptransport "github.com/xiaot623/gogo/vizstudio/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the studio HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != logLevel {
		if logger, err = logging.New(cfg.LogLevel); err != nil {
			return err
		}
	}

	logger.Info("starting vizstudio",
		zap.Int("port", cfg.HTTPPort),
		zap.String("database", cfg.DatabaseURL),
		zap.String("static_dir", cfg.StaticDir),
		zap.String("chat_model", cfg.ChatModel),
		zap.String("image_model", cfg.ImageModel))

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	// Remote tier of context resolution
	var remote contextdoc.RemoteFetcher
	switch {
	case cfg.RemoteBaseURL != "":
		remote = contextdoc.NewHTTPFetcher(cfg.RemoteBaseURL, cfg.RemoteTimeout)
	case cfg.StaticDir != "":
		remote = contextdoc.NewDirFetcher(cfg.StaticDir)
	}
	resolver := contextdoc.NewResolver(db, remote, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize policy engine
	policyEngine, err := policy.Load(ctx, cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	client := gemini.NewClient(cfg.Mode, cfg.GeminiBaseURL, logger)
	svc := service.New(db, resolver, client, cfg, policyEngine, logger)
	server := httptransport.NewServer(svc, cfg.StaticDir, logger)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("studio started", zap.Int("port", cfg.HTTPPort))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("shutting down vizstudio")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("vizstudio stopped")
	return nil
}
