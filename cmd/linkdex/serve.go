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

	"github.com/kailas-cloud/linkdex/internal/config"
	chiTransport "github.com/kailas-cloud/linkdex/internal/transport/chi"
	documentuc "github.com/kailas-cloud/linkdex/internal/usecase/document"
	searchuc "github.com/kailas-cloud/linkdex/internal/usecase/search"
	"github.com/kailas-cloud/linkdex/internal/version"
	"github.com/kailas-cloud/linkdex/internal/worker"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(parent context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting linkdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("lexical_engine", cfg.Search.LexicalEngine),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	lexical, indexer, closeIndex, err := a.lexicalEngine(ctx, cfg.Search.LexicalEngine)
	if err != nil {
		return err
	}
	defer closeIndex()

	var indexers []documentuc.Indexer
	if indexer != nil {
		indexers = append(indexers, indexer)
	}

	semantic := searchuc.NewLinearEngine(a.storage.docs, a.embedding, logger)
	server := chiTransport.NewServer(chiTransport.Services{
		Search:    searchuc.New(lexical, semantic, logger),
		Backfill:  a.backfill,
		Generate:  a.embedding,
		Costs:     a.ledger,
		Documents: documentuc.New(a.storage.docs, logger, indexers...),
		Health:    a.health(),
	}, chiTransport.Options{
		SearchDefaults: searchDefaults(cfg.Search),
		RecentRequests: cfg.Cost.RecentRequests,
		APIKeys:        cfg.Auth.APIKeys,
	}, logger)

	if cfg.Backfill.Schedule != "" {
		scheduler, err := worker.NewBackfillScheduler(a.backfill, cfg.Backfill.Schedule, cfg.Backfill.ScheduleLimit, logger)
		if err != nil {
			return err
		}
		go scheduler.Start(ctx)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
