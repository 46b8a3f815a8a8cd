package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/upsearch/internal/fakesearch"
	logpkg "github.com/kailas-cloud/upsearch/internal/logger"
	"github.com/kailas-cloud/upsearch/internal/version"
)

const shutdownTimeout = 10 * time.Second

func serveFakeCmd(g *globalFlags) *cobra.Command {
	var (
		addr   string
		tokens []string
		lag    time.Duration
		env    string
	)

	cmd := &cobra.Command{
		Use:   "serve-fake",
		Short: "Run an in-memory search service for local development",
		Long: `Run an in-memory search service for local development.

The service speaks the same HTTP contract as the hosted one, keeps everything
in memory and exposes Prometheus metrics on /metrics. Point the client at it
with UPSTASH_SEARCH_REST_URL=http://<addr>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logpkg.NewLogger(env, g.logLevel)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			return runServeFake(cmd.Context(), addr, tokens, lag, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().StringSliceVar(&tokens, "token", nil, "Accepted bearer tokens (default: authentication disabled)")
	cmd.Flags().DurationVar(&lag, "indexing-lag", 0, "Delay before written documents become searchable")
	cmd.Flags().StringVar(&env, "log-env", "local", "Logger environment: local, dev, prod")

	return cmd
}

// runServeFake serves until ctx is canceled, then shuts down gracefully.
func runServeFake(ctx context.Context, addr string, tokens []string, lag time.Duration, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fake, err := fakesearch.New(
		fakesearch.WithTokens(tokens...),
		fakesearch.WithIndexingLag(lag),
		fakesearch.WithLogger(logger),
		fakesearch.WithRegistry(reg),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting fake search service",
		zap.String("version", version.Version),
		zap.String("addr", addr),
		zap.Bool("auth", len(tokens) > 0),
		zap.Duration("indexing_lag", lag),
	)

	errCh := make(chan error, 1)
	go func() {
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
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully")
	return nil
}
