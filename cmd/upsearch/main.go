// Package main is the entry point for the upsearch CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/upsearch"
	"github.com/kailas-cloud/upsearch/internal/config"
	logpkg "github.com/kailas-cloud/upsearch/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "upsearch",
		Short: "Command line client for the hosted search service",
		Long: `upsearch manages indexes and documents of a hosted search database.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Config file (--config, ./upsearch.yaml or the user config directory)
  4. Environment variables for credentials missing from the file

Environment variables:
  UPSTASH_SEARCH_REST_URL      Database REST URL
  UPSTASH_SEARCH_REST_TOKEN    Database REST token`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config file (default: ./upsearch.yaml)")
	cmd.PersistentFlags().StringVar(&g.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(upsertCmd(&g))
	cmd.AddCommand(searchCmd(&g))
	cmd.AddCommand(fetchCmd(&g))
	cmd.AddCommand(deleteCmd(&g))
	cmd.AddCommand(rangeCmd(&g))
	cmd.AddCommand(resetCmd(&g))
	cmd.AddCommand(indexesCmd(&g))
	cmd.AddCommand(infoCmd(&g))
	cmd.AddCommand(serveFakeCmd(&g))
	cmd.AddCommand(versionCmd())

	return cmd
}

// session is what a client command needs after configuration is resolved.
type session struct {
	cfg    config.Config
	client *upsearch.Client
	logger *zap.Logger
	ctx    context.Context
	out    io.Writer
}

func (s *session) close() { _ = s.logger.Sync() }

// openSession loads configuration, builds the logger and the client.
func openSession(cmd *cobra.Command, g *globalFlags) (*session, error) {
	if err := config.LoadDotEnv(g.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger, err := logpkg.NewLogger(cfg.Logging.Env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	opts := []upsearch.Option{
		upsearch.WithRetries(*cfg.Client.Retries),
		upsearch.WithRetryInterval(cfg.Client.RetryInterval()),
		upsearch.WithLogger(logger),
	}
	if !*cfg.Client.Telemetry {
		opts = append(opts, upsearch.WithoutTelemetry())
	}
	client, err := upsearch.New(cfg.Credentials.URL, cfg.Credentials.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &session{
		cfg:    cfg,
		client: client,
		logger: logger,
		ctx:    logpkg.ContextWithLogger(cmd.Context(), logger),
		out:    cmd.OutOrStdout(),
	}, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

