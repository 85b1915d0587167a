package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shapiromatron/hawc-backup-sweep/internal/config"
	"github.com/shapiromatron/hawc-backup-sweep/internal/health"
	"github.com/shapiromatron/hawc-backup-sweep/internal/server"
	"github.com/shapiromatron/hawc-backup-sweep/internal/storage"
	"github.com/shapiromatron/hawc-backup-sweep/internal/sweep"
)

// errParseFailures marks a sweep that finished but could not read every name.
var errParseFailures = errors.New("some backup names could not be parsed")

type rootOptions struct {
	dryRun bool
	today  string
	dir    string
}

// newRootCmd builds the command. Logs go to out; clock supplies the wall time.
func newRootCmd(out io.Writer, clock func() time.Time) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "hawc-backup-sweep",
		Short: "Delete HAWC database backups the retention policy no longer keeps",
		Long: `hawc-backup-sweep scans a backup location for timestamped database dumps
and deletes the ones outside the retention policy:

  - every backup from the last 14 days is kept
  - from 15 to 90 days, backups from the 1st of a month or a Monday are kept
  - beyond 90 days, only backups from the 1st of a month are kept

Configuration comes from the environment (STORAGE_PROVIDER, BACKUP_DIR,
BACKUP_SUFFIX, DRY_RUN, SWEEP_TODAY, LOG_LEVEL, LOG_FORMAT and the provider
credentials); flags override it.

With METRICS_PORT set, /metrics, /health, /ready and /live are served while
the sweep runs and for METRICS_LINGER_SECONDS (default 30) after it, so a
scraper can collect the final numbers. The process then exits. /ready turns
200 once the sweep has finished.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts, out, clock)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report what would be deleted without deleting")
	cmd.Flags().StringVar(&opts.today, "today", "", "treat this date (YYYY-MM-DD) as today")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "backup directory for local storage (overrides BACKUP_DIR)")

	return cmd
}

func runSweep(cmd *cobra.Command, opts *rootOptions, out io.Writer, clock func() time.Time) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := applyFlags(cmd, cfg, opts); err != nil {
		return err
	}

	logger := newLogger(out, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		"storage_provider", cfg.StorageProvider,
		"location", cfg.Location(),
		"suffix", cfg.SuffixMarker,
		"dry_run", cfg.DryRun,
		"today_override", cfg.TodayOverride,
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create storage provider: %w", err)
	}

	var httpServer *server.Server
	if cfg.MetricsPort > 0 {
		serverConfig := server.DefaultConfig()
		serverConfig.Port = cfg.MetricsPort
		httpServer = server.New(serverConfig, logger)
		httpServer.RegisterHealthCheck("storage",
			health.StorageCheck(store, cfg.StorageProvider, cfg.Location(), 5*time.Second))

		if err := httpServer.Start(); err != nil {
			logger.Warn("Metrics server unavailable, sweeping without it", "error", err)
			httpServer = nil
		}
	}

	sweeper := sweep.NewSweeper(store, sweep.Options{
		Prefix:   cfg.BackupFilePrefix,
		Marker:   cfg.SuffixMarker,
		DryRun:   cfg.DryRun,
		Provider: cfg.StorageProvider,
	}, logger.With("component", "sweep"))

	report, sweepErr := sweeper.Run(ctx, cfg.Now(clock()))

	if httpServer != nil {
		httpServer.MarkSwept()
		if err := httpServer.Linger(ctx, cfg.MetricsLinger); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
	}

	if sweepErr != nil {
		return sweepErr
	}
	if report.Failed() {
		return fmt.Errorf("%w: %v", errParseFailures, report.Err())
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) error {
	flags := cmd.Flags()

	if flags.Changed("dry-run") {
		cfg.DryRun = opts.dryRun
	}
	if flags.Changed("today") {
		cfg.TodayOverride = opts.today
	}
	if flags.Changed("dir") {
		if cfg.StorageProvider != config.ProviderLocal {
			return fmt.Errorf("--dir only applies to local storage (STORAGE_PROVIDER=%s)", cfg.StorageProvider)
		}
		cfg.BackupDir = opts.dir
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func newLogger(out io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}
