// Package sweep applies the retention policy to a backup location.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shapiromatron/hawc-backup-sweep/internal/metrics"
	"github.com/shapiromatron/hawc-backup-sweep/internal/retention"
	"github.com/shapiromatron/hawc-backup-sweep/internal/storage"
	"github.com/shapiromatron/hawc-backup-sweep/internal/utils"
)

// Options configure a Sweeper.
type Options struct {
	// Prefix narrows the listing; empty lists everything.
	Prefix string
	// Marker selects backup files; empty means utils.DefaultSuffixMarker.
	Marker string
	DryRun bool
	// Provider labels storage metrics.
	Provider string
	// Classifier defaults to retention.Classify.
	Classifier retention.ClassifierFunc
}

// Sweeper deletes backups the retention policy no longer keeps.
type Sweeper struct {
	storage storage.Storage
	opts    Options
	logger  *slog.Logger
}

// NewSweeper creates a new sweeper.
func NewSweeper(store storage.Storage, opts Options, logger *slog.Logger) *Sweeper {
	if opts.Marker == "" {
		opts.Marker = utils.DefaultSuffixMarker
	}
	if opts.Classifier == nil {
		opts.Classifier = retention.Classify
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		storage: store,
		opts:    opts,
		logger:  logger,
	}
}

// Run performs one sweep with now as the reference instant.
//
// Only a failure to list the location is returned as an error. Per-file
// problems are recorded in the report and the sweep moves on.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (*Report, error) {
	start := time.Now()
	s.logger.Info("Starting retention sweep",
		"today", now.Format(time.DateOnly),
		"dry_run", s.opts.DryRun,
	)

	metrics.Info.WithLabelValues("1.0.0", s.opts.Provider, strconv.FormatBool(s.opts.DryRun)).Set(1)

	objects, err := s.storage.List(ctx, s.opts.Prefix)
	if err != nil {
		metrics.RecordStorageOperation("list", s.opts.Provider, false)
		metrics.RecordSweep(false)
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	metrics.RecordStorageOperation("list", s.opts.Provider, true)

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	report := &Report{DryRun: s.opts.DryRun}
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			s.finish(report, start, err)
			return report, err
		}

		// Only entries directly in the location are swept, as with a directory.
		if strings.Contains(obj.Key, "/") || !utils.HasSuffixMarker(obj.Key, s.opts.Marker) {
			continue
		}

		stamp, err := utils.ParseBackupFilename(obj.Key)
		if err != nil {
			s.logger.Warn("Failed to parse backup timestamp", "filename", obj.Key, "error", err)
			report.Failures = append(report.Failures, Failure{Key: obj.Key, Err: err})
			metrics.ParseFailures.Inc()
			continue
		}

		a := s.sweepOne(ctx, now, obj, inLocation(stamp, now.Location()))
		report.record(a)
		metrics.Actions.WithLabelValues(string(a.Kind)).Inc()
	}

	s.finish(report, start, nil)
	return report, nil
}

func (s *Sweeper) sweepOne(ctx context.Context, now time.Time, obj storage.ObjectInfo, created time.Time) Action {
	a := Action{Key: obj.Key, Created: created, Size: obj.Size}

	if !created.Before(now) {
		s.logger.Info("Skipping backup stamped at or after now", "filename", obj.Key, "created", created)
		a.Kind = ActionSkip
		return a
	}

	a.Decision = s.opts.Classifier(now, created)
	if a.Decision.Keep {
		s.logger.Debug("Keeping backup",
			"filename", obj.Key,
			"tier", a.Decision.Tier,
			"reason", a.Decision.Reason,
		)
		a.Kind = ActionKeep
		return a
	}

	if s.opts.DryRun {
		s.logger.Info("Would delete expired backup",
			"filename", obj.Key,
			"age_days", a.Decision.AgeDays,
			"reason", a.Decision.Reason,
		)
		a.Kind = ActionWouldDelete
		return a
	}

	if err := s.storage.Delete(ctx, obj.Key); err != nil {
		a.Err = err
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info("Backup already removed", "filename", obj.Key)
			metrics.RecordStorageOperation("delete", s.opts.Provider, true)
			a.Kind = ActionVanished
			return a
		}
		s.logger.Warn("Failed to delete expired backup", "filename", obj.Key, "error", err)
		metrics.RecordStorageOperation("delete", s.opts.Provider, false)
		a.Kind = ActionDeleteFailed
		return a
	}

	s.logger.Info("Deleted expired backup",
		"filename", obj.Key,
		"age_days", a.Decision.AgeDays,
		"size", utils.FormatBytes(obj.Size),
		"reason", a.Decision.Reason,
	)
	metrics.RecordStorageOperation("delete", s.opts.Provider, true)
	metrics.ReclaimedBytes.Add(float64(obj.Size))
	a.Kind = ActionDelete
	return a
}

func (s *Sweeper) finish(report *Report, start time.Time, interrupted error) {
	retained := report.Retained()
	for tier, n := range retained {
		metrics.BackupsRetained.WithLabelValues(string(tier)).Set(float64(n))
	}

	s.logger.Info("Sweep summary",
		"kept", report.Kept,
		"deleted", report.Deleted,
		"failed", len(report.Failures),
		"skipped", report.Skipped,
		"vanished", report.Vanished,
		"delete_errors", report.DeleteErrors,
		"reclaimed", utils.FormatBytes(report.ReclaimedBytes),
		"dry_run", report.DryRun,
	)

	duration := time.Since(start)
	metrics.SweepDuration.Observe(duration.Seconds())

	if interrupted != nil {
		metrics.RecordSweep(false)
		s.logger.Warn("Sweep interrupted", "duration", duration, "error", interrupted)
		return
	}

	metrics.RecordSweep(!report.Failed())
	if !report.Failed() {
		metrics.LastSuccessTimestamp.SetToCurrentTime()
	}

	s.logger.Info("Sweep completed", "duration", duration)
}

// inLocation reads the wall-clock fields of a filename timestamp in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}
