package sweep

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/shapiromatron/hawc-backup-sweep/internal/retention"
)

// ActionKind is what the sweep did with one backup file.
type ActionKind string

const (
	// ActionKeep means the retention policy kept the file.
	ActionKeep ActionKind = "keep"
	// ActionDelete means the file was removed.
	ActionDelete ActionKind = "delete"
	// ActionWouldDelete means the file would have been removed outside dry-run.
	ActionWouldDelete ActionKind = "would_delete"
	// ActionVanished means the file disappeared between listing and deletion.
	ActionVanished ActionKind = "vanished"
	// ActionDeleteFailed means the storage layer refused the deletion.
	ActionDeleteFailed ActionKind = "delete_failed"
	// ActionSkip means the file is stamped at or after now and may still be written.
	ActionSkip ActionKind = "skip"
)

// Action records the outcome for a single backup file.
type Action struct {
	Key      string
	Kind     ActionKind
	Created  time.Time
	Size     int64
	Decision retention.Decision
	Err      error
}

// Failure is a backup file whose name could not be parsed.
type Failure struct {
	Key string
	Err error
}

// Report summarizes one sweep.
type Report struct {
	Actions  []Action
	Failures []Failure

	Kept         int
	Deleted      int // in dry-run: files that would have been deleted
	Skipped      int
	Vanished     int
	DeleteErrors int

	ReclaimedBytes int64
	DryRun         bool
}

// Failed reports whether any file could not be parsed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Err combines the per-file parse failures, or returns nil.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, fmt.Errorf("%s: %w", f.Key, f.Err))
	}
	return err
}

// Retained returns the number of kept backups in each tier.
func (r *Report) Retained() map[retention.Tier]int {
	counts := map[retention.Tier]int{
		retention.TierDaily:   0,
		retention.TierWeekly:  0,
		retention.TierMonthly: 0,
	}
	for _, a := range r.Actions {
		if a.Kind == ActionKeep {
			counts[a.Decision.Tier]++
		}
	}
	return counts
}

func (r *Report) record(a Action) {
	r.Actions = append(r.Actions, a)

	switch a.Kind {
	case ActionKeep:
		r.Kept++
	case ActionDelete, ActionWouldDelete:
		r.Deleted++
		r.ReclaimedBytes += a.Size
	case ActionSkip:
		r.Skipped++
	case ActionVanished:
		r.Vanished++
	case ActionDeleteFailed:
		r.DeleteErrors++
	}
}
