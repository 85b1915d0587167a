// Package metrics provides Prometheus metrics for the backup sweeper.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweepRuns tracks the total number of sweeps by outcome.
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hawc_backup_sweep_runs_total",
		Help: "Total number of retention sweeps",
	}, []string{"status"})

	// SweepDuration tracks how long a sweep takes.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hawc_backup_sweep_duration_seconds",
		Help:    "Duration of retention sweeps in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})

	// Actions tracks the per-file outcome of each sweep.
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hawc_backup_sweep_actions_total",
		Help: "Total number of backup files by sweep action",
	}, []string{"action"})

	// ParseFailures tracks backup names whose timestamp could not be read.
	ParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hawc_backup_sweep_parse_failures_total",
		Help: "Total number of backup files with an unparseable timestamp",
	})

	// ReclaimedBytes tracks the bytes freed by deletions.
	ReclaimedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hawc_backup_sweep_reclaimed_bytes_total",
		Help: "Total bytes freed by deleting expired backups",
	})

	// BackupsRetained tracks how many backups the last sweep kept.
	BackupsRetained = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hawc_backup_sweep_retained",
		Help: "Number of backups kept by the last sweep, by tier",
	}, []string{"tier"})

	// StorageOperations tracks storage operations.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hawc_backup_sweep_storage_operations_total",
		Help: "Total number of storage operations",
	}, []string{"operation", "provider", "status"})

	// LastSuccessTimestamp tracks when the last clean sweep finished.
	LastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hawc_backup_sweep_last_success_timestamp",
		Help: "Unix timestamp of the last sweep without parse failures",
	})

	// Info provides static information about the service.
	Info = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hawc_backup_sweep_info",
		Help: "Information about the backup sweeper",
	}, []string{"version", "storage_provider", "dry_run"})
)

// RecordSweep records a finished sweep with its status.
func RecordSweep(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SweepRuns.WithLabelValues(status).Inc()
}

// RecordStorageOperation records a storage operation.
func RecordStorageOperation(operation, provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	StorageOperations.WithLabelValues(operation, provider, status).Inc()
}
