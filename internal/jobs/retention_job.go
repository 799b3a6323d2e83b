package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/metrics"
	"leadcapture/formbridge/internal/models/dtos"
)

const RetentionJobName = "submission_retention"

// RetentionSource supplies the retention window at run time
type RetentionSource interface {
	RetentionDays(ctx context.Context) (int, error)
}

// RetentionJob deletes submissions older than the configured retention window
type RetentionJob struct {
	submissions *repositories.SubmissionRepository
	settings    RetentionSource
	metrics     *metrics.MetricsRegistry
	interval    time.Duration
	now         func() time.Time

	// runMu serializes runs; mu guards the status fields
	runMu       sync.Mutex
	mu          sync.Mutex
	running     bool
	lastRunAt   *time.Time
	lastDeleted int64
	lastErr     string
}

func NewRetentionJob(
	submissions *repositories.SubmissionRepository,
	settings RetentionSource,
	metricsReg *metrics.MetricsRegistry,
	interval time.Duration,
) *RetentionJob {
	return &RetentionJob{
		submissions: submissions,
		settings:    settings,
		metrics:     metricsReg,
		interval:    interval,
		now:         time.Now,
	}
}

// Run performs one sweep and returns the number of deleted submissions
func (j *RetentionJob) Run(ctx context.Context) (int64, error) {
	j.runMu.Lock()
	defer j.runMu.Unlock()

	start := j.now()
	j.setRunning(true)

	deleted, err := j.sweep(ctx, start)

	j.metrics.JobDuration.WithLabelValues(RetentionJobName).Observe(time.Since(start).Seconds())
	j.finish(start, deleted, err)

	if err != nil {
		logging.Error("Retention sweep failed", "job", RetentionJobName, "error", err)
		return 0, err
	}
	logging.Info("Retention sweep completed",
		"job", RetentionJobName,
		"deleted", deleted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return deleted, nil
}

func (j *RetentionJob) sweep(ctx context.Context, now time.Time) (int64, error) {
	days, err := j.settings.RetentionDays(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read retention_days: %w", err)
	}
	if days <= 0 {
		return 0, fmt.Errorf("retention_days must be positive, got %d", days)
	}

	cutoff := now.AddDate(0, 0, -days)
	deleted, err := j.submissions.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		j.metrics.RetentionDeletedTotal.Add(float64(deleted))
	}
	return deleted, nil
}

// RunScheduled runs the sweep on every tick until ctx is cancelled
func (j *RetentionJob) RunScheduled(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// errors are logged and kept in Status
			j.Run(ctx)
		case <-ctx.Done():
			logging.Info("Shutting down scheduled job", "job", RetentionJobName)
			return
		}
	}
}

// Status reports the last run
func (j *RetentionJob) Status() dtos.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	return dtos.JobStatus{
		Name:        RetentionJobName,
		Running:     j.running,
		LastRunAt:   j.lastRunAt,
		LastDeleted: j.lastDeleted,
		LastError:   j.lastErr,
		Interval:    j.interval.String(),
	}
}

func (j *RetentionJob) setRunning(running bool) {
	j.mu.Lock()
	j.running = running
	j.mu.Unlock()
}

func (j *RetentionJob) finish(at time.Time, deleted int64, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.running = false
	j.lastRunAt = &at
	j.lastDeleted = deleted
	j.lastErr = ""
	if err != nil {
		j.lastErr = err.Error()
	}
}
