package jobs

import (
	"context"
	"time"

	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/metrics"
)

// RetentionInterval is how often the retention sweep runs
const RetentionInterval = 24 * time.Hour

// InitializeJobs starts the background jobs and returns them for the
// manual trigger endpoints
func InitializeJobs(
	ctx context.Context,
	submissions *repositories.SubmissionRepository,
	settings RetentionSource,
	metricsReg *metrics.MetricsRegistry,
) *RetentionJob {
	retention := NewRetentionJob(submissions, settings, metricsReg, RetentionInterval)

	go retention.RunScheduled(ctx)

	return retention
}
