package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"leadcapture/formbridge/internal/models/dtos"
)

// SubmissionStatsRepository runs the reporting aggregates over raw SQL
type SubmissionStatsRepository struct {
	db *sqlx.DB
}

func NewSubmissionStatsRepository(db *sqlx.DB) *SubmissionStatsRepository {
	return &SubmissionStatsRepository{db: db}
}

type statusCount struct {
	Status string `db:"status"`
	Total  int64  `db:"total"`
}

func (r *SubmissionStatsRepository) Stats(ctx context.Context) (*dtos.SubmissionStats, error) {
	const byStatusQuery = `
		SELECT status, COUNT(*) AS total
		FROM submissions
		GROUP BY status
	`
	const byFormQuery = `
		SELECT form_id,
		       COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) AS success,
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed,
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending
		FROM submissions
		GROUP BY form_id
		ORDER BY form_id
	`

	var counts []statusCount
	if err := r.db.SelectContext(ctx, &counts, byStatusQuery); err != nil {
		return nil, fmt.Errorf("failed to count submissions by status: %w", err)
	}

	stats := &dtos.SubmissionStats{
		ByStatus: make(map[string]int64, len(counts)),
		ByForm:   []dtos.FormStatsRow{},
	}
	for _, c := range counts {
		stats.ByStatus[c.Status] = c.Total
		stats.Total += c.Total
	}

	if err := r.db.SelectContext(ctx, &stats.ByForm, byFormQuery); err != nil {
		return nil, fmt.Errorf("failed to count submissions by form: %w", err)
	}

	return stats, nil
}
