package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	gormModels "leadcapture/formbridge/internal/models/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// SubmissionQuery filters and paginates the submission log
type SubmissionQuery struct {
	FormID  uint
	Status  gormModels.SubmissionStatus
	Page    int
	PerPage int
}

// Normalize clamps paging to sane bounds
func (q SubmissionQuery) Normalize() SubmissionQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	return q
}

// SubmissionRepository handles the submissions table
type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *gormModels.Submission) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// UpdateResult moves a pending submission to its final status
func (r *SubmissionRepository) UpdateResult(
	ctx context.Context,
	id uint,
	status gormModels.SubmissionStatus,
	crmResponse datatypes.JSON,
) error {
	result := r.db.WithContext(ctx).
		Model(&gormModels.Submission{}).
		Where("id = ? AND status = ?", id, gormModels.SubmissionStatusPending).
		Updates(map[string]any{
			"status":       status,
			"crm_response": crmResponse,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update submission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no pending submission with ID: %d", id)
	}
	return nil
}

// GetByID returns nil, nil when the submission does not exist
func (r *SubmissionRepository) GetByID(ctx context.Context, id uint) (*gormModels.Submission, error) {
	var sub gormModels.Submission

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	return &sub, nil
}

// List returns one page of submissions, newest first, and the total match count
func (r *SubmissionRepository) List(ctx context.Context, q SubmissionQuery) ([]gormModels.Submission, int64, error) {
	q = q.Normalize()

	query := r.db.WithContext(ctx).Model(&gormModels.Submission{})
	if q.FormID != 0 {
		query = query.Where("form_id = ?", q.FormID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	var subs []gormModels.Submission
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&subs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	return subs, total, nil
}

// DeleteOlderThan removes every submission created before cutoff
func (r *SubmissionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&gormModels.Submission{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old submissions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
