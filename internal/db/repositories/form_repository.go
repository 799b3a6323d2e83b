package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	gormModels "leadcapture/formbridge/internal/models/gorm"
)

// FormRepository handles the forms table
type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

func (r *FormRepository) Create(ctx context.Context, form *gormModels.Form) error {
	if err := r.db.WithContext(ctx).Create(form).Error; err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing form
func (r *FormRepository) Update(ctx context.Context, form *gormModels.Form) error {
	result := r.db.WithContext(ctx).
		Model(&gormModels.Form{}).
		Where("id = ?", form.ID).
		Select("name", "description", "form_config", "field_mapping", "crm_form_id", "status", "updated_at").
		Updates(form)
	if result.Error != nil {
		return fmt.Errorf("failed to update form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("form not found with ID: %d", form.ID)
	}
	return nil
}

// GetByID returns nil, nil when the form does not exist
func (r *FormRepository) GetByID(ctx context.Context, id uint) (*gormModels.Form, error) {
	var form gormModels.Form

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch form: %w", err)
	}

	return &form, nil
}

// List returns every form, newest first
func (r *FormRepository) List(ctx context.Context) ([]gormModels.Form, error) {
	var forms []gormModels.Form

	err := r.db.WithContext(ctx).
		Order("id DESC").
		Find(&forms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forms: %w", err)
	}

	return forms, nil
}

// Delete reports whether a row was removed
func (r *FormRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&gormModels.Form{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete form: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ExistingIDs returns the subset of ids that still have a form row
func (r *FormRepository) ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var found []uint
	err := r.db.WithContext(ctx).
		Model(&gormModels.Form{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check form ids: %w", err)
	}

	for _, id := range found {
		out[id] = true
	}
	return out, nil
}
