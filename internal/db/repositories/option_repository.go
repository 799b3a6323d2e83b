package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gormModels "leadcapture/formbridge/internal/models/gorm"
)

// OptionRepository is a key/value store on the options table
type OptionRepository struct {
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) *OptionRepository {
	return &OptionRepository{db: db}
}

// Get reports false when the option was never written
func (r *OptionRepository) Get(ctx context.Context, name string) (string, bool, error) {
	var opt gormModels.Option

	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&opt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to fetch option %s: %w", name, err)
	}

	return opt.Value, true, nil
}

// GetMany returns the stored values among names
func (r *OptionRepository) GetMany(ctx context.Context, names []string) (map[string]string, error) {
	var opts []gormModels.Option

	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Find(&opts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch options: %w", err)
	}

	out := make(map[string]string, len(opts))
	for _, o := range opts {
		out[o.Name] = o.Value
	}
	return out, nil
}

// Set inserts or replaces an option
func (r *OptionRepository) Set(ctx context.Context, name, value string) error {
	opt := gormModels.Option{Name: name, Value: value}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&opt).Error
	if err != nil {
		return fmt.Errorf("failed to set option %s: %w", name, err)
	}
	return nil
}

func (r *OptionRepository) Delete(ctx context.Context, name string) error {
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Delete(&gormModels.Option{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete option %s: %w", name, err)
	}
	return nil
}
