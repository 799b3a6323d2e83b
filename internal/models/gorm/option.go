package gorm

import "time"

// Option is a persisted key/value setting
type Option struct {
	Name      string    `gorm:"column:name;primaryKey;type:varchar(191)"`
	Value     string    `gorm:"column:value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Option) TableName() string {
	return "options"
}
