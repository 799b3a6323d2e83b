package gorm

import (
	"time"

	"gorm.io/datatypes"
)

type FormStatus string

const (
	FormStatusActive   FormStatus = "active"
	FormStatusInactive FormStatus = "inactive"
)

func (s FormStatus) Valid() bool {
	return s == FormStatusActive || s == FormStatusInactive
}

type Form struct {
	ID           uint           `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string         `gorm:"column:name;type:varchar(255);not null"`
	Description  string         `gorm:"column:description;type:text"`
	FormConfig   datatypes.JSON `gorm:"column:form_config;not null"`
	FieldMapping datatypes.JSON `gorm:"column:field_mapping"`
	CRMFormID    string         `gorm:"column:crm_form_id;type:varchar(100)"`
	Status       FormStatus     `gorm:"column:status;type:varchar(20);default:active;index"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Form) TableName() string {
	return "forms"
}
