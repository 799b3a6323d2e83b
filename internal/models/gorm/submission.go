package gorm

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionStatusPending SubmissionStatus = "pending"
	SubmissionStatusSuccess SubmissionStatus = "success"
	SubmissionStatusFailed  SubmissionStatus = "failed"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusSuccess, SubmissionStatusFailed:
		return true
	}
	return false
}

// Submission is a log row for one public submission. FormID is a weak
// reference: the form may be deleted later.
type Submission struct {
	ID             uint             `gorm:"column:id;primaryKey;autoIncrement"`
	FormID         uint             `gorm:"column:form_id;not null;index"`
	SubmissionData datatypes.JSON   `gorm:"column:submission_data;not null"`
	CRMResponse    datatypes.JSON   `gorm:"column:crm_response"`
	Status         SubmissionStatus `gorm:"column:status;type:varchar(20);default:pending;index"`
	IPAddress      string           `gorm:"column:ip_address;type:varchar(100)"`
	UserAgent      string           `gorm:"column:user_agent;type:text"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime;index"`
}

// TableName specifies the table name for GORM
func (Submission) TableName() string {
	return "submissions"
}
