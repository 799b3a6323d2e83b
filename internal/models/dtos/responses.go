package dtos

import (
	"encoding/json"
	"time"
)

// APIResponse is the envelope every JSON endpoint answers with
type APIResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	Code         string `json:"code,omitempty"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type FormResponse struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	FormConfig   FormConfig        `json:"form_config"`
	FieldMapping map[string]string `json:"field_mapping"`
	CRMFormID    string            `json:"crm_form_id"`
	Status       string            `json:"status"`
	Shortcode    string            `json:"shortcode"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type SubmissionResponse struct {
	ID             uint            `json:"id"`
	FormID         uint            `json:"form_id"`
	SubmissionData json.RawMessage `json:"submission_data"`
	CRMResponse    json.RawMessage `json:"crm_response,omitempty"`
	Status         string          `json:"status"`
	IPAddress      string          `json:"ip_address"`
	UserAgent      string          `json:"user_agent"`
	CreatedAt      time.Time       `json:"created_at"`
}

type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	PerPage     int                  `json:"per_page"`
}

type SubmissionStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByForm   []FormStatsRow   `json:"by_form"`
}

type FormStatsRow struct {
	FormID  uint  `json:"form_id" db:"form_id"`
	Total   int64 `json:"total" db:"total"`
	Success int64 `json:"success" db:"success"`
	Failed  int64 `json:"failed" db:"failed"`
	Pending int64 `json:"pending" db:"pending"`
}

// SubmitResult is returned by the public submit endpoint
type SubmitResult struct {
	SubmissionID uint            `json:"submission_id"`
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	CRMStatus    int             `json:"crm_status,omitempty"`
	CRMResponse  json.RawMessage `json:"crm_response,omitempty"`
}

type ConnectionTestResult struct {
	Reachable  bool            `json:"reachable"`
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body,omitempty"`
	DurationMs int64           `json:"duration_ms"`
}

type SourceFormSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FieldCount  int    `json:"field_count"`
	Shortcode   string `json:"shortcode"`
	Imported    bool   `json:"imported"`
}

type ImportSource struct {
	Key       string              `json:"key"`
	Label     string              `json:"label"`
	Available bool                `json:"available"`
	Forms     []SourceFormSummary `json:"forms"`
	Error     string              `json:"error,omitempty"`
}

type ImportResult struct {
	Form        FormResponse `json:"form"`
	MappingKeys []string     `json:"mapping_keys,omitempty"`
}

type ImportMappingEntry struct {
	Key          string `json:"key"`
	TargetFormID uint   `json:"target_form_id"`
	TargetExists bool   `json:"target_exists"`
}

type RenderResponse struct {
	HTML string `json:"html"`
}

type RenderContentResponse struct {
	Content string `json:"content"`
}

type JobStatus struct {
	Name        string     `json:"name"`
	Running     bool       `json:"running"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastDeleted int64      `json:"last_deleted"`
	LastError   string     `json:"last_error,omitempty"`
	Interval    string     `json:"interval"`
}
