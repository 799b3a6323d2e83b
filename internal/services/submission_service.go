package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/mapping"
	"leadcapture/formbridge/internal/metrics"
	"leadcapture/formbridge/internal/models/dtos"
	gormModels "leadcapture/formbridge/internal/models/gorm"
	"leadcapture/formbridge/internal/providers"
)

const (
	maxIPLength        = 100
	maxUserAgentLength = 1024
)

// SubmissionService runs the public submit flow and serves the submission log
type SubmissionService struct {
	forms       *repositories.FormRepository
	submissions *repositories.SubmissionRepository
	stats       *repositories.SubmissionStatsRepository
	settings    *common.SettingsService
	engine      *mapping.Engine
	crm         *providers.CRMProvider
	metrics     *metrics.MetricsRegistry
}

func NewSubmissionService(
	forms *repositories.FormRepository,
	submissions *repositories.SubmissionRepository,
	stats *repositories.SubmissionStatsRepository,
	settings *common.SettingsService,
	engine *mapping.Engine,
	crm *providers.CRMProvider,
	metricsReg *metrics.MetricsRegistry,
) *SubmissionService {
	return &SubmissionService{
		forms:       forms,
		submissions: submissions,
		stats:       stats,
		settings:    settings,
		engine:      engine,
		crm:         crm,
		metrics:     metricsReg,
	}
}

// Submit stores a submission, forwards it to the CRM and records the outcome.
// When the CRM call fails the returned result is still filled in and the
// error is an AppError describing the failure.
func (s *SubmissionService) Submit(
	ctx context.Context,
	formID uint,
	data *mapping.Values,
	ip string,
	userAgent string,
) (*dtos.SubmitResult, error) {
	if data == nil {
		return nil, common.NewValidationError("data is required")
	}

	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		return nil, common.NewPersistenceError("", err)
	}
	if form == nil || form.Status != gormModels.FormStatusActive {
		return nil, common.NewNotFoundError(fmt.Sprintf("form %d not found or inactive", formID))
	}

	crmFormID, err := s.resolveCRMFormID(ctx, form.CRMFormID)
	if err != nil {
		return nil, err
	}

	fieldMapping, err := DecodeFieldMapping(form)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, common.NewValidationError(fmt.Sprintf("data could not be encoded: %v", err))
	}

	sub := &gormModels.Submission{
		FormID:         form.ID,
		SubmissionData: datatypes.JSON(raw),
		Status:         gormModels.SubmissionStatusPending,
		IPAddress:      common.Truncate(ip, maxIPLength),
		UserAgent:      common.Truncate(userAgent, maxUserAgentLength),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, common.NewPersistenceError("", err)
	}

	report := s.engine.Map(data, fieldMapping)
	if len(report.Dropped) > 0 {
		s.metrics.MappingDroppedFieldsTotal.Add(float64(len(report.Dropped)))
		logging.Debug("Unmapped fields dropped", "form_id", form.ID, "submission_id", sub.ID, "fields", report.Dropped)
	}

	start := time.Now()
	crmResult, crmErr := s.crm.Submit(ctx, report.Values, crmFormID)

	outcome := "success"
	status := gormModels.SubmissionStatusSuccess
	if crmErr != nil {
		outcome = "failure"
		status = gormModels.SubmissionStatusFailed
	}
	s.metrics.CRMRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	s.metrics.SubmissionsTotal.WithLabelValues(string(status)).Inc()

	crmResponse := crmResponseJSON(crmResult, crmErr)
	if err := s.submissions.UpdateResult(ctx, sub.ID, status, crmResponse); err != nil {
		// the CRM already has the lead; the row stays pending
		logging.Error("Failed to record CRM outcome", "submission_id", sub.ID, "status", status, "error", err)
	}

	result := &dtos.SubmitResult{
		SubmissionID: sub.ID,
		Status:       string(status),
		CRMResponse:  json.RawMessage(crmResponse),
	}
	if crmResult != nil {
		result.CRMStatus = crmResult.StatusCode
	}

	if crmErr == nil {
		cfg, _ := DecodeFormConfig(form)
		result.Message = cfg.WithDefaults().SuccessMessage
		logging.Info("Submission forwarded", "form_id", form.ID, "submission_id", sub.ID, "crm", crmResult.String())
		return result, nil
	}

	logging.Warn("CRM rejected submission",
		"form_id", form.ID,
		"submission_id", sub.ID,
		"crm", crmResult.String(),
		"error", crmErr,
	)
	return result, submitError(crmErr)
}

func (s *SubmissionService) resolveCRMFormID(ctx context.Context, formValue string) (string, error) {
	if formValue != "" {
		return formValue, nil
	}
	def, err := s.settings.DefaultCRMFormID(ctx)
	if err != nil {
		return "", err
	}
	if def == "" {
		return "", common.NewConfigurationMissingError("")
	}
	return def, nil
}

// crmResponseJSON is what gets stored in submissions.crm_response
func crmResponseJSON(result *providers.CRMResult, err error) datatypes.JSON {
	if body := result.BodyJSON(); body != nil {
		return datatypes.JSON(body)
	}
	if err != nil {
		encoded, _ := json.Marshal(map[string]string{"error": err.Error()})
		return datatypes.JSON(encoded)
	}
	return nil
}

func submitError(err error) *common.AppError {
	pErr := providers.AsProviderError(err)
	if pErr != nil && pErr.Code == constants.ErrCodeConfigurationMissing {
		return common.NewConfigurationMissingError(pErr.Message)
	}
	return common.NewUpstreamError("", err)
}

// TestConnection posts an empty submission using crmFormID or the default
func (s *SubmissionService) TestConnection(ctx context.Context, crmFormID string) (*dtos.ConnectionTestResult, error) {
	crmFormID, err := s.resolveCRMFormID(ctx, crmFormID)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateCRMFormID(crmFormID); err != nil {
		return nil, err
	}

	result, err := s.crm.TestConnection(ctx, crmFormID)
	if result == nil {
		return nil, submitError(err)
	}

	out := &dtos.ConnectionTestResult{
		Reachable:  result.Success(),
		StatusCode: result.StatusCode,
		Body:       result.BodyJSON(),
		DurationMs: result.Duration.Milliseconds(),
	}
	if err != nil {
		return out, submitError(err)
	}
	return out, nil
}

// List returns one page of the submission log
func (s *SubmissionService) List(ctx context.Context, q repositories.SubmissionQuery) (*dtos.SubmissionListResponse, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("status must be pending, success or failed, got %q", q.Status))
	}
	q = q.Normalize()

	subs, total, err := s.submissions.List(ctx, q)
	if err != nil {
		return nil, common.NewPersistenceError("", err)
	}

	out := &dtos.SubmissionListResponse{
		Submissions: make([]dtos.SubmissionResponse, 0, len(subs)),
		Total:       total,
		Page:        q.Page,
		PerPage:     q.PerPage,
	}
	for i := range subs {
		out.Submissions = append(out.Submissions, toSubmissionResponse(&subs[i]))
	}
	return out, nil
}

func (s *SubmissionService) Get(ctx context.Context, id uint) (*dtos.SubmissionResponse, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewPersistenceError("", err)
	}
	if sub == nil {
		return nil, common.NewNotFoundError(fmt.Sprintf("submission %d not found", id))
	}
	resp := toSubmissionResponse(sub)
	return &resp, nil
}

func (s *SubmissionService) Stats(ctx context.Context) (*dtos.SubmissionStats, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("", err)
	}
	return stats, nil
}

func toSubmissionResponse(sub *gormModels.Submission) dtos.SubmissionResponse {
	return dtos.SubmissionResponse{
		ID:             sub.ID,
		FormID:         sub.FormID,
		SubmissionData: json.RawMessage(sub.SubmissionData),
		CRMResponse:    json.RawMessage(sub.CRMResponse),
		Status:         string(sub.Status),
		IPAddress:      sub.IPAddress,
		UserAgent:      sub.UserAgent,
		CreatedAt:      sub.CreatedAt,
	}
}
