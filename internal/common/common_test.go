package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/db"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/models/dtos"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return gdb
}

func testConfig() *config.Config {
	return &config.Config{
		CRM:           config.CRMConfig{APIURL: "https://crm.test/api/v1/submissions"},
		AI:            config.AIConfig{APIURL: "https://ai.test/v1", Model: "gpt-4o-mini"},
		RetentionDays: 90,
	}
}

func newTestSettings(t *testing.T) *SettingsService {
	repo := repositories.NewOptionRepository(setupTestDB(t))
	return NewSettingsService(repo, NewCacheService(60, 60), testConfig())
}

func TestRespondAppError_WritesStatusAndCode(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, time.Now(), NewConfigurationMissingError(""), "ignored")

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rr.Code)
	}

	var resp dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("Expected success false")
	}
	if resp.Code != constants.ErrCodeConfigurationMissing {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeConfigurationMissing, resp.Code)
	}
	if resp.Error != constants.GetErrorMessage(constants.ErrCodeConfigurationMissing) {
		t.Errorf("Expected default message, got %q", resp.Error)
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, time.Now(), errors.New("pq: connection refused"), "Failed to load forms")

	var resp dtos.APIResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
	if resp.Error != "Failed to load forms" {
		t.Errorf("Expected generic message, got %q", resp.Error)
	}
}

func TestRespondSuccess_Envelope(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondSuccess(rr, time.Now(), "ok", map[string]int{"n": 1}, http.StatusCreated)

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", rr.Code)
	}
	var resp map[string]any
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp["success"] != true || resp["response_time"] == "" {
		t.Errorf("Unexpected envelope: %v", resp)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	base := errors.New("disk full")
	err := NewPersistenceError("failed to save", base)
	if !errors.Is(err, base) {
		t.Error("Expected AppError to unwrap to its cause")
	}
	if !IsCode(err, constants.ErrCodePersistenceFailure) {
		t.Error("Expected persistence code")
	}
	if AsAppError(base) != nil {
		t.Error("Plain errors are not AppErrors")
	}
}

func TestValidateCRMFormID(t *testing.T) {
	valid := []string{
		"FormConfigID-3f2c1a9e-8b7d-4c6e-9f01-23456789abcd",
		"FormConfigID-3F2C1A9E-8B7D-4C6E-9F01-23456789ABCD",
		GenerateCRMFormID(),
	}
	for _, id := range valid {
		if err := ValidateCRMFormID(id); err != nil {
			t.Errorf("Expected %s to be valid: %v", id, err)
		}
	}

	invalid := []string{
		"",
		"3f2c1a9e-8b7d-4c6e-9f01-23456789abcd",
		"FormConfigID-xyz",
		"FormConfigID-3f2c1a9e-8b7d-4c6e-9f01-23456789abcd-extra",
	}
	for _, id := range invalid {
		if err := ValidateCRMFormID(id); err == nil {
			t.Errorf("Expected %q to be rejected", id)
		}
	}
}

func TestSettingsService_DefaultsAndUpdate(t *testing.T) {
	s := newTestSettings(t)
	ctx := context.Background()

	url, err := s.CRMAPIURL(ctx)
	if err != nil {
		t.Fatalf("CRMAPIURL failed: %v", err)
	}
	if url != "https://crm.test/api/v1/submissions" {
		t.Errorf("Expected configured default, got %s", url)
	}

	formID := GenerateCRMFormID()
	updated, err := s.Update(ctx, map[string]string{
		SettingDefaultCRMFormID: formID,
		SettingRetentionDays:    "30",
		SettingAIAPIKey:         "sk-live-1234567890",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated[SettingAIAPIKey] == "sk-live-1234567890" {
		t.Error("Expected AI key to be masked in the response")
	}

	got, _ := s.DefaultCRMFormID(ctx)
	if got != formID {
		t.Errorf("Expected %s, got %s", formID, got)
	}
	days, _ := s.RetentionDays(ctx)
	if days != 30 {
		t.Errorf("Expected 30 days, got %d", days)
	}

	// echoing the masked key back keeps the stored one
	if _, err := s.Update(ctx, map[string]string{SettingAIAPIKey: updated[SettingAIAPIKey]}); err != nil {
		t.Fatalf("Update with masked key failed: %v", err)
	}
	ai, _ := s.AI(ctx)
	if ai.APIKey != "sk-live-1234567890" {
		t.Errorf("Expected stored key to survive, got %s", ai.APIKey)
	}
}

func TestSettingsService_RejectsInvalidValues(t *testing.T) {
	s := newTestSettings(t)
	ctx := context.Background()

	cases := []map[string]string{
		{SettingDefaultCRMFormID: "not-a-form-id"},
		{SettingRetentionDays: "0"},
		{SettingCRMAPIURL: "ftp://crm"},
		{"unknown_key": "x"},
	}
	for _, c := range cases {
		_, err := s.Update(ctx, c)
		if !IsCode(err, constants.ErrCodeValidationFailed) {
			t.Errorf("Expected validation error for %v, got %v", c, err)
		}
	}
}

func TestCacheService_DeletePrefix(t *testing.T) {
	c := NewCacheService(60, 60)
	c.Set("RENDER_1", "a", time.Minute)
	c.Set("RENDER_2", "b", time.Minute)
	c.Set("SETTINGS_all", "c", time.Minute)

	c.DeletePrefix("RENDER_")

	if _, ok := c.Get("RENDER_1"); ok {
		t.Error("Expected RENDER_1 to be evicted")
	}
	if _, ok := c.Get("SETTINGS_all"); !ok {
		t.Error("Expected other keys to survive")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if ip := ClientIP(req); ip != "10.0.0.1" {
		t.Errorf("Expected remote addr host, got %s", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("X-Real-IP", "203.0.113.10")
	if ip := ClientIP(req); ip != "10.0.0.1" {
		t.Errorf("Expected forwarding headers to be ignored, got %s", ip)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "h" {
		t.Errorf("Expected rune-safe cut, got %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("Expected untouched string, got %q", got)
	}
}
