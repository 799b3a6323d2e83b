package common

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/db/repositories"
)

const (
	SettingCRMAPIURL        = "crm_api_url"
	SettingDefaultCRMFormID = "default_crm_form_id"
	SettingAIAPIKey         = "ai_api_key"
	SettingAIModel          = "ai_model"
	SettingAIAPIURL         = "ai_api_url"
	SettingRetentionDays    = "retention_days"
)

var AllowedSettingKeys = []string{
	SettingCRMAPIURL,
	SettingDefaultCRMFormID,
	SettingAIAPIKey,
	SettingAIModel,
	SettingAIAPIURL,
	SettingRetentionDays,
}

var crmFormIDPattern = regexp.MustCompile(
	`^FormConfigID-[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`,
)

const settingsCacheTTL = 10 * time.Minute

func IsValidSettingKey(k string) bool {
	for _, allowed := range AllowedSettingKeys {
		if allowed == k {
			return true
		}
	}
	return false
}

// ValidateCRMFormID accepts "FormConfigID-" followed by a UUID
func ValidateCRMFormID(id string) error {
	if !crmFormIDPattern.MatchString(id) {
		return NewValidationError(fmt.Sprintf("crm_form_id %q must look like FormConfigID-<uuid>", id))
	}
	return nil
}

// GenerateCRMFormID returns a fresh, valid crm_form_id
func GenerateCRMFormID() string {
	return "FormConfigID-" + uuid.NewString()
}

// AISettings is what the form generator needs per call
type AISettings struct {
	APIURL string
	APIKey string
	Model  string
}

// SettingsService reads and writes the runtime settings kept in the options
// table. Unset keys fall back to the process configuration.
type SettingsService struct {
	repo     *repositories.OptionRepository
	cache    CacheInterface
	defaults map[string]string
}

func NewSettingsService(repo *repositories.OptionRepository, cache CacheInterface, cfg *config.Config) *SettingsService {
	return &SettingsService{
		repo:  repo,
		cache: cache,
		defaults: map[string]string{
			SettingCRMAPIURL:        cfg.CRM.APIURL,
			SettingDefaultCRMFormID: cfg.CRM.DefaultFormID,
			SettingAIAPIKey:         cfg.AI.APIKey,
			SettingAIModel:          cfg.AI.Model,
			SettingAIAPIURL:         cfg.AI.APIURL,
			SettingRetentionDays:    strconv.Itoa(cfg.RetentionDays),
		},
	}
}

func settingsCacheKey() string {
	return string(constants.CachePrefixSettings) + "all"
}

// All returns every setting with defaults applied
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	val, err := s.cache.GetOrSet(settingsCacheKey(), settingsCacheTTL, func() (any, error) {
		stored, err := s.repo.GetMany(ctx, AllowedSettingKeys)
		if err != nil {
			return nil, err
		}
		m := make(map[string]string, len(s.defaults))
		for k, v := range s.defaults {
			m[k] = v
		}
		for k, v := range stored {
			m[k] = v
		}
		return m, nil
	})
	if err != nil {
		return nil, NewPersistenceError("failed to load settings", err)
	}

	// Redis hands back the JSON-decoded shape
	switch m := val.(type) {
	case map[string]string:
		return copyMap(m), nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = fmt.Sprint(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected settings cache type %T", val)
	}
}

// Get returns a single setting
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	if !IsValidSettingKey(key) {
		return "", NewValidationError(fmt.Sprintf("%q is not a valid setting", key))
	}
	all, err := s.All(ctx)
	if err != nil {
		return "", err
	}
	return all[key], nil
}

// Masked is All with the AI key hidden, for display
func (s *SettingsService) Masked(ctx context.Context) (map[string]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	if key := all[SettingAIAPIKey]; key != "" {
		all[SettingAIAPIKey] = maskSecret(key)
	}
	return all, nil
}

// Update validates and stores the given settings, then returns the new set
func (s *SettingsService) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	for _, k := range GetKeysStringMap(values) {
		v := strings.TrimSpace(values[k])
		if k == SettingAIAPIKey && strings.Contains(v, "****") {
			// the masked value echoed back from a GET
			delete(values, k)
			continue
		}
		if err := validateSetting(k, v); err != nil {
			return nil, err
		}
		values[k] = v
	}

	for _, k := range GetKeysStringMap(values) {
		if err := s.repo.Set(ctx, k, values[k]); err != nil {
			return nil, NewPersistenceError("failed to save settings", err)
		}
	}
	s.cache.Delete(settingsCacheKey())

	return s.Masked(ctx)
}

func validateSetting(key, value string) error {
	switch key {
	case SettingDefaultCRMFormID:
		if value == "" {
			return nil
		}
		return ValidateCRMFormID(value)
	case SettingCRMAPIURL, SettingAIAPIURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewValidationError(fmt.Sprintf("%s must be an http(s) URL", key))
		}
	case SettingRetentionDays:
		days, err := strconv.Atoi(value)
		if err != nil || days <= 0 {
			return NewValidationError("retention_days must be a positive integer")
		}
	case SettingAIAPIKey, SettingAIModel:
	default:
		return NewValidationError(fmt.Sprintf("%q is not a valid setting", key))
	}
	return nil
}

func (s *SettingsService) CRMAPIURL(ctx context.Context) (string, error) {
	return s.Get(ctx, SettingCRMAPIURL)
}

func (s *SettingsService) DefaultCRMFormID(ctx context.Context) (string, error) {
	return s.Get(ctx, SettingDefaultCRMFormID)
}

// RetentionDays falls back to the configured default on a bad stored value
func (s *SettingsService) RetentionDays(ctx context.Context) (int, error) {
	raw, err := s.Get(ctx, SettingRetentionDays)
	if err != nil {
		return 0, err
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return strconv.Atoi(s.defaults[SettingRetentionDays])
	}
	return days, nil
}

func (s *SettingsService) AI(ctx context.Context) (AISettings, error) {
	all, err := s.All(ctx)
	if err != nil {
		return AISettings{}, err
	}
	return AISettings{
		APIURL: all[SettingAIAPIURL],
		APIKey: all[SettingAIAPIKey],
		Model:  all[SettingAIModel],
	}, nil
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
