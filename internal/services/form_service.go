package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"

	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/mapping"
	"leadcapture/formbridge/internal/models/dtos"
	gormModels "leadcapture/formbridge/internal/models/gorm"
	"leadcapture/formbridge/internal/render"
)

const renderCacheTTL = 10 * time.Minute

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FormService owns form definitions: validation, the derived field mapping
// and the rendered HTML cache.
type FormService struct {
	repo     *repositories.FormRepository
	engine   *mapping.Engine
	catalog  *catalog.Catalog
	renderer *render.Renderer
	cache    common.CacheInterface
}

func NewFormService(
	repo *repositories.FormRepository,
	engine *mapping.Engine,
	cat *catalog.Catalog,
	renderer *render.Renderer,
	cache common.CacheInterface,
) *FormService {
	return &FormService{
		repo:     repo,
		engine:   engine,
		catalog:  cat,
		renderer: renderer,
		cache:    cache,
	}
}

// ValidateFormConfig checks the field list a form is saved with
func (s *FormService) ValidateFormConfig(cfg dtos.FormConfig) error {
	seen := make(map[string]bool, len(cfg.Fields))
	for i, f := range cfg.Fields {
		switch {
		case f.Name == "":
			return common.NewValidationError(fmt.Sprintf("field %d has no name", i+1))
		case !fieldNamePattern.MatchString(f.Name):
			return common.NewValidationError(fmt.Sprintf("field name %q may only contain letters, digits, '-' and '_'", f.Name))
		case strings.Contains(f.Name, mapping.SplitSeparator):
			return common.NewValidationError(fmt.Sprintf("field name %q must not contain %q", f.Name, mapping.SplitSeparator))
		case seen[f.Name]:
			return common.NewValidationError(fmt.Sprintf("field name %q is used twice", f.Name))
		case !f.Type.Valid():
			return common.NewValidationError(fmt.Sprintf("field %q has unknown type %q", f.Name, f.Type))
		case (f.Type == dtos.FieldTypeSelect || f.Type == dtos.FieldTypeRadio) && len(f.Options) == 0:
			return common.NewValidationError(fmt.Sprintf("field %q needs at least one option", f.Name))
		}
		seen[f.Name] = true

		if target := strings.TrimSpace(f.CRMMapping); target != "" && !knownCRMTarget(s.catalog, target) {
			return common.NewValidationError(fmt.Sprintf("field %q maps to unknown CRM field %q", f.Name, target))
		}
	}
	return nil
}

// knownCRMTarget accepts a catalog symbolic name, a raw catalog id or full_name
func knownCRMTarget(c *catalog.Catalog, target string) bool {
	if target == catalog.FullName || c.Has(target) {
		return true
	}
	_, ok := c.Name(target)
	return ok
}

// toModel validates req and fills form from it, recomputing field_mapping
func (s *FormService) toModel(req dtos.CreateFormRequest, form *gormModels.Form) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.FormConfig.FormName)
	}
	if name == "" {
		return common.NewValidationError("name is required")
	}

	status := gormModels.FormStatus(req.Status)
	if status == "" {
		status = gormModels.FormStatusActive
	}
	if !status.Valid() {
		return common.NewValidationError(fmt.Sprintf("status must be active or inactive, got %q", req.Status))
	}

	crmFormID := strings.TrimSpace(req.CRMFormID)
	if crmFormID != "" {
		if err := common.ValidateCRMFormID(crmFormID); err != nil {
			return err
		}
	}

	if err := s.ValidateFormConfig(req.FormConfig); err != nil {
		return err
	}

	cfg := req.FormConfig
	if cfg.Fields == nil {
		cfg.Fields = []dtos.FormField{}
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return common.NewValidationError(fmt.Sprintf("form_config could not be encoded: %v", err))
	}
	mappingJSON, err := json.Marshal(s.engine.DeriveFieldMapping(cfg.Fields))
	if err != nil {
		return common.NewValidationError(fmt.Sprintf("field mapping could not be encoded: %v", err))
	}

	form.Name = name
	form.Description = req.Description
	form.FormConfig = datatypes.JSON(configJSON)
	form.FieldMapping = datatypes.JSON(mappingJSON)
	form.CRMFormID = crmFormID
	form.Status = status
	return nil
}

// Create stores a new form
func (s *FormService) Create(ctx context.Context, req dtos.CreateFormRequest) (*dtos.FormResponse, error) {
	var form gormModels.Form
	if err := s.toModel(req, &form); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &form); err != nil {
		return nil, common.NewPersistenceError("", err)
	}

	logging.Info("Form created", "form_id", form.ID, "fields", len(req.FormConfig.Fields))
	return ToFormResponse(&form)
}

// Update replaces a form's definition
func (s *FormService) Update(ctx context.Context, id uint, req dtos.UpdateFormRequest) (*dtos.FormResponse, error) {
	form, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.toModel(req, form); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, form); err != nil {
		return nil, common.NewPersistenceError("", err)
	}
	s.invalidate(id)

	logging.Info("Form updated", "form_id", id)
	return ToFormResponse(form)
}

func (s *FormService) Get(ctx context.Context, id uint) (*dtos.FormResponse, error) {
	form, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToFormResponse(form)
}

func (s *FormService) List(ctx context.Context) ([]dtos.FormResponse, error) {
	forms, err := s.repo.List(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("", err)
	}

	out := make([]dtos.FormResponse, 0, len(forms))
	for i := range forms {
		resp, err := ToFormResponse(&forms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// Delete removes a form. Shortcode mappings pointing at it are left for the
// next cleanup pass.
func (s *FormService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return common.NewPersistenceError("", err)
	}
	if !deleted {
		return common.NewNotFoundError(fmt.Sprintf("form %d not found", id))
	}
	s.invalidate(id)

	logging.Info("Form deleted", "form_id", id)
	return nil
}

// RenderHTML renders an active form, NotFound otherwise
func (s *FormService) RenderHTML(ctx context.Context, id uint) (string, error) {
	html, ok, err := s.RenderByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.NewNotFoundError(fmt.Sprintf("form %d not found or inactive", id))
	}
	return html, nil
}

// RenderByID renders an active form through the render cache. ok is false
// for missing and inactive forms.
func (s *FormService) RenderByID(ctx context.Context, id uint) (string, bool, error) {
	key := renderCacheKey(id)
	if cached, found := s.cache.Get(key); found {
		if html, ok := cached.(string); ok {
			return html, true, nil
		}
	}

	form, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", false, common.NewPersistenceError("", err)
	}
	if form == nil || form.Status != gormModels.FormStatusActive {
		return "", false, nil
	}

	cfg, err := DecodeFormConfig(form)
	if err != nil {
		return "", false, err
	}
	html, err := s.renderer.RenderForm(form.ID, cfg)
	if err != nil {
		return "", false, err
	}

	s.cache.Set(key, html, renderCacheTTL)
	return html, true, nil
}

func (s *FormService) mustGet(ctx context.Context, id uint) (*gormModels.Form, error) {
	form, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewPersistenceError("", err)
	}
	if form == nil {
		return nil, common.NewNotFoundError(fmt.Sprintf("form %d not found", id))
	}
	return form, nil
}

func (s *FormService) invalidate(id uint) {
	s.cache.Delete(renderCacheKey(id))
}

func renderCacheKey(id uint) string {
	return fmt.Sprintf("%s%d", constants.CachePrefixRender, id)
}

// DecodeFormConfig reads a stored form_config
func DecodeFormConfig(form *gormModels.Form) (dtos.FormConfig, error) {
	var cfg dtos.FormConfig
	if len(form.FormConfig) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(form.FormConfig, &cfg); err != nil {
		return cfg, common.NewPersistenceError(fmt.Sprintf("form %d has an unreadable form_config", form.ID), err)
	}
	return cfg, nil
}

// DecodeFieldMapping reads a stored field_mapping
func DecodeFieldMapping(form *gormModels.Form) (map[string]string, error) {
	out := make(map[string]string)
	if len(form.FieldMapping) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(form.FieldMapping, &out); err != nil {
		return nil, common.NewPersistenceError(fmt.Sprintf("form %d has an unreadable field_mapping", form.ID), err)
	}
	return out, nil
}

// ToFormResponse converts a stored form to its API shape
func ToFormResponse(form *gormModels.Form) (*dtos.FormResponse, error) {
	cfg, err := DecodeFormConfig(form)
	if err != nil {
		return nil, err
	}
	fieldMapping, err := DecodeFieldMapping(form)
	if err != nil {
		return nil, err
	}

	return &dtos.FormResponse{
		ID:           form.ID,
		Name:         form.Name,
		Description:  form.Description,
		FormConfig:   cfg,
		FieldMapping: fieldMapping,
		CRMFormID:    form.CRMFormID,
		Status:       string(form.Status),
		Shortcode:    fmt.Sprintf(`[%s id="%d"]`, constants.ShortcodeTag, form.ID),
		CreatedAt:    form.CreatedAt,
		UpdatedAt:    form.UpdatedAt,
	}, nil
}
