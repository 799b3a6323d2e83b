package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"leadcapture/formbridge/internal/adapters"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/metrics"
	"leadcapture/formbridge/internal/models/dtos"
	gormModels "leadcapture/formbridge/internal/models/gorm"
	"leadcapture/formbridge/internal/shortcode"
)

// ImportService copies forms out of third-party form plugins
type ImportService struct {
	registry  *adapters.Registry
	forms     *FormService
	importMap *repositories.ImportMapRepository
	metrics   *metrics.MetricsRegistry
}

func NewImportService(
	registry *adapters.Registry,
	forms *FormService,
	importMap *repositories.ImportMapRepository,
	metricsReg *metrics.MetricsRegistry,
) *ImportService {
	return &ImportService{
		registry:  registry,
		forms:     forms,
		importMap: importMap,
		metrics:   metricsReg,
	}
}

// ListSources reads every adapter in parallel. A failing source is reported
// in its own entry and does not fail the listing.
func (s *ImportService) ListSources(ctx context.Context) ([]dtos.ImportSource, error) {
	imported, err := s.importMap.Load(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("", err)
	}

	all := s.registry.All()
	out := make([]dtos.ImportSource, len(all))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range all {
		g.Go(func() error {
			out[i] = s.readSource(gctx, a, imported)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ImportService) readSource(ctx context.Context, a adapters.Adapter, imported map[string]uint) dtos.ImportSource {
	src := dtos.ImportSource{
		Key:   a.Key(),
		Label: a.Label(),
		Forms: []dtos.SourceFormSummary{},
	}
	if !a.IsAvailable(ctx) {
		return src
	}
	src.Available = true

	forms, err := a.GetForms(ctx)
	if err != nil {
		logging.Warn("Failed to read source forms", "source", a.Key(), "error", err)
		src.Error = err.Error()
		return src
	}

	for _, f := range forms {
		_, byID := imported[shortcode.MappingKey(a.Key(), f.ID)]
		_, byHash := imported[shortcode.HashMappingKey(a.Key(), f.Hash)]
		src.Forms = append(src.Forms, dtos.SourceFormSummary{
			ID:          f.ID,
			Title:       f.Title,
			Description: f.Description,
			FieldCount:  len(f.Fields),
			Shortcode:   a.Shortcode(f),
			Imported:    byID || (f.Hash != "" && byHash),
		})
	}
	return src
}

// Import creates a local form from a source form. With UseSameShortcode the
// source's shortcode is mapped to the new form.
func (s *ImportService) Import(ctx context.Context, req dtos.ImportFormRequest) (*dtos.ImportResult, error) {
	a, err := s.adapter(req.Source)
	if err != nil {
		return nil, err
	}
	formID := strings.TrimSpace(req.FormID)
	if formID == "" {
		return nil, common.NewValidationError("form_id is required")
	}
	if !a.IsAvailable(ctx) {
		return nil, common.NewSourceUnavailableError(fmt.Sprintf("%s is not active on this site", a.Label()), nil)
	}

	sf, err := a.GetForm(ctx, formID)
	if err != nil {
		return nil, sourceError(a, err)
	}
	if sf == nil {
		return nil, common.NewNotFoundError(fmt.Sprintf("%s form %s not found", a.Label(), formID))
	}

	title := strings.TrimSpace(sf.Title)
	if title == "" {
		title = fmt.Sprintf("%s form %s", a.Label(), sf.ID)
	}

	form, err := s.forms.Create(ctx, dtos.CreateFormRequest{
		Name:        title,
		Description: sf.Description,
		FormConfig: dtos.FormConfig{
			FormName:        title,
			FormDescription: sf.Description,
			Fields:          sf.Fields,
		}.WithDefaults(),
		CRMFormID: req.CRMFormID,
		Status:    string(gormModels.FormStatusActive),
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ImportsTotal.WithLabelValues(a.Key()).Inc()

	result := &dtos.ImportResult{Form: *form}
	if req.UseSameShortcode {
		entries := map[string]uint{shortcode.MappingKey(a.Key(), sf.ID): form.ID}
		if sf.Hash != "" {
			entries[shortcode.HashMappingKey(a.Key(), sf.Hash)] = form.ID
		}
		if err := s.importMap.Put(ctx, entries); err != nil {
			return nil, common.NewPersistenceError("form imported but the shortcode mapping could not be saved", err)
		}
		for k := range entries {
			result.MappingKeys = append(result.MappingKeys, k)
		}
		sort.Strings(result.MappingKeys)
	}

	logging.Info("Form imported",
		"source", a.Key(),
		"source_form_id", sf.ID,
		"form_id", form.ID,
		"mapping_keys", result.MappingKeys,
	)
	return result, nil
}

// DeactivatePlugin removes a source plugin from the host's active plugins
func (s *ImportService) DeactivatePlugin(ctx context.Context, source string) error {
	a, err := s.adapter(source)
	if err != nil {
		return err
	}
	if err := a.Deactivate(ctx); err != nil {
		return sourceError(a, err)
	}
	logging.Info("Source plugin deactivated", "source", a.Key())
	return nil
}

func (s *ImportService) adapter(source string) (adapters.Adapter, error) {
	a, ok := s.registry.Get(strings.TrimSpace(source))
	if !ok {
		keys := make([]string, 0)
		for _, known := range s.registry.All() {
			keys = append(keys, known.Key())
		}
		return nil, common.NewValidationError(fmt.Sprintf("unknown source %q, expected one of %s", source, strings.Join(keys, ", ")))
	}
	return a, nil
}

func sourceError(a adapters.Adapter, err error) error {
	if errors.Is(err, adapters.ErrUnavailable) {
		return common.NewSourceUnavailableError(fmt.Sprintf("%s is not active on this site", a.Label()), err)
	}
	return common.NewUpstreamError(fmt.Sprintf("failed to read %s data", a.Label()), err)
}
