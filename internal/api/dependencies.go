package api

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"leadcapture/formbridge/internal/adapters"
	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/jobs"
	"leadcapture/formbridge/internal/mapping"
	"leadcapture/formbridge/internal/metrics"
	"leadcapture/formbridge/internal/providers"
	"leadcapture/formbridge/internal/render"
	"leadcapture/formbridge/internal/services"
	"leadcapture/formbridge/internal/shortcode"
)

// SubmitPath is the prefix rendered forms post to
const SubmitPath = "/api/v1/submit"

type Repositories struct {
	Forms       *repositories.FormRepository
	Submissions *repositories.SubmissionRepository
	Stats       *repositories.SubmissionStatsRepository
	Options     *repositories.OptionRepository
	ImportMap   *repositories.ImportMapRepository
}

type Services struct {
	Cache       common.CacheInterface
	Settings    *common.SettingsService
	Catalog     *catalog.Catalog
	Forms       *services.FormService
	Submissions *services.SubmissionService
	Imports     *services.ImportService
	Generator   *services.GeneratorService
	Interceptor *shortcode.Interceptor
}

type Jobs struct {
	Retention *jobs.RetentionJob
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Jobs     *Jobs
	// DB and WordPress are pinged by the health check; WordPress may be nil
	DB        *sqlx.DB
	WordPress *sqlx.DB
	Metrics   *metrics.MetricsRegistry
}

// InitDependencies wires repositories, services and background jobs. Jobs
// run until ctx is cancelled.
func InitDependencies(
	ctx context.Context,
	cfg *config.Config,
	cat *catalog.Catalog,
	gdb *gorm.DB,
	sqlDB *sqlx.DB,
	wp *sqlx.DB,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) (*Dependencies, error) {
	repos := &Repositories{
		Forms:       repositories.NewFormRepository(gdb),
		Submissions: repositories.NewSubmissionRepository(gdb),
		Stats:       repositories.NewSubmissionStatsRepository(sqlDB),
		Options:     repositories.NewOptionRepository(gdb),
	}
	repos.ImportMap = repositories.NewImportMapRepository(repos.Options)

	// a nil *WordPressRepository must not end up inside the interface
	var store adapters.WordPressStore
	if wp != nil {
		wpRepo, err := repositories.NewWordPressRepository(wp, cfg.WordPress.TablePrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to init wordpress repository: %w", err)
		}
		store = wpRepo
	}
	registry := adapters.NewWordPressRegistry(store)

	renderer, err := render.NewRenderer(SubmitPath)
	if err != nil {
		return nil, err
	}

	settings := common.NewSettingsService(repos.Options, cache, cfg)
	engine := mapping.NewEngine(cat)

	formSvc := services.NewFormService(repos.Forms, engine, cat, renderer, cache)
	crm := providers.NewCRMProvider(settings, cfg.CRM.Timeout)
	crm.DumpBodies = cfg.AppEnv != "production"

	svc := &Services{
		Cache:    cache,
		Settings: settings,
		Catalog:  cat,
		Forms:    formSvc,
		Submissions: services.NewSubmissionService(
			repos.Forms,
			repos.Submissions,
			repos.Stats,
			settings,
			engine,
			crm,
			metricsReg,
		),
		Imports:   services.NewImportService(registry, formSvc, repos.ImportMap, metricsReg),
		Generator: services.NewGeneratorService(settings, providers.NewAIProvider(cfg.AI.Timeout), cat),
		Interceptor: shortcode.NewInterceptor(
			registry,
			repos.ImportMap,
			repos.Forms,
			formSvc,
			renderer,
			metricsReg,
		),
	}

	return &Dependencies{
		Repo:      repos,
		Services:  svc,
		Jobs:      &Jobs{Retention: jobs.InitializeJobs(ctx, repos.Submissions, settings, metricsReg)},
		DB:        sqlDB,
		WordPress: wp,
		Metrics:   metricsReg,
	}, nil
}
