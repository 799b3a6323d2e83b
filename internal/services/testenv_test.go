package services

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"leadcapture/formbridge/internal/adapters"
	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/db"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/mapping"
	"leadcapture/formbridge/internal/metrics"
	"leadcapture/formbridge/internal/providers"
	"leadcapture/formbridge/internal/render"
)

const testCRMFormID = "FormConfigID-0c2a7a4e-1b2c-4d3e-8f90-a1b2c3d4e5f6"

type testEnv struct {
	gdb         *gorm.DB
	catalog     *catalog.Catalog
	settings    *common.SettingsService
	cache       *common.CacheService
	metrics     *metrics.MetricsRegistry
	forms       *FormService
	submissions *SubmissionService
	importMap   *repositories.ImportMapRepository
	submRepo    *repositories.SubmissionRepository
}

// newTestEnv wires the services over an in-memory database. crmURL and aiURL
// are usually httptest servers.
func newTestEnv(t *testing.T, crmURL, aiURL string) *testEnv {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	renderer, err := render.NewRenderer("/api/v1/submit")
	if err != nil {
		t.Fatalf("Failed to build renderer: %v", err)
	}

	cfg := &config.Config{
		CRM:           config.CRMConfig{APIURL: crmURL, Timeout: 5 * time.Second},
		AI:            config.AIConfig{APIURL: aiURL, Model: "test-model", Timeout: 5 * time.Second},
		RetentionDays: 90,
	}
	cache := common.NewCacheService(60, 120)
	options := repositories.NewOptionRepository(gdb)
	settings := common.NewSettingsService(options, cache, cfg)
	metricsReg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	engine := mapping.NewEngine(cat)

	formRepo := repositories.NewFormRepository(gdb)
	submRepo := repositories.NewSubmissionRepository(gdb)
	stats := repositories.NewSubmissionStatsRepository(sqlx.NewDb(sqlDB, "sqlite3"))

	return &testEnv{
		gdb:       gdb,
		catalog:   cat,
		settings:  settings,
		cache:     cache,
		metrics:   metricsReg,
		forms:     NewFormService(formRepo, engine, cat, renderer, cache),
		importMap: repositories.NewImportMapRepository(options),
		submRepo:  submRepo,
		submissions: NewSubmissionService(
			formRepo, submRepo, stats, settings, engine,
			providers.NewCRMProvider(settings, cfg.CRM.Timeout),
			metricsReg,
		),
	}
}

func (e *testEnv) importService(adapterList ...adapters.Adapter) *ImportService {
	return NewImportService(adapters.NewRegistry(adapterList...), e.forms, e.importMap, e.metrics)
}

func (e *testEnv) generator() *GeneratorService {
	return NewGeneratorService(e.settings, providers.NewAIProvider(5*time.Second), e.catalog)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s error, got nil", code)
	}
	if !common.IsCode(err, code) {
		t.Fatalf("Expected %s error, got %v", code, err)
	}
}
