package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/db"
	"leadcapture/formbridge/internal/metrics"
	"leadcapture/formbridge/internal/models/dtos"
)

const testCRMFormID = "FormConfigID-0c2a7a4e-1b2c-4d3e-8f90-a1b2c3d4e5f6"

// crmStub answers every CRM call with a fixed status and body
type crmStub struct {
	mu     sync.Mutex
	status int
	body   string
	calls  int
}

func (s *crmStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestDeps wires the full dependency graph over an in-memory database
// without a WordPress site
func newTestDeps(t *testing.T, crmURL string) *Dependencies {
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

	cfg := &config.Config{
		CRM:           config.CRMConfig{APIURL: crmURL, Timeout: 5 * time.Second},
		AI:            config.AIConfig{Model: "test-model", Timeout: 5 * time.Second},
		RetentionDays: 90,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	deps, err := InitDependencies(
		ctx, cfg, cat, gdb,
		sqlx.NewDb(sqlDB, "sqlite3"),
		nil,
		common.NewCacheService(60, 120),
		metrics.NewMetricsRegistry(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("InitDependencies failed: %v", err)
	}
	return deps
}

// testRouter mounts the handlers without auth so URL params resolve
func testRouter(deps *Dependencies) http.Handler {
	h := NewHandlers(deps)
	r := chi.NewRouter()
	r.Get("/forms", h.ListForms())
	r.Post("/forms", h.CreateForm())
	r.Get("/forms/{id}", h.GetForm())
	r.Put("/forms/{id}", h.UpdateForm())
	r.Delete("/forms/{id}", h.DeleteForm())
	r.Get("/forms/{id}/render", h.RenderForm())
	r.Get("/fields", h.ListFields())
	r.Post("/submit/{id}", h.Submit())
	r.Get("/submissions", h.ListSubmissions())
	r.Get("/submissions/stats", h.SubmissionStats())
	r.Get("/submissions/{id}", h.GetSubmission())
	r.Post("/test-connection", h.TestConnection())
	r.Post("/render/shortcode", h.RenderShortcode())
	r.Post("/render/content", h.RenderContent())
	r.Get("/import/sources", h.ListImportSources())
	r.Post("/import", h.ImportForm())
	r.Get("/import/mappings", h.ListImportMappings())
	r.Post("/import/mappings/cleanup", h.CleanupImportMappings())
	r.Get("/settings", h.GetSettings())
	r.Post("/settings", h.UpdateSettings())
	r.Post("/jobs/retention", h.RunRetention())
	r.Get("/jobs/status", h.RetentionStatus())
	return r
}

type envelope struct {
	dtos.APIResponse
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("Failed to decode envelope %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func contactForm() dtos.CreateFormRequest {
	return dtos.CreateFormRequest{
		Name: "Contact",
		FormConfig: dtos.FormConfig{
			FormName: "Contact us",
			Fields: []dtos.FormField{
				{Name: "name", Label: "Name", Type: dtos.FieldTypeText, Required: true, CRMMapping: catalog.FirstName},
				{Name: "email", Label: "Email", Type: dtos.FieldTypeEmail, Required: true, CRMMapping: catalog.Email},
			},
		},
		CRMFormID: testCRMFormID,
	}
}

func createForm(t *testing.T, h http.Handler) dtos.FormResponse {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/forms", contactForm())
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating form, got %d: %s", rec.Code, rec.Body.String())
	}
	var form dtos.FormResponse
	if err := json.Unmarshal(env.Data, &form); err != nil {
		t.Fatalf("Failed to decode form: %v", err)
	}
	return form
}
