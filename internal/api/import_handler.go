package api

import (
	"net/http"
	"time"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/models/dtos"
)

// ListImportSources handles GET /api/v1/import/sources
func (h *Handlers) ListImportSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sources, err := h.deps.Services.Imports.ListSources(r.Context())
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Import sources fetched", sources)
	}
}

// ImportForm handles POST /api/v1/import
func (h *Handlers) ImportForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.ImportFormRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		result, err := h.deps.Services.Imports.Import(r.Context(), req)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Form imported", result, http.StatusCreated)
	}
}

// ListImportMappings handles GET /api/v1/import/mappings
func (h *Handlers) ListImportMappings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		entries, err := h.deps.Services.Interceptor.Mappings(r.Context())
		if err != nil {
			respondErr(w, start, common.NewPersistenceError("", err), nil)
			return
		}
		common.RespondSuccess(w, start, "Import mappings fetched", entries)
	}
}

// CleanupImportMappings handles POST /api/v1/import/mappings/cleanup
func (h *Handlers) CleanupImportMappings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		removed, err := h.deps.Services.Interceptor.Cleanup(r.Context())
		if err != nil {
			respondErr(w, start, common.NewPersistenceError("", err), nil)
			return
		}
		common.RespondSuccess(w, start, "Import mappings cleaned up", map[string]int{"removed": removed})
	}
}

// DeactivatePlugin handles POST /api/v1/deactivate-plugin. Failure to
// deactivate is reported but never undoes an import.
func (h *Handlers) DeactivatePlugin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.DeactivatePluginRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		if err := h.deps.Services.Imports.DeactivatePlugin(r.Context(), req.Source); err != nil {
			logging.Warn("Plugin deactivation failed", "source", req.Source, "error", err)
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Plugin deactivated", map[string]string{"source": req.Source})
	}
}
