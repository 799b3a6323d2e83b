package api

import (
	"net/http"
	"strings"
	"time"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/models/dtos"
)

// ListForms handles GET /api/v1/forms
func (h *Handlers) ListForms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		forms, err := h.deps.Services.Forms.List(r.Context())
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Forms fetched", forms)
	}
}

// CreateForm handles POST /api/v1/forms
func (h *Handlers) CreateForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.CreateFormRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		form, err := h.deps.Services.Forms.Create(r.Context(), req)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Form created", form, http.StatusCreated)
	}
}

// GetForm handles GET /api/v1/forms/{id}
func (h *Handlers) GetForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id, err := pathID(r, "id")
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}

		form, err := h.deps.Services.Forms.Get(r.Context(), id)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Form fetched", form)
	}
}

// UpdateForm handles PUT /api/v1/forms/{id}
func (h *Handlers) UpdateForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id, err := pathID(r, "id")
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		var req dtos.UpdateFormRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		form, err := h.deps.Services.Forms.Update(r.Context(), id, req)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Form updated", form)
	}
}

// DeleteForm handles DELETE /api/v1/forms/{id}
func (h *Handlers) DeleteForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id, err := pathID(r, "id")
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}

		if err := h.deps.Services.Forms.Delete(r.Context(), id); err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Form deleted", map[string]uint{"id": id})
	}
}

// RenderForm handles GET /api/v1/forms/{id}/render. The HTML is returned
// as is unless the caller asks for JSON.
func (h *Handlers) RenderForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id, err := pathID(r, "id")
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}

		html, err := h.deps.Services.Forms.RenderHTML(r.Context(), id)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}

		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			common.RespondSuccess(w, start, "Form rendered", dtos.RenderResponse{HTML: html})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	}
}

// ListFields handles GET /api/v1/fields
func (h *Handlers) ListFields() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		cat := h.deps.Services.Catalog
		common.RespondSuccess(w, start, "Fields fetched", map[string]any{
			"fields":      cat.Entries(),
			"by_category": cat.ByCategory(),
		})
	}
}
