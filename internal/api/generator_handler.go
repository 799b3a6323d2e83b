package api

import (
	"net/http"
	"time"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/models/dtos"
)

// GenerateForm handles POST /api/v1/generate
func (h *Handlers) GenerateForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.GenerateFormRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		cfg, err := h.deps.Services.Generator.Generate(r.Context(), req.Prompt)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Form generated", cfg)
	}
}

// RefineForm handles POST /api/v1/refine
func (h *Handlers) RefineForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.RefineFormRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		cfg, err := h.deps.Services.Generator.Refine(r.Context(), req.FormConfig, req.Instruction)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Form refined", cfg)
	}
}
