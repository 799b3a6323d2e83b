package api

import (
	"net/http"
	"time"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/models/dtos"
)

// GetSettings handles GET /api/v1/settings. The AI key is masked.
func (h *Handlers) GetSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		values, err := h.deps.Services.Settings.Masked(r.Context())
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Settings fetched", values)
	}
}

// UpdateSettings handles POST /api/v1/settings
func (h *Handlers) UpdateSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.UpdateSettingsRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}
		if len(req.Settings) == 0 {
			respondErr(w, start, common.NewValidationError("settings must not be empty"), nil)
			return
		}

		values, err := h.deps.Services.Settings.Update(r.Context(), req.Settings)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Settings updated", values)
	}
}
