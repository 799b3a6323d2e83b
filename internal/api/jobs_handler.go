package api

import (
	"net/http"
	"time"

	"leadcapture/formbridge/internal/common"
)

// RunRetention handles POST /api/v1/admin/jobs/retention
func (h *Handlers) RunRetention() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		deleted, err := h.deps.Jobs.Retention.Run(r.Context())
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Retention run completed", map[string]int64{"deleted": deleted})
	}
}

// RetentionStatus handles GET /api/v1/admin/jobs/status
func (h *Handlers) RetentionStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		common.RespondSuccess(w, start, "Job status fetched", h.deps.Jobs.Retention.Status())
	}
}
