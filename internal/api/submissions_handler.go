package api

import (
	"net/http"
	"time"

	"leadcapture/formbridge/internal/auth"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/mapping"
	"leadcapture/formbridge/internal/models/dtos"
	gormModels "leadcapture/formbridge/internal/models/gorm"
)

// submitRequest keeps the submitted field order
type submitRequest struct {
	Data *mapping.Values `json:"data"`
}

// Submit handles POST /api/v1/submit/{id}. A CRM failure still answers with
// the stored submission id and the upstream body.
func (h *Handlers) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id, err := pathID(r, "id")
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		var req submitRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		result, err := h.deps.Services.Submissions.Submit(r.Context(), id, req.Data, common.ClientIP(r), r.UserAgent())
		if err != nil {
			logging.WithRequest(auth.GetRequestID(r.Context()), SubmitPath, id).
				Warnw("Submission not forwarded", "error", err)
			if result != nil {
				respondErr(w, start, err, result)
				return
			}
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, result.Message, result)
	}
}

// ListSubmissions handles GET /api/v1/submissions
func (h *Handlers) ListSubmissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var q repositories.SubmissionQuery
		formID, err := queryInt(r, "form_id")
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		if q.Page, err = queryInt(r, "page"); err != nil {
			respondErr(w, start, err, nil)
			return
		}
		if q.PerPage, err = queryInt(r, "per_page"); err != nil {
			respondErr(w, start, err, nil)
			return
		}
		q.FormID = uint(formID)
		q.Status = gormModels.SubmissionStatus(r.URL.Query().Get("status"))

		page, err := h.deps.Services.Submissions.List(r.Context(), q)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Submissions fetched", page)
	}
}

// GetSubmission handles GET /api/v1/submissions/{id}
func (h *Handlers) GetSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id, err := pathID(r, "id")
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}

		sub, err := h.deps.Services.Submissions.Get(r.Context(), id)
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Submission fetched", sub)
	}
}

// SubmissionStats handles GET /api/v1/submissions/stats
func (h *Handlers) SubmissionStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		stats, err := h.deps.Services.Submissions.Stats(r.Context())
		if err != nil {
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "Submission stats fetched", stats)
	}
}

// TestConnection handles POST /api/v1/test-connection
func (h *Handlers) TestConnection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.TestConnectionRequest
		if err := decodeJSON(w, r, &req, true); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		result, err := h.deps.Services.Submissions.TestConnection(r.Context(), req.CRMFormID)
		if err != nil {
			if result != nil {
				respondErr(w, start, err, result)
				return
			}
			respondErr(w, start, err, nil)
			return
		}
		common.RespondSuccess(w, start, "CRM connection succeeded", result)
	}
}
