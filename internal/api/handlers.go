package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"leadcapture/formbridge/internal/common"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// decodeJSON reads the request body into dst. An empty body is accepted when
// allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case errors.Is(err, io.EOF):
		return common.NewValidationError("request body is required")
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return common.NewValidationError(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		}
		return common.NewValidationError(fmt.Sprintf("invalid JSON body: %v", err))
	}
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, common.NewValidationError(fmt.Sprintf("%s must be a positive integer, got %q", name, raw))
	}
	return uint(id), nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.NewValidationError(fmt.Sprintf("%s must be a non-negative integer, got %q", name, raw))
	}
	return n, nil
}

// respondErr writes err in the envelope, attaching data when there is any
func respondErr(w http.ResponseWriter, start time.Time, err error, data any) {
	appErr := common.AsAppError(err)
	if appErr == nil {
		common.RespondError(w, start, err, "An unexpected error occurred")
		return
	}
	if data != nil {
		common.RespondAppError(w, start, appErr, data)
		return
	}
	common.RespondAppError(w, start, appErr)
}
