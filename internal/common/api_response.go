package common

import (
	"encoding/json"
	"net/http"
	"time"

	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Success:      true,
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response. AppErrors carry their
// own code and status; anything else is reported as a 500 unless statusCode
// says otherwise.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	if appErr := AsAppError(err); appErr != nil {
		RespondAppError(w, initTime, appErr)
		return
	}

	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if err != nil && err.Error() != "" && code < http.StatusInternalServerError {
		msg = err.Error()
	}
	if err != nil && code >= http.StatusInternalServerError {
		logging.Error("request failed", "error", err, "message", message)
	}

	response := dtos.APIResponse{
		Success:      false,
		Error:        msg,
		ResponseTime: GetResponseTime(initTime),
	}

	writeJSON(w, code, response)
}

// RespondAppError writes an AppError with its status and code
func RespondAppError(w http.ResponseWriter, initTime time.Time, appErr *AppError, data ...any) {
	if appErr.Code == constants.ErrCodePersistenceFailure {
		logging.Error("persistence failure",
			"message", appErr.Message,
			"error", appErr.Err,
		)
	}

	response := dtos.APIResponse{
		Success:      false,
		Error:        appErr.Message,
		Code:         appErr.Code,
		ResponseTime: GetResponseTime(initTime),
	}
	if len(data) > 0 {
		response.Data = data[0]
	}

	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, response)
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
