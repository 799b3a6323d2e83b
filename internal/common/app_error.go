package common

import (
	"errors"
	"fmt"
	"net/http"

	"leadcapture/formbridge/internal/constants"
)

// AppError is the error every service returns to the HTTP layer. Status is
// the response code the handler answers with.
type AppError struct {
	Code    string
	Message string
	Details string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code string, status int, message string, err error) *AppError {
	if message == "" {
		message = constants.GetErrorMessage(code)
	}
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

func NewValidationError(message string) *AppError {
	return newAppError(constants.ErrCodeValidationFailed, http.StatusBadRequest, message, nil)
}

func NewNotFoundError(message string) *AppError {
	return newAppError(constants.ErrCodeNotFound, http.StatusNotFound, message, nil)
}

func NewConfigurationMissingError(message string) *AppError {
	return newAppError(constants.ErrCodeConfigurationMissing, http.StatusUnprocessableEntity, message, nil)
}

func NewUpstreamError(message string, err error) *AppError {
	return newAppError(constants.ErrCodeUpstreamFailure, http.StatusBadGateway, message, err)
}

// NewSourceUnavailableError reports a form plugin that is not active or a
// WordPress database that is not configured.
func NewSourceUnavailableError(message string, err error) *AppError {
	return newAppError(constants.ErrCodeSourceUnavailable, http.StatusConflict, message, err)
}

// NewPersistenceError wraps a storage failure. The underlying error is kept
// for logging but never sent to the client.
func NewPersistenceError(message string, err error) *AppError {
	return newAppError(constants.ErrCodePersistenceFailure, http.StatusInternalServerError, message, err)
}

// AsAppError unwraps err to an *AppError, or nil if it is not one
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsCode reports whether err is an AppError with the given code
func IsCode(err error, code string) bool {
	appErr := AsAppError(err)
	return appErr != nil && appErr.Code == code
}
