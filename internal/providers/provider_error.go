package providers

import (
	"errors"
	"fmt"
	"net/http"

	"leadcapture/formbridge/internal/constants"
)

// ProviderError represents a failure talking to an outbound service
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AsProviderError unwraps err to a *ProviderError, or nil
func AsProviderError(err error) *ProviderError {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr
	}
	return nil
}

// buildHTTPError maps a non-2xx response to a ProviderError
func buildHTTPError(statusCode int, endpoint string, body string) *ProviderError {
	pErr := &ProviderError{StatusCode: statusCode, Details: body}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		pErr.Code = constants.ErrCodeAuthenticationFailed
		pErr.Message = fmt.Sprintf("Authentication failed for %s", endpoint)
	case http.StatusTooManyRequests:
		pErr.Code = constants.ErrCodeRateLimited
		pErr.Message = constants.GetErrorMessage(constants.ErrCodeRateLimited)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		pErr.Code = constants.ErrCodeBadRequest
		pErr.Message = fmt.Sprintf("Bad request to %s", endpoint)
	default:
		pErr.Code = constants.ErrCodeUpstreamFailure
		pErr.Message = fmt.Sprintf("HTTP %d from %s", statusCode, endpoint)
	}
	return pErr
}
