package constants

// Error codes shared by handlers, services and the outbound providers

// Application errors
const (
	ErrCodeConfigurationMissing = "CONFIGURATION_MISSING"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeUpstreamFailure      = "UPSTREAM_FAILURE"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodePersistenceFailure   = "PERSISTENCE_FAILURE"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeRateLimited          = "RATE_LIMITED"
)

// Provider errors
const (
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeInvalidResponse      = "INVALID_RESPONSE"
	ErrCodeSourceUnavailable    = "SOURCE_UNAVAILABLE"
)

var ErrorMessages = map[string]string{
	ErrCodeConfigurationMissing: "No CRM form id is configured for this form or in the settings",
	ErrCodeValidationFailed:     "The request failed validation",
	ErrCodeUpstreamFailure:      "The upstream service rejected the request",
	ErrCodeNotFound:             "The requested resource was not found",
	ErrCodePersistenceFailure:   "The data could not be saved",
	ErrCodeUnauthorized:         "Administrator access is required",
	ErrCodeRateLimited:          "Rate limit exceeded. Please try again later",

	ErrCodeNetworkError:         "Unable to reach the upstream service",
	ErrCodeAuthenticationFailed: "Authentication with the upstream service failed",
	ErrCodeBadRequest:           "The upstream service rejected the request payload",
	ErrCodeInvalidResponse:      "The upstream service returned a response that could not be read",
	ErrCodeSourceUnavailable:    "The form plugin is not active on this site",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
