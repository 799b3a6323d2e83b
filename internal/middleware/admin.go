package middleware

import (
	"net/http"
	"strings"
	"time"

	"leadcapture/formbridge/internal/auth"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/logging"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func unauthorized(w http.ResponseWriter, start time.Time) {
	common.RespondAppError(w, start, &common.AppError{
		Code:    constants.ErrCodeUnauthorized,
		Message: constants.GetErrorMessage(constants.ErrCodeUnauthorized),
		Status:  http.StatusUnauthorized,
	})
}

// AdminAuthMiddleware requires a host-issued token granting manage_options
func AdminAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			token := bearerToken(r)
			if token == "" {
				unauthorized(w, start)
				return
			}

			claims, err := auth.ParseAdminToken(secret, token)
			if err != nil {
				logging.Warn("Admin token rejected", "path", r.URL.Path, "error", err)
				unauthorized(w, start)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetAdminClaims(r.Context(), claims)))
		})
	}
}

// OptionalAdminMiddleware marks the request as admin when a valid token is
// present and lets everyone else through unchanged
func OptionalAdminMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := auth.ParseAdminToken(secret, token); err == nil {
					r = r.WithContext(auth.SetAdminClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
