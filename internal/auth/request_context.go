package auth

import (
	"context"
)

type contextKey string

var (
	adminClaimsKey contextKey = "admin_claims"
	requestIDKey   contextKey = "request_id"
)

func SetAdminClaims(ctx context.Context, claims *AdminClaims) context.Context {
	return context.WithValue(ctx, adminClaimsKey, claims)
}

func GetAdminClaims(ctx context.Context) *AdminClaims {
	if claims, ok := ctx.Value(adminClaimsKey).(*AdminClaims); ok {
		return claims
	}
	return nil
}

// IsAdmin reports whether the request carried a valid admin token
func IsAdmin(ctx context.Context) bool {
	return GetAdminClaims(ctx) != nil
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
