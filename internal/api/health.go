package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"leadcapture/formbridge/internal/models/entities"
)

const pingTimeout = 2 * time.Second

func pingStatus(ctx context.Context, db *sqlx.DB, okDetails string) entities.ServiceStatus {
	now := time.Now().UTC()
	if db == nil {
		return entities.ServiceStatus{Status: "disabled", Details: "not configured", CheckedAt: now}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return entities.ServiceStatus{Status: "down", Details: err.Error(), CheckedAt: now}
	}
	return entities.ServiceStatus{
		Status:    "ok",
		Details:   okDetails,
		LatencyMS: time.Since(now).Milliseconds(),
		CheckedAt: now,
	}
}

// HealthCheckHandler handles GET /healthCheck. wp may be nil when no
// WordPress site is attached.
func HealthCheckHandler(db *sqlx.DB, wp *sqlx.DB, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := map[string]entities.ServiceStatus{
			"postgres":  pingStatus(r.Context(), db, "Postgres Connected"),
			"wordpress": pingStatus(r.Context(), wp, "WordPress Connected"),
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status == "down" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		if overallStatus != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
