package entities

import "time"

// ServiceStatus is one dependency's state as seen by the last health probe
type ServiceStatus struct {
	Status    string        `json:"status"`
	Details   string        `json:"details,omitempty"`
	LatencyMS int64         `json:"latency_ms,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}
