package types

type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

type ComponentHealth struct {
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

type HealthCheck struct {
	Status     HealthStatus               `json:"status"`
	Version    string                     `json:"version"`
	Components map[string]ComponentHealth `json:"components"`
	Uptime     string                     `json:"uptime,omitempty"`
}
