package handlers

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the readiness checks of one request.
const healthCheckTimeout = 5 * time.Second

// HealthChecker is anything that can report whether it is reachable.
// The metadata store and the storage backend both satisfy it.
type HealthChecker interface {
	Healthcheck(ctx context.Context) error
}

// Component is a named dependency checked by the readiness check.
type Component struct {
	Name    string
	Kind    string
	Checker HealthChecker
}

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness check: Is the server process running?
//   - Readiness check: Do the metadata store and the storage backend respond?
type HealthHandler struct {
	components []Component
	startedAt  time.Time
}

// NewHealthHandler creates a new health handler.
//
// With no components the readiness check reports unhealthy.
func NewHealthHandler(components ...Component) *HealthHandler {
	return &HealthHandler{components: components, startedAt: time.Now()}
}

// LivenessData is the payload of the liveness check.
type LivenessData struct {
	Service   string    `json:"service"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	UptimeSec int64     `json:"uptime_sec"`
}

// Liveness handles GET /health - simple liveness check.
//
// Returns 200 OK as long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt)
	writeJSON(w, http.StatusOK, healthyResponse(LivenessData{
		Service:   "fms",
		StartedAt: h.startedAt.UTC(),
		Uptime:    uptime.Round(time.Second).String(),
		UptimeSec: int64(uptime.Seconds()),
	}))
}

// ComponentHealth is the health status of a single component.
type ComponentHealth struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Readiness handles GET /health/ready - readiness check.
//
// Returns 200 OK if every component is healthy, 503 Service Unavailable
// otherwise. The per-component results are returned in both cases.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.components) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("no components configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	results := make([]ComponentHealth, 0, len(h.components))
	allHealthy := true

	for _, c := range h.components {
		start := time.Now()
		err := c.Checker.Healthcheck(ctx)

		health := ComponentHealth{
			Name:    c.Name,
			Kind:    c.Kind,
			Latency: time.Since(start).String(),
		}
		if err != nil {
			health.Status = "unhealthy"
			health.Error = err.Error()
			allHealthy = false
		} else {
			health.Status = "healthy"
		}

		results = append(results, health)
	}

	if allHealthy {
		writeJSON(w, http.StatusOK, healthyResponse(results))
	} else {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(results))
	}
}
