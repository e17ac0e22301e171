package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HealthResponse is the envelope of the health endpoints.
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Liveness is the payload of GET /health.
type Liveness struct {
	Service   string    `json:"service"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	UptimeSec int64     `json:"uptime_sec"`
}

// ComponentHealth is one entry of GET /health/ready.
type ComponentHealth struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Readiness is the decoded result of GET /health/ready.
type Readiness struct {
	Ready      bool
	Error      string
	Components []ComponentHealth
}

// Health calls the liveness check.
func (c *Client) Health(ctx context.Context) (*Liveness, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	var live Liveness
	if err := json.Unmarshal(resp.Data, &live); err != nil {
		return nil, fmt.Errorf("failed to decode health data: %w", err)
	}
	return &live, nil
}

// Ready calls the readiness check. An unready server is not an error; the
// result reports which component failed.
func (c *Client) Ready(ctx context.Context) (*Readiness, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/ready", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var hr HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	r := &Readiness{Ready: resp.StatusCode == http.StatusOK, Error: hr.Error}
	if len(hr.Data) > 0 {
		if err := json.Unmarshal(hr.Data, &r.Components); err != nil {
			return nil, fmt.Errorf("failed to decode readiness data: %w", err)
		}
	}
	return r, nil
}
