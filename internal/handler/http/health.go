// Package http provides the HTTP surface of the validator: operational
// endpoints (health, readiness, liveness, metrics) and the middleware
// chain shared by every route. The validation endpoint itself lives in
// the validator subpackage.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ServiceChecker reports whether the validation service is wired and usable.
type ServiceChecker interface {
	Check() error
}

// ClientCounter exposes how many clients the rate limiter tracks.
type ClientCounter interface {
	ActiveClients() int
}

// HealthHandler reports the state of the validation service, the loaded
// schema, the rate limiter and CSP.
type HealthHandler struct {
	Service        ServiceChecker
	SchemaLocation string
	Version        string

	// RateLimiter is optional.
	RateLimiter ClientCounter

	CSPEnabled    bool
	CSPReportOnly bool
}

// ServeHTTP returns 200 OK when healthy and 503 Service Unavailable otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)
	allHealthy := true

	// バリデーションサービスのチェック
	svc := h.checkService()
	checks["validator"] = svc
	if svc.Status != "healthy" {
		allHealthy = false
	}

	if h.RateLimiter != nil {
		checks["rate_limiter"] = CheckStatus{
			Status:  "healthy",
			Details: map[string]any{"active_clients": h.RateLimiter.ActiveClients()},
		}
	}

	if h.CSPEnabled {
		checks["csp"] = CheckStatus{
			Status:  "healthy",
			Details: map[string]any{"report_only": h.CSPReportOnly},
		}
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

func (h *HealthHandler) checkService() CheckStatus {
	if h.Service == nil {
		return CheckStatus{Status: "unhealthy", Message: "not configured"}
	}
	if err := h.Service.Check(); err != nil {
		return CheckStatus{Status: "unhealthy", Message: err.Error()}
	}
	details := map[string]any{}
	if h.SchemaLocation != "" {
		details["schema"] = h.SchemaLocation
	}
	return CheckStatus{Status: "healthy", Details: details}
}

// ReadyHandler handles readiness probes. The server is ready once the
// schema is compiled and the service is wired.
type ReadyHandler struct {
	Service ServiceChecker
}

// ServeHTTP returns 200 "ready" or 503.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		http.Error(w, "validator not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.Service.Check(); err != nil {
		http.Error(w, "validator not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeText(w, "ready")
}

// LiveHandler handles liveness probes.
type LiveHandler struct{}

// ServeHTTP always returns 200 OK while the process can respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeText(w, "alive")
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("failed to write response", slog.String("body", body), slog.Any("error", err))
	}
}
