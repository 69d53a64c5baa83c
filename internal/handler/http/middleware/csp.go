package middleware

import (
	"net/http"
	"strings"

	"jsonfeed-validator/internal/observability/logging"
	"jsonfeed-validator/pkg/security/csp"
)

// CSPMiddlewareConfig holds configuration for CSP middleware.
type CSPMiddlewareConfig struct {
	// Enabled controls whether CSP headers are applied.
	Enabled bool

	// DefaultPolicy is applied when no path-specific policy matches.
	DefaultPolicy *csp.Builder

	// PathPolicies maps path prefixes to specific policies.
	// The longest matching prefix wins.
	PathPolicies map[string]*csp.Builder

	// ReportOnly sends Content-Security-Policy-Report-Only instead of enforcing.
	ReportOnly bool
}

// DefaultCSPConfig returns the policies used by the validator server:
// the report page policy for "/" and the API policy for operational endpoints.
func DefaultCSPConfig() CSPMiddlewareConfig {
	api := csp.APIPolicy()
	return CSPMiddlewareConfig{
		Enabled:       true,
		DefaultPolicy: csp.ReportPagePolicy(),
		PathPolicies: map[string]*csp.Builder{
			"/health":  api,
			"/live":    api,
			"/ready":   api,
			"/metrics": api,
		},
	}
}

// CSPMiddleware applies Content-Security-Policy headers to HTTP responses.
type CSPMiddleware struct {
	config CSPMiddlewareConfig
}

// NewCSPMiddleware creates a new CSP middleware with the provided configuration.
func NewCSPMiddleware(config CSPMiddlewareConfig) *CSPMiddleware {
	return &CSPMiddleware{config: config}
}

// Middleware returns an HTTP middleware handler that applies CSP headers.
func (m *CSPMiddleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			policy := m.selectPolicy(r.URL.Path)
			if policy == nil {
				next.ServeHTTP(w, r)
				return
			}

			value := policy.Build()
			if value == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := policy.HeaderName()
			if m.config.ReportOnly {
				header = csp.HeaderReportOnly
			}
			w.Header().Set(header, value)

			logging.FromContext(r.Context()).Debug("CSP header applied",
				"path", r.URL.Path,
				"header", header,
			)

			next.ServeHTTP(w, r)
		})
	}
}

// selectPolicy returns the policy of the longest matching prefix,
// falling back to DefaultPolicy.
//
//	"/metrics"         → PathPolicies["/metrics"]
//	"/?url=...&format" → DefaultPolicy
func (m *CSPMiddleware) selectPolicy(path string) *csp.Builder {
	longestPrefix := ""
	var matched *csp.Builder

	for prefix, policy := range m.config.PathPolicies {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(longestPrefix) {
			longestPrefix = prefix
			matched = policy
		}
	}

	if matched != nil {
		return matched
	}
	return m.config.DefaultPolicy
}
