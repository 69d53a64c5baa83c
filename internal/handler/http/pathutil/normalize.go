// Package pathutil maps request paths to a bounded set of metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

// Unmatched is the label for paths the server does not route explicitly.
// The validator answers on "/" for any path, so scanners probing random
// URLs would otherwise create one label each.
const Unmatched = "/:other"

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns are evaluated in order.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/$`), Template: "/"},
	{Pattern: regexp.MustCompile(`^/health$`), Template: "/health"},
	{Pattern: regexp.MustCompile(`^/live$`), Template: "/live"},
	{Pattern: regexp.MustCompile(`^/ready$`), Template: "/ready"},
	{Pattern: regexp.MustCompile(`^/metrics$`), Template: "/metrics"},
}

// NormalizePath returns the metric label for path.
//
//	NormalizePath("/")                 // "/"
//	NormalizePath("/?url=example.org") // "/"
//	NormalizePath("/health/")          // "/health"
//	NormalizePath("/wp-login.php")     // "/:other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if path == "" {
		path = "/"
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return Unmatched
}

// GetExpectedCardinality returns the number of distinct labels NormalizePath can produce.
func GetExpectedCardinality() int {
	seen := map[string]struct{}{Unmatched: {}}
	for _, p := range pathPatterns {
		seen[p.Template] = struct{}{}
	}
	return len(seen)
}
