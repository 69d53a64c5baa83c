package entity

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// NormalizeFeedURL prepends "http://" to the user-supplied feed URL when
// the string does not mention http at all ("example.com/feed.json").
// Only an empty input stays empty and means "no URL supplied". Whitespace is
// kept, so "url=%20" becomes "http:// " and fails as an invalid URL.
func NormalizeFeedURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "http") {
		return "http://" + raw
	}
	return raw
}

// ValidateURL checks that a feed URL is absolute, uses http or https and has a host.
// Returns a ValidationError if the URL is invalid or empty.
func ValidateURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, &ValidationError{Field: "url", Message: "URL is required"}
	}

	// DoS protection: enforce maximum URL length
	if len(rawURL) > maxURLLength {
		return nil, &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	// HTTPまたはHTTPSスキームのみ許可
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	// ホスト名の検証
	if parsedURL.Hostname() == "" {
		return nil, &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return parsedURL, nil
}

// IsPrivateIP checks if an IP address is in a private or restricted range:
// loopback, link-local (including cloud metadata) and RFC 1918 / RFC 4193 networks.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	if ip.IsPrivate() {
		return true
	}
	return ip.IsUnspecified()
}
