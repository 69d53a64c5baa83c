package fetcher

import "errors"

// Sentinel errors used while preparing a request. They never leave the
// package; Fetch converts them into classified FeedErrors.
var (
	// ErrInvalidURL indicates the URL is not absolute http(s) with a host.
	//
	// Example:
	//   - "not-a-url" → ErrInvalidURL
	//   - "ftp://example.com/feed.json" → ErrInvalidURL
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the host resolves to a private address while
	// DenyPrivateIPs is enabled.
	ErrPrivateIP = errors.New("URL resolves to private IP address")
)
