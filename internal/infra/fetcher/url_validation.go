// Package fetcher retrieves feed documents over HTTP, following a bounded
// number of redirects and classifying every failure into a FeedError.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"jsonfeed-validator/internal/domain/entity"
)

// resolver is the subset of *net.Resolver used for the SSRF check.
type resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// validateURL parses and validates one hop of a fetch before a request is made.
//
// Parameters:
//   - rawURL: The URL of the hop
//   - denyPrivateIPs: If true, resolve the host and block private addresses
//
// Returns:
//   - *url.URL: The parsed URL
//   - error: ErrInvalidURL, ErrPrivateIP or the resolver's *net.DNSError
//
// Blocked IP ranges (when denyPrivateIPs is true):
//   - 127.0.0.0/8, ::1 (loopback)
//   - 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, fc00::/7 (private)
//   - 169.254.0.0/16, fe80::/10 (link-local)
func validateURL(ctx context.Context, r resolver, rawURL string, denyPrivateIPs bool) (*url.URL, error) {
	u, err := entity.ValidateURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if !denyPrivateIPs {
		return u, nil
	}

	hostname := u.Hostname()
	addrs, err := r.LookupIPAddr(ctx, hostname)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", hostname, err)
	}

	for _, addr := range addrs {
		if entity.IsPrivateIP(addr.IP) {
			return nil, fmt.Errorf("%w: hostname '%s' resolves to %s", ErrPrivateIP, hostname, addr.IP.String())
		}
	}

	return u, nil
}
