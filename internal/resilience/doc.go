// Package resilience groups the fault tolerance helpers used when the
// validator talks to something it does not control at startup, namely a
// JSON Schema served over HTTP.
//
// The package supports:
//   - Circuit breakers (github.com/sony/gobreaker) around remote loads
//   - Retry logic with exponential backoff and jitter
//
// Feed fetches deliberately use neither: every validation request reports
// exactly what the publisher's server answered.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.SchemaLoaderConfig())
//	body, err := retry.Do(ctx, retry.SchemaPolicy(), func(ctx context.Context) ([]byte, error) {
//	    return circuitbreaker.Do(cb, func() ([]byte, error) {
//	        return download(ctx, schemaURL)
//	    })
//	})
package resilience
