// Package tracing provides OpenTelemetry tracing integration.
//
// Init installs an SDK tracer provider and the W3C trace-context propagator;
// Middleware opens a server span per HTTP request and StartSpan opens child
// spans for the fetch and validation stages.
//
// Example usage:
//
//	shutdown := tracing.Init("jsonfeed-validator", version)
//	defer func() { _ = shutdown(context.Background()) }()
//
//	func (s *Service) Validate(ctx context.Context, url string) {
//	    ctx, span := tracing.StartSpan(ctx, "validate.Validate")
//	    defer span.End()
//	    // ...
//	}
package tracing
