// Package observability wires OpenTelemetry tracing and metrics for the
// streamcast service and aggregates component health.
//
//	shutdown, err := observability.Init(ctx, cfg.Observability, observability.Resource{
//	    ServiceName: "streamcast",
//	    Version:     "1.0.0",
//	    Environment: "production",
//	})
//	defer shutdown(context.Background())
//
// Broadcasts and the SSE server pick the providers up from the otel
// globals, so Init must run before they are built.
package observability
