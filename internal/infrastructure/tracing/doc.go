/*
Package tracing provides lightweight request tracing for the control API.

# Overview

Each API request gets a span. The trace and parent span IDs come from the
incoming headers when a client propagates them, so a UI can correlate its
own logs with the service log.

# Features

- Trace context propagation via HTTP headers
- Span creation with parent-child relationships
- Automatic trace ID generation (prefixed ULIDs)
- Gin middleware for automatic instrumentation
- Structured logging of finished spans, buffered and asynchronous

# Usage

	tracer := tracing.New("api", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
	span.SetTag("key", "value")

# Trace Format

- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation
*/
package tracing
