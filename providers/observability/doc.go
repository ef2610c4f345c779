// Package observability defines the tracing, metrics and structured logging
// facade used throughout openchat.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics]
// and [Logger]. Sessions start one span per send and propagate both the span
// and the observer through a [context.Context] via [ContextWithSpan] and
// [ContextWithObserver], so lower layers (HTTP helpers, the history store)
// can enrich the active span without taking an explicit dependency.
//
// semconv.go lists the attribute keys, span, event and metric names shared by
// all components. A log/slog backed implementation lives in the slogobs
// subpackage; [Noop] discards everything.
package observability
