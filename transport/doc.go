// Package transport carries chat-completion requests to an
// OpenAI-compatible endpoint.
//
// [Transport] has two operations: [Transport.Do] for a buffered JSON
// round-trip and [Transport.Stream] for a Server-Sent Events response whose
// body the caller reads and closes. [HTTP] is the net/http implementation.
//
// Cross-cutting behavior is layered with [Middleware] values via [Wrap]:
// [NewLoggingMiddleware] and [NewTimeoutMiddleware]. The first middleware passed to Wrap is the outermost one.
package transport
