// Package sse decodes Server-Sent Events as produced by OpenAI-compatible
// chat-completion endpoints.
//
// The package has two layers. [Decode] and [Flush] are a pure state machine
// that turns arbitrarily chunked bytes into blocks, one per blank-line
// terminated event. [Parser] wraps that state machine in a push-stream
// contract: byte-count backpressure accounting, a drain notification, event
// and end callbacks, and error isolation for the callbacks. [Pipe] feeds a
// Parser from an io.Reader such as an HTTP response body.
//
// Only data: fields are interpreted. event:, id:, retry: and comment lines
// are skipped, and a data: [DONE] line marks the end of the stream without
// producing an event.
package sse
