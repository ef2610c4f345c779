// Package memory defines the Provider interface for conversation history.
// A session appends the inputs and the reply of every successful,
// non-temporary call as one batch; history is append-only apart from a full
// clear. Read methods return errors so that implementations backed by I/O
// can surface failures instead of swallowing them.
//
// The default implementation is
// [github.com/leofalp/openchat/providers/memory/inmemory].
package memory
