// Package utils provides the low-level helpers shared by the openchat
// internals: JSON POST helpers for the chat endpoint (buffered and
// streaming), string truncation for log and error previews, and a small
// elapsed-time timer.
//
// Key entry points: [DoPost] for buffered round-trips, [DoPostStream] for
// Server-Sent Events responses whose body the caller drains, [StatusError]
// for non-2xx replies, and [Timer] for measuring latency.
package utils
