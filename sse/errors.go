package sse

import (
	"errors"
	"fmt"
)

var (
	// ErrWriteQueueFull is returned by Write when the queue is at or above
	// its maximum size. Retry the same chunk after the drain callback fires.
	ErrWriteQueueFull = errors.New("sse: write queue full")

	// ErrClosed is returned by Write after End.
	ErrClosed = errors.New("sse: parser closed")
)

// CapacityError is returned by Pipe when the parser stays full. Inside a
// single reading goroutine no drain can arrive without more input, so the
// pending event is larger than the configured capacity.
type CapacityError struct {
	Queued   int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("sse: event exceeds write queue capacity (queued %d bytes, max %d)", e.Queued, e.Capacity)
}

func (e *CapacityError) Unwrap() error {
	return ErrWriteQueueFull
}

// HandlerError wraps a failure raised by an event or end callback.
type HandlerError struct {
	Event string
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("sse: event handler failed: %v", e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
