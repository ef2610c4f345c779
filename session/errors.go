package session

import (
	"errors"
	"fmt"

	"github.com/leofalp/openchat/message"
)

var (
	// ErrNoMessages is returned by Send when the request holds no message.
	ErrNoMessages = errors.New("session: request has no messages")

	// ErrAlreadySent is returned by Send on a request that was already sent.
	ErrAlreadySent = errors.New("session: request already sent")

	// ErrTruncatedStream is wrapped by TruncatedStreamError.
	ErrTruncatedStream = errors.New("session: stream ended without [DONE]")

	// ErrHistoryAppend wraps a history store failure after a successful call.
	ErrHistoryAppend = errors.New("session: append history")
)

// TruncatedStreamError is returned when the response body closed before the
// data: [DONE] terminator. Partial holds the message finalised from the
// fragments that did arrive; it is not stored in history.
type TruncatedStreamError struct {
	Partial   *message.Assistant
	Fragments int
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("%v after %d fragments", ErrTruncatedStream, e.Fragments)
}

func (e *TruncatedStreamError) Unwrap() error {
	return ErrTruncatedStream
}
