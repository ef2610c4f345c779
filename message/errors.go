package message

import (
	"errors"
	"fmt"

	"github.com/leofalp/openchat/internal/utils"
)

var (
	// ErrMalformedPayload is wrapped by DecodeError when a payload is not a
	// usable completion object.
	ErrMalformedPayload = errors.New("malformed completion payload")

	// ErrBuilderConsumed is returned when an AssistantBuilder is used after Build.
	ErrBuilderConsumed = errors.New("assistant builder already consumed")
)

// DecodeError reports a payload that could not be turned into a message.
// Payload holds a truncated copy of the offending text.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode assistant payload: %v (payload: %s)", e.Err, e.Payload)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

const maxPayloadPreview = 200

func truncate(s string) string {
	return utils.TruncateString(s, maxPayloadPreview)
}
