package transport

import (
	"context"
	"encoding/json"
	"io"

	"github.com/leofalp/openchat/internal/utils"
)

// Request is one call to the chat endpoint.
type Request struct {
	// Path is appended to the transport's base URL, e.g. "/v1/chat/completions".
	Path string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Body is the JSON request body.
	Body json.RawMessage
}

// Response is a buffered reply.
type Response struct {
	Body json.RawMessage
}

// StreamResponse is a streaming reply. The caller must close Body.
type StreamResponse struct {
	Body io.ReadCloser
}

// Transport sends requests to the chat endpoint.
type Transport interface {
	Do(ctx context.Context, request Request) (*Response, error)
	Stream(ctx context.Context, request Request) (*StreamResponse, error)
}

// StatusError is returned for non-2xx replies. Body holds the size-capped
// response body.
type StatusError = utils.StatusError
