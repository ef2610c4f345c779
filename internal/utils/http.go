package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/leofalp/openchat/providers/observability"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// maxErrorPreview bounds the response body echoed in a StatusError message.
const maxErrorPreview = 500

// HeaderOption is an extra request header applied after the defaults.
type HeaderOption struct {
	Key   string
	Value string
}

// StatusError is returned when the endpoint answers with a non-2xx status.
// Body holds the (size-capped) response body.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(string(e.Body), maxErrorPreview))
}

// CloseWithLog closes c and logs, rather than returns, any failure. Use it in
// defers where a close error must not override the primary result.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// newJSONRequest marshals body (raw bytes are sent as-is) and builds a POST
// request carrying the JSON content type and, when apiKey is set, a bearer
// token. Extra headers are applied last and may override the defaults.
func newJSONRequest(ctx context.Context, url string, apiKey string, body any, headers []HeaderOption) (*http.Request, []byte, error) {
	var jsonBody []byte
	switch b := body.(type) {
	case []byte:
		jsonBody = b
	case json.RawMessage:
		jsonBody = b
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("error marshaling body: %w", err)
		}
		jsonBody = encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	return req, jsonBody, nil
}

// readStatusError drains a non-2xx response into a StatusError.
func readStatusError(res *http.Response) error {
	errorBody, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if readErr != nil {
		return fmt.Errorf("non-2xx status %d (failed to read body: %w)", res.StatusCode, readErr)
	}
	return &StatusError{StatusCode: res.StatusCode, Body: errorBody}
}

// DoPost performs a buffered HTTP POST with a JSON body and returns the raw
// response body. It records span events when the context carries a span.
//
// Error Handling Strategy:
//   - Context errors (timeout, cancellation) are propagated wrapped
//   - Connection failures return the transport error
//   - Non-2xx statuses return a *StatusError carrying the body
//   - Response body close errors are logged but never override the result
func DoPost(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) ([]byte, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, jsonBody, err := newJSONRequest(ctx, url, apiKey, body, headers)
	if err != nil {
		return nil, err
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	timer := NewTimer()
	res, err := httpClient.Do(req)
	timer.Stop()

	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventHTTPRequestError,
				observability.Error(err),
				observability.Duration(observability.AttrDuration, timer.GetDuration()),
			)
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, readStatusError(res)
	}

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPResponseReceived,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration(observability.AttrDuration, timer.GetDuration()),
		)
	}

	return respBody, nil
}
