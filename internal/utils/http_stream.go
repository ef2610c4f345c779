package utils

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leofalp/openchat/providers/observability"
)

// DoPostStream performs an HTTP POST and returns the response with its body
// left open for SSE reading. The caller must close the body. Non-2xx
// responses are drained, closed and reported as a *StatusError.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	streamHeaders := append([]HeaderOption{{Key: "Accept", Value: "text/event-stream"}}, headers...)
	req, jsonBody, err := newJSONRequest(ctx, url, apiKey, body, streamHeaders)
	if err != nil {
		return nil, err
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
			observability.Bool(observability.AttrRequestStreaming, true),
		)
	}

	timer := NewTimer()
	response, err := httpClient.Do(req)
	timer.Stop()

	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventHTTPRequestError,
				observability.Error(err),
				observability.Duration(observability.AttrDuration, timer.GetDuration()),
			)
		}
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		return nil, readStatusError(response)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPStreamStarted,
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Duration(observability.AttrDuration, timer.GetDuration()),
		)
	}

	return response, nil
}
