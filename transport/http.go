package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/leofalp/openchat/internal/utils"
)

// HTTP is a Transport over net/http.
type HTTP struct {
	baseURL string
	client  *http.Client
	headers []utils.HeaderOption
}

var _ Transport = (*HTTP)(nil)

// HTTPOption configures an HTTP transport.
type HTTPOption func(*HTTP)

// WithHTTPClient sets the client used for requests. The default is
// http.DefaultClient.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithHeader adds a header sent on every request, applied after the
// defaults.
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTP) {
		h.headers = append(h.headers, utils.HeaderOption{Key: key, Value: value})
	}
}

// NewHTTP returns a transport sending requests to baseURL (scheme, host and
// optional port, e.g. "https://api.openai.com").
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// BaseURL returns the origin requests are sent to.
func (h *HTTP) BaseURL() string {
	return h.baseURL
}

// Do posts the request and returns the buffered body.
func (h *HTTP) Do(ctx context.Context, request Request) (*Response, error) {
	body, err := utils.DoPost(ctx, h.client, h.url(request.Path), request.APIKey, []byte(request.Body), h.headers...)
	if err != nil {
		return nil, err
	}
	return &Response{Body: body}, nil
}

// Stream posts the request with Accept: text/event-stream and returns the
// open body.
func (h *HTTP) Stream(ctx context.Context, request Request) (*StreamResponse, error) {
	response, err := utils.DoPostStream(ctx, h.client, h.url(request.Path), request.APIKey, []byte(request.Body), h.headers...)
	if err != nil {
		return nil, err
	}
	return &StreamResponse{Body: response.Body}, nil
}

func (h *HTTP) url(path string) string {
	if path == "" {
		return h.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return h.baseURL + path
}
