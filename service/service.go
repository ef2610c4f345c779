package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/leofalp/openchat/config"
	"github.com/leofalp/openchat/providers/observability"
	"github.com/leofalp/openchat/session"
	"github.com/leofalp/openchat/transport"
)

// Service is a session factory bound to one endpoint and API key. It is
// safe for concurrent use.
type Service struct {
	apiKey      string
	endpoint    Endpoint
	transport   transport.Transport
	sessionOpts []session.Option

	// set by NewFromConfig
	defaults      session.Config
	systemMessage string
}

// Option configures a Service.
type Option func(*options)

type options struct {
	httpClient  *http.Client
	base        transport.Transport
	headers     [][2]string
	middlewares []transport.Middleware
	timeout     time.Duration
	observer    observability.Provider
	sessionOpts []session.Option
}

// WithHTTPClient sets the client used by the default HTTP transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTransport replaces the HTTP transport. Middlewares still apply.
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.base = t
	}
}

// WithHeader adds a header to every request of the default HTTP transport.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers = append(o.headers, [2]string{key, value})
	}
}

// WithMiddleware appends transport middlewares. The first one added is
// the outermost.
func WithMiddleware(middlewares ...transport.Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

// WithTimeout bounds every call, including the whole body of a stream.
// Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithObserver sets the observability provider of every session.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithSessionOptions applies opts to every session opened by the service.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// New resolves baseURL, the full chat completions URL, and builds the
// shared transport.
func New(apiKey, baseURL string, opts ...Option) (*Service, error) {
	endpoint, err := ResolveEndpoint(baseURL)
	if err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	base := o.base
	if base == nil {
		httpOpts := []transport.HTTPOption{transport.WithHTTPClient(o.httpClient)}
		for _, h := range o.headers {
			httpOpts = append(httpOpts, transport.WithHeader(h[0], h[1]))
		}
		base = transport.NewHTTP(endpoint.Origin(), httpOpts...)
	}

	middlewares := o.middlewares
	if o.timeout > 0 {
		middlewares = append(middlewares, transport.NewTimeoutMiddleware(o.timeout))
	}

	var sessionOpts []session.Option
	if o.observer != nil {
		sessionOpts = append(sessionOpts, session.WithObserver(o.observer))
	}
	sessionOpts = append(sessionOpts, o.sessionOpts...)

	return &Service{
		apiKey:      apiKey,
		endpoint:    endpoint,
		transport:   transport.Wrap(base, middlewares...),
		sessionOpts: sessionOpts,
	}, nil
}

// NewFromConfig validates cfg and builds a Service from it. Sessions from
// ConnectDefault use cfg's model, parameters and system message.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fromConfig := []Option{
		WithTimeout(cfg.Timeout.Duration),
		WithSessionOptions(
			session.WithQueueMaxSize(cfg.StreamQueueSize),
			session.WithAllowTruncated(cfg.AllowTruncated),
		),
	}

	s, err := New(cfg.APIKey, cfg.BaseURL, append(fromConfig, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("build service from config: %w", err)
	}
	s.defaults = cfg.SessionConfig()
	s.systemMessage = cfg.SystemMessage
	return s, nil
}

// Endpoint returns the resolved endpoint.
func (s *Service) Endpoint() Endpoint {
	return s.endpoint
}

// Transport returns the transport shared by all sessions.
func (s *Service) Transport() transport.Transport {
	return s.transport
}

// Connect opens a session for model.
func (s *Service) Connect(model string, opts ...session.Option) *session.Session {
	return s.ConnectWithConfig(session.Config{"model": model}, opts...)
}

// ConnectWithConfig opens a session with the given generation parameters.
// opts are applied after the service-wide session options.
func (s *Service) ConnectWithConfig(cfg session.Config, opts ...session.Option) *session.Session {
	all := make([]session.Option, 0, len(s.sessionOpts)+len(opts))
	all = append(all, s.sessionOpts...)
	all = append(all, opts...)
	return session.New(s.transport, s.apiKey, s.endpoint.Path, cfg, all...)
}

// ConnectDefault opens a session with the model, parameters and system
// message of the config the Service was built from. A Service built with
// New has no defaults.
func (s *Service) ConnectDefault(opts ...session.Option) *session.Session {
	chat := s.ConnectWithConfig(s.defaults, opts...)
	if s.systemMessage != "" {
		chat.SetSystemMessage(s.systemMessage)
	}
	return chat
}
