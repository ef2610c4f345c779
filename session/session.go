package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/leofalp/openchat/message"
	"github.com/leofalp/openchat/providers/memory"
	"github.com/leofalp/openchat/providers/memory/inmemory"
	"github.com/leofalp/openchat/providers/observability"
	"github.com/leofalp/openchat/transport"
)

// Session is a multi-turn conversation with one chat endpoint. It is safe
// for concurrent use: config and system message are copied under a lock
// when a request body is built, and history appends are serialized by the
// memory provider.
type Session struct {
	id        string
	apiKey    string
	path      string
	transport transport.Transport

	mu            sync.RWMutex
	config        Config
	systemMessage *message.System
	usage         Usage

	history        memory.Provider
	historyFactory func(sessionID string) memory.Provider
	observer       observability.Provider
	logger         *slog.Logger
	queueMaxSize   int
	allowTruncated bool
}

// New returns a session sending requests for path (e.g.
// "/v1/chat/completions") through t. config is copied.
func New(t transport.Transport, apiKey, path string, config Config, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		apiKey:    apiKey,
		path:      path,
		transport: t,
		config:    config.Clone(),
		observer:  observability.Noop{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil && s.historyFactory != nil {
		s.history = s.historyFactory(s.id)
	}
	if s.history == nil {
		s.history = inmemory.New()
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Usage returns the token usage accumulated over every successful call,
// temporary ones included.
func (s *Session) Usage() Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage
}

// Path returns the chat endpoint path.
func (s *Session) Path() string {
	return s.path
}

// SetSystemMessage sets the system message sent first in every request.
func (s *Session) SetSystemMessage(content string) {
	system := message.System(content)
	s.mu.Lock()
	s.systemMessage = &system
	s.mu.Unlock()
}

// SystemMessage returns the system message and whether one is set.
func (s *Session) SystemMessage() (message.System, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.systemMessage == nil {
		return "", false
	}
	return *s.systemMessage, true
}

// ClearSystemMessage removes the system message.
func (s *Session) ClearSystemMessage() {
	s.mu.Lock()
	s.systemMessage = nil
	s.mu.Unlock()
}

// SetConfig replaces the generation parameters. config is copied.
func (s *Session) SetConfig(config Config) {
	clone := config.Clone()
	s.mu.Lock()
	s.config = clone
	s.mu.Unlock()
}

// SetConfigValue sets one generation parameter.
func (s *Session) SetConfigValue(key string, value any) {
	value = cloneValue(value)
	s.mu.Lock()
	s.config[key] = value
	s.mu.Unlock()
}

// Config returns a copy of the generation parameters.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

// Request starts building a call.
func (s *Session) Request() *Request {
	return &Request{
		session: s,
		id:      uuid.NewString(),
	}
}

// Send sends messages in one call and returns the reply.
func (s *Session) Send(ctx context.Context, messages ...message.Message) (*message.Assistant, error) {
	return s.Request().AddMessages(messages...).Send(ctx)
}

// SendStream sends messages in one streaming call, passing every fragment to
// handler as it arrives, and returns the final reply.
func (s *Session) SendStream(ctx context.Context, handler FragmentHandler, messages ...message.Message) (*message.Assistant, error) {
	return s.Request().AddMessages(messages...).Stream(handler).Send(ctx)
}

// Clear empties the history and removes the system message.
func (s *Session) Clear(ctx context.Context) error {
	s.ClearSystemMessage()
	return s.ClearMessages(ctx)
}

// ClearMessages empties the history.
func (s *Session) ClearMessages(ctx context.Context) error {
	return s.history.ClearMessages(ctx)
}

// Messages returns the history, oldest first.
func (s *Session) Messages(ctx context.Context) ([]message.Message, error) {
	return s.history.AllMessages(ctx)
}

// LastMessages returns up to the last n history entries, oldest first.
func (s *Session) LastMessages(ctx context.Context, n int) ([]message.Message, error) {
	return s.history.LastMessages(ctx, n)
}

// MessagesByRole returns the history entries with the given role.
func (s *Session) MessagesByRole(ctx context.Context, role message.Role) ([]message.Message, error) {
	return s.history.FilterByRole(ctx, role)
}

// Count returns the number of history entries.
func (s *Session) Count(ctx context.Context) (int, error) {
	return s.history.Count(ctx)
}

// snapshot copies config and system message for one request body.
func (s *Session) snapshot() (Config, *message.System) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config := s.config.Clone()
	if s.systemMessage == nil {
		return config, nil
	}
	system := *s.systemMessage
	return config, &system
}
