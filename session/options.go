package session

import (
	"log/slog"

	"github.com/leofalp/openchat/providers/memory"
	"github.com/leofalp/openchat/providers/observability"
)

// Option configures a Session.
type Option func(*Session)

// WithID sets the session ID instead of a random UUID, e.g. to correlate
// logs and spans with an identifier owned by the caller.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithMemory sets the history store. The default is an in-memory store.
func WithMemory(history memory.Provider) Option {
	return func(s *Session) {
		if history != nil {
			s.history = history
		}
	}
}

// WithMemoryFactory builds the history store from the session ID, for stores
// keyed by session.
func WithMemoryFactory(factory func(sessionID string) memory.Provider) Option {
	return func(s *Session) {
		s.historyFactory = factory
	}
}

// WithObserver sets the observability provider used for spans, metrics and
// logs of every call.
func WithObserver(observer observability.Provider) Option {
	return func(s *Session) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithLogger sets the logger handed to the SSE parser.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithQueueMaxSize bounds the bytes a stream may buffer for one event.
// Zero or negative means unbounded.
func WithQueueMaxSize(n int) Option {
	return func(s *Session) {
		s.queueMaxSize = n
	}
}

// WithAllowTruncated makes streams that end without [DONE] succeed with the
// partial message, which is then stored in history.
func WithAllowTruncated(allow bool) Option {
	return func(s *Session) {
		s.allowTruncated = allow
	}
}
