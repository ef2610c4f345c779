package inmemory

import (
	"context"
	"sync"

	"github.com/leofalp/openchat/message"
	"github.com/leofalp/openchat/providers/memory"
	"github.com/leofalp/openchat/providers/observability"
)

// ArrayMemory is a simple, concurrency-safe in-memory message store.
// It uses RWMutex to guard access and is efficient for read-heavy workloads.
type ArrayMemory struct {
	mu       sync.RWMutex
	messages []message.Simple
}

// New returns a new, empty [ArrayMemory].
func New() *ArrayMemory {
	return &ArrayMemory{
		messages: []message.Simple{},
	}
}

// Ensure ArrayMemory implements memory.Provider at compile time.
var _ memory.Provider = (*ArrayMemory)(nil)

// AppendMessages stores copies of messages at the end of the history under a
// single lock. Nil entries are skipped.
// When an observability span is present in ctx, an event is recorded with the
// batch size and the running total is set as a span attribute.
func (m *ArrayMemory) AppendMessages(ctx context.Context, messages ...message.Message) error {
	batch := make([]message.Simple, 0, len(messages))
	for _, msg := range messages {
		if isNil(msg) {
			continue
		}
		batch = append(batch, message.NewSimple(msg.Content(), msg.Role()))
	}
	if len(batch) == 0 {
		return nil
	}

	m.mu.Lock()
	m.messages = append(m.messages, batch...)
	totalMessages := len(m.messages)
	m.mu.Unlock()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryAppend,
			observability.Int(observability.AttrMemoryAppended, len(batch)),
		)
		span.SetAttributes(
			observability.Int(observability.AttrMemoryTotalMessages, totalMessages),
		)
	}
	return nil
}

// Count returns the number of messages stored.
func (m *ArrayMemory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	n := len(m.messages)
	m.mu.RUnlock()
	return n, nil
}

// AllMessages returns a copy of all messages in insertion order.
func (m *ArrayMemory) AllMessages(_ context.Context) ([]message.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return toMessages(m.messages), nil
}

// LastMessages returns up to the last n messages, oldest first.
// Returns an empty, non-nil slice when n is zero or negative.
func (m *ArrayMemory) LastMessages(_ context.Context, n int) ([]message.Message, error) {
	if n <= 0 {
		return []message.Message{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n = min(n, len(m.messages))
	return toMessages(m.messages[len(m.messages)-n:]), nil
}

// FilterByRole returns all messages with the given role, in order.
func (m *ArrayMemory) FilterByRole(_ context.Context, role message.Role) ([]message.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	filtered := []message.Message{}
	for _, msg := range m.messages {
		if msg.Role() == role {
			filtered = append(filtered, msg)
		}
	}
	return filtered, nil
}

// ClearMessages removes all messages while retaining the slice capacity.
func (m *ArrayMemory) ClearMessages(ctx context.Context) error {
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryClear)
	}

	m.mu.Lock()
	m.messages = m.messages[:0]
	m.mu.Unlock()
	return nil
}

func toMessages(stored []message.Simple) []message.Message {
	out := make([]message.Message, len(stored))
	for i, msg := range stored {
		out[i] = msg
	}
	return out
}

// isNil reports a nil interface or a typed nil pointer held by one.
func isNil(msg message.Message) bool {
	switch m := msg.(type) {
	case nil:
		return true
	case *message.Assistant:
		return m == nil
	}
	return false
}
