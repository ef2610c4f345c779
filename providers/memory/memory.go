package memory

import (
	"context"

	"github.com/leofalp/openchat/message"
)

// Provider stores the history of one chat session.
type Provider interface {
	// AppendMessages stores messages at the end of the history as one unit:
	// readers never observe a partial batch.
	AppendMessages(ctx context.Context, messages ...message.Message) error
	AllMessages(ctx context.Context) ([]message.Message, error)
	LastMessages(ctx context.Context, n int) ([]message.Message, error)
	Count(ctx context.Context) (int, error)
	FilterByRole(ctx context.Context, role message.Role) ([]message.Message, error)
	ClearMessages(ctx context.Context) error
}
