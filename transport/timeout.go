package transport

import (
	"context"
	"io"
	"sync"
	"time"
)

// NewTimeoutMiddleware enforces a per-call deadline.
//
// For Do the context is cancelled when the call returns. For Stream the
// deadline covers the whole body: the context is cancelled when the body is
// closed, so a slow stream is cut off mid-read once the deadline passes.
func NewTimeoutMiddleware(timeout time.Duration) Middleware {
	return Middleware{
		Do: func(next DoFunc) DoFunc {
			return func(ctx context.Context, request Request) (*Response, error) {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				return next(ctx, request)
			}
		},
		Stream: func(next StreamFunc) StreamFunc {
			return func(ctx context.Context, request Request) (*StreamResponse, error) {
				ctx, cancel := context.WithTimeout(ctx, timeout)

				response, err := next(ctx, request)
				if err != nil {
					cancel()
					return nil, err
				}

				response.Body = &cancelOnClose{ReadCloser: response.Body, cancel: cancel}
				return response, nil
			}
		},
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
	once   sync.Once
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.once.Do(c.cancel)
	return err
}
