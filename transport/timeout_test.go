package transport

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestTimeoutMiddleware_Do_AppliesDeadline(t *testing.T) {
	base := &fakeTransport{doFunc: func(ctx context.Context, _ Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	wrapped := Wrap(base, NewTimeoutMiddleware(20*time.Millisecond))

	_, err := wrapped.Do(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestTimeoutMiddleware_Stream_CancelsOnClose(t *testing.T) {
	var streamCtx context.Context
	base := &fakeTransport{streamFunc: func(ctx context.Context, _ Request) (*StreamResponse, error) {
		streamCtx = ctx
		return &StreamResponse{Body: io.NopCloser(strings.NewReader("data: x\n\n"))}, nil
	}}
	wrapped := Wrap(base, NewTimeoutMiddleware(time.Hour))

	response, err := wrapped.Stream(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if streamCtx.Err() != nil {
		t.Fatal("context must stay alive while the body is open")
	}

	_ = response.Body.Close()
	_ = response.Body.Close()
	if !errors.Is(streamCtx.Err(), context.Canceled) {
		t.Errorf("expected context cancelled after Close, got %v", streamCtx.Err())
	}
}

func TestTimeoutMiddleware_Stream_ErrorCancelsImmediately(t *testing.T) {
	var streamCtx context.Context
	base := &fakeTransport{streamFunc: func(ctx context.Context, _ Request) (*StreamResponse, error) {
		streamCtx = ctx
		return nil, errors.New("dial failed")
	}}

	_, err := Wrap(base, NewTimeoutMiddleware(time.Hour)).Stream(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if streamCtx.Err() == nil {
		t.Error("expected context cancelled on pre-stream error")
	}
}
