package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestLoggingMiddleware_Do_LogsModelAndCompletion(t *testing.T) {
	logger, buf := newBufferLogger()
	base := &fakeTransport{doFunc: func(context.Context, Request) (*Response, error) {
		return &Response{Body: []byte(`{"choices":[{"finish_reason":"stop"}]}`)}, nil
	}}

	_, err := Wrap(base, NewLoggingMiddleware(logger, LogLevelStandard)).Do(context.Background(), Request{
		Path: "/v1/chat/completions",
		Body: []byte(`{"model":"gpt-x","messages":[{"role":"user","content":"hi"}]}`),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"chat send", "model=gpt-x", "message_count=1", "chat send completed", "finish_reason=stop"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "content") {
		t.Errorf("standard level must not log message content:\n%s", out)
	}
}

func TestLoggingMiddleware_Do_LogsFailure(t *testing.T) {
	logger, buf := newBufferLogger()
	base := &fakeTransport{doFunc: func(context.Context, Request) (*Response, error) {
		return nil, errors.New("connection refused")
	}}

	_, err := Wrap(base, NewLoggingMiddleware(logger, LogLevelMinimal)).Do(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "chat send failed") || !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("expected failure entry, got:\n%s", buf.String())
	}
}

func TestLoggingMiddleware_Stream_LogsOnClose(t *testing.T) {
	logger, buf := newBufferLogger()
	base := &fakeTransport{streamFunc: func(context.Context, Request) (*StreamResponse, error) {
		return &StreamResponse{Body: io.NopCloser(strings.NewReader("data: [DONE]\n\n"))}, nil
	}}

	response, err := Wrap(base, NewLoggingMiddleware(logger, LogLevelMinimal)).Stream(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if strings.Contains(buf.String(), "chat stream completed") {
		t.Fatal("completion must not be logged before the body is closed")
	}

	_, _ = io.ReadAll(response.Body)
	_ = response.Body.Close()
	_ = response.Body.Close()

	out := buf.String()
	if strings.Count(out, "chat stream completed") != 1 {
		t.Errorf("expected one completion entry, got:\n%s", out)
	}
	if !strings.Contains(out, "bytes_read=14") {
		t.Errorf("expected bytes_read=14, got:\n%s", out)
	}
}
