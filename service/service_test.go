package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/leofalp/openchat/config"
	"github.com/leofalp/openchat/message"
	"github.com/leofalp/openchat/providers/observability"
	"github.com/leofalp/openchat/providers/observability/obstest"
	"github.com/leofalp/openchat/session"
	"github.com/leofalp/openchat/transport"
)

const completion = `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"pong"},"finish_reason":"stop"}]}`

// newChatServer answers JSON or SSE depending on the "stream" flag of the
// request body and hands every body to inspect.
func newChatServer(t *testing.T, inspect func(r *http.Request, body []byte)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if inspect != nil {
			inspect(r, body)
		}
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}

		if !gjson.GetBytes(body, "stream").Bool() {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, completion)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, event := range []string{
			`{"choices":[{"delta":{"reasoning_content":"thinking"}}]}`,
			`{"choices":[{"delta":{"content":"po"}}]}`,
			`{"choices":[{"delta":{"content":"ng"}}]}`,
			`[DONE]`,
		} {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestService_Connect_SendsToResolvedEndpoint(t *testing.T) {
	var auth, path string
	srv := newChatServer(t, func(r *http.Request, _ []byte) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
	})

	svc, err := New("sk-test", srv.URL+"/v1/chat/completions")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chat := svc.Connect("gpt-test")

	reply, err := chat.Send(context.Background(), message.User("ping"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Content() != "pong" {
		t.Errorf("expected pong, got %q", reply.Content())
	}
	if auth != "Bearer sk-test" || path != "/v1/chat/completions" {
		t.Errorf("unexpected request: auth=%q path=%q", auth, path)
	}
	if chat.Path() != "/v1/chat/completions" || chat.Config().Model() != "gpt-test" {
		t.Errorf("unexpected session: path=%q config=%v", chat.Path(), chat.Config())
	}
}

func TestService_Stream_EndToEnd(t *testing.T) {
	var accept string
	srv := newChatServer(t, func(r *http.Request, _ []byte) {
		accept = r.Header.Get("Accept")
	})

	svc, err := New("sk-test", srv.URL+"/v1/chat/completions")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chat := svc.Connect("gpt-test")

	var reasoning, content strings.Builder
	final, err := chat.SendStream(context.Background(), func(fragment *message.Assistant) {
		if fragment.IsReasoning() {
			reasoning.WriteString(fragment.Reasoning())
			return
		}
		content.WriteString(fragment.Content())
	}, message.User("ping"))
	if err != nil {
		t.Fatalf("SendStream: %v", err)
	}

	if accept != "text/event-stream" {
		t.Errorf("expected SSE accept header, got %q", accept)
	}
	if reasoning.String() != "thinking" || content.String() != "pong" {
		t.Errorf("unexpected fragments: reasoning=%q content=%q", reasoning.String(), content.String())
	}
	if final.Content() != "pong" || final.Reasoning() != "thinking" {
		t.Errorf("unexpected final message: %q / %q", final.Content(), final.Reasoning())
	}

	history, _ := chat.Messages(context.Background())
	if len(history) != 2 || history[1].Content() != "pong" {
		t.Errorf("unexpected history %v", history)
	}
}

func TestService_SessionsAreIndependent(t *testing.T) {
	srv := newChatServer(t, nil)
	svc, err := New("k", srv.URL+"/v1/chat/completions")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := svc.Connect("m")
	b := svc.Connect("m")
	if a.ID() == b.ID() {
		t.Error("expected distinct session IDs")
	}

	if _, err := a.Send(context.Background(), message.User("q")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n, _ := b.Count(context.Background()); n != 0 {
		t.Errorf("sessions must not share history, got %d", n)
	}
}

func TestService_MiddlewareAndSessionOptions(t *testing.T) {
	srv := newChatServer(t, nil)
	var calls atomic.Int32
	counting := transport.Middleware{
		Do: func(next transport.DoFunc) transport.DoFunc {
			return func(ctx context.Context, request transport.Request) (*transport.Response, error) {
				calls.Add(1)
				return next(ctx, request)
			}
		},
	}
	recorder := obstest.New()

	svc, err := New("k", srv.URL+"/v1/chat/completions",
		WithMiddleware(counting),
		WithObserver(recorder),
		WithSessionOptions(session.WithID("fixed")),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	chat := svc.Connect("m")
	if chat.ID() != "fixed" {
		t.Errorf("expected service-wide session option, got %q", chat.ID())
	}
	if other := svc.Connect("m", session.WithID("override")); other.ID() != "override" {
		t.Errorf("per-call options must win, got %q", other.ID())
	}

	if _, err := chat.Send(context.Background(), message.User("q")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected middleware to run once, got %d", calls.Load())
	}
	if recorder.CounterValue(observability.MetricSessionRequests) != 1 {
		t.Error("expected the service observer to reach sessions")
	}
}

func TestService_WithTransport(t *testing.T) {
	var got transport.Request
	fake := transportFunc(func(_ context.Context, request transport.Request) (*transport.Response, error) {
		got = request
		return &transport.Response{Body: []byte(completion)}, nil
	})

	svc, err := New("k", "https://example.com/api/chat", WithTransport(fake))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := svc.Connect("m").Send(context.Background(), message.User("q")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Path != "/api/chat" || got.APIKey != "k" {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestService_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := New("k", srv.URL+"/v1/chat/completions", WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = svc.Connect("m").Send(context.Background(), message.User("q"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestService_InvalidBaseURL(t *testing.T) {
	if _, err := New("k", "not a url"); !errors.Is(err, ErrInvalidBaseURL) {
		t.Errorf("expected ErrInvalidBaseURL, got %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	var body []byte
	srv := newChatServer(t, func(_ *http.Request, b []byte) { body = b })

	cfg := &config.Config{
		APIKey:        "k",
		BaseURL:       srv.URL + "/v1/chat/completions",
		Model:         "cfg-model",
		SystemMessage: "be brief",
		Params:        map[string]any{"temperature": 0.1},
	}
	svc, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	chat := svc.ConnectDefault()
	if _, err := chat.Send(context.Background(), message.User("q")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	parsed := gjson.ParseBytes(body)
	if parsed.Get("model").String() != "cfg-model" || parsed.Get("temperature").Float() != 0.1 {
		t.Errorf("expected config defaults in body: %s", body)
	}
	if parsed.Get("messages.0.role").String() != "system" || parsed.Get("messages.0.content").String() != "be brief" {
		t.Errorf("expected configured system message first: %s", body)
	}
}

func TestNewFromConfig_InvalidConfig(t *testing.T) {
	_, err := NewFromConfig(&config.Config{BaseURL: config.DefaultBaseURL})
	if !errors.Is(err, config.ErrMissingAPIKey) || !errors.Is(err, config.ErrMissingModel) {
		t.Errorf("expected validation errors, got %v", err)
	}
}

// transportFunc serves Do with a function; Stream is unsupported.
type transportFunc func(ctx context.Context, request transport.Request) (*transport.Response, error)

func (f transportFunc) Do(ctx context.Context, request transport.Request) (*transport.Response, error) {
	return f(ctx, request)
}

func (f transportFunc) Stream(context.Context, transport.Request) (*transport.StreamResponse, error) {
	return nil, errors.New("streaming not supported")
}
