package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTP_Do_PostsToPathWithBearer(t *testing.T) {
	var gotPath, gotAuth, gotBody, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotHeader = r.Header.Get("X-Org")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	transport := NewHTTP(server.URL+"/", WithHTTPClient(server.Client()), WithHeader("X-Org", "acme"))
	response, err := transport.Do(context.Background(), Request{
		Path:   "/v1/chat/completions",
		APIKey: "sk-test",
		Body:   []byte(`{"model":"m","messages":[]}`),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if gotPath != "/v1/chat/completions" {
		t.Errorf("expected chat path, got %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if gotHeader != "acme" {
		t.Errorf("expected extra header, got %q", gotHeader)
	}
	if gotBody != `{"model":"m","messages":[]}` {
		t.Errorf("expected body sent verbatim, got %q", gotBody)
	}
	if string(response.Body) != `{"choices":[{"message":{"content":"ok"}}]}` {
		t.Errorf("unexpected response body %s", response.Body)
	}
}

func TestHTTP_URLJoining(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"https://api.example.com", "/v1/chat", "https://api.example.com/v1/chat"},
		{"https://api.example.com/", "v1/chat", "https://api.example.com/v1/chat"},
		{"http://localhost:8080", "", "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := NewHTTP(tt.base).url(tt.path); got != tt.want {
				t.Errorf("url(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
			}
		})
	}
}

func TestHTTP_Do_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad model"}}`)
	}))
	defer server.Close()

	_, err := NewHTTP(server.URL, WithHTTPClient(server.Client())).Do(context.Background(), Request{Body: []byte(`{}`)})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", statusErr.StatusCode)
	}
}

func TestHTTP_Stream_ReturnsOpenBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {}\n\ndata: [DONE]\n\n")
	}))
	defer server.Close()

	response, err := NewHTTP(server.URL, WithHTTPClient(server.Client())).Stream(context.Background(), Request{Body: []byte(`{"stream":true}`)})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer response.Body.Close()

	body, _ := io.ReadAll(response.Body)
	if string(body) != "data: {}\n\ndata: [DONE]\n\n" {
		t.Errorf("unexpected stream body %q", body)
	}
}

func TestHTTP_Stream_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewHTTP(server.URL, WithHTTPClient(server.Client())).Stream(context.Background(), Request{Body: []byte(`{}`)})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
}
