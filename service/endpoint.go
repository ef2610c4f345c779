package service

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidBaseURL = errors.New("service: invalid base URL")

// Endpoint is a base URL split into what the transport needs.
type Endpoint struct {
	Host string
	Port int
	TLS  bool
	// Path is the chat completions path, e.g. "/v1/chat/completions".
	Path string
}

// ResolveEndpoint parses baseURL. The scheme must be http or https; the
// port defaults to 443 with TLS and 80 without.
func ResolveEndpoint(baseURL string) (Endpoint, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	var e Endpoint
	switch strings.ToLower(u.Scheme) {
	case "https":
		e.TLS = true
	case "http":
	default:
		return Endpoint{}, fmt.Errorf("%w: unsupported scheme %q in %q", ErrInvalidBaseURL, u.Scheme, baseURL)
	}

	e.Host = u.Hostname()
	if e.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: missing host in %q", ErrInvalidBaseURL, baseURL)
	}

	if port := u.Port(); port != "" {
		e.Port, err = strconv.Atoi(port)
		if err != nil || e.Port <= 0 || e.Port > 65535 {
			return Endpoint{}, fmt.Errorf("%w: invalid port %q", ErrInvalidBaseURL, port)
		}
	} else if e.TLS {
		e.Port = 443
	} else {
		e.Port = 80
	}

	e.Path = u.EscapedPath()
	if e.Path == "" {
		e.Path = "/"
	}
	return e, nil
}

// Origin returns scheme://host[:port], omitting the port when it is the
// scheme default.
func (e Endpoint) Origin() string {
	scheme, defaultPort := "http", 80
	if e.TLS {
		scheme, defaultPort = "https", 443
	}

	host := e.Host
	if e.Port != defaultPort {
		host = net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host
}

// URL returns the full chat endpoint URL.
func (e Endpoint) URL() string {
	return e.Origin() + e.Path
}
