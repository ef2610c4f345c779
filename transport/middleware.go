package transport

import "context"

// DoFunc is the function threaded through the Do middleware chain.
type DoFunc func(ctx context.Context, request Request) (*Response, error)

// StreamFunc is the function threaded through the Stream middleware chain.
type StreamFunc func(ctx context.Context, request Request) (*StreamResponse, error)

// Middleware pairs a Do interceptor with an optional Stream interceptor.
// A nil field means that operation bypasses this middleware.
type Middleware struct {
	Do     func(next DoFunc) DoFunc
	Stream func(next StreamFunc) StreamFunc
}

// Wrap returns a Transport that runs every call through middlewares, the
// first one outermost.
func Wrap(base Transport, middlewares ...Middleware) Transport {
	if len(middlewares) == 0 {
		return base
	}

	do := DoFunc(base.Do)
	stream := StreamFunc(base.Stream)
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i].Do != nil {
			do = middlewares[i].Do(do)
		}
		if middlewares[i].Stream != nil {
			stream = middlewares[i].Stream(stream)
		}
	}
	return chain{do: do, stream: stream}
}

type chain struct {
	do     DoFunc
	stream StreamFunc
}

func (c chain) Do(ctx context.Context, request Request) (*Response, error) {
	return c.do(ctx, request)
}

func (c chain) Stream(ctx context.Context, request Request) (*StreamResponse, error) {
	return c.stream(ctx, request)
}
