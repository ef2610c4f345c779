package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/openchat/internal/utils"
	"github.com/leofalp/openchat/message"
	"github.com/leofalp/openchat/providers/observability"
	"github.com/leofalp/openchat/sse"
	"github.com/leofalp/openchat/transport"
)

// stream pipes the response body through an SSE parser, decoding every event
// into a fragment that feeds both the handler and the builder. Fragments
// are delivered synchronously, so the handler has seen the last one before
// this returns.
func (r *Request) stream(ctx context.Context, span observability.Span, body []byte, handler FragmentHandler) (*message.Assistant, error) {
	s := r.session
	response, err := s.transport.Stream(ctx, transport.Request{Path: s.path, APIKey: s.apiKey, Body: body})
	if err != nil {
		return nil, err
	}
	defer utils.CloseWithLog(response.Body)

	builder := message.NewAssistantBuilder()

	opts := []sse.Option{sse.WithLogger(s.logger)}
	if s.queueMaxSize > 0 {
		opts = append(opts, sse.WithWriteQueueMaxSize(s.queueMaxSize))
	}

	parser := sse.NewParser(func(data string) error {
		fragment, err := message.ParseAssistant([]byte(data))
		if err != nil {
			if usage, ok := usageChunk(data); ok {
				r.mu.Lock()
				r.streamUsage = &usage
				r.mu.Unlock()
				return nil
			}
			r.recordDecodeError(ctx, span, data, err)
			return nil
		}

		if err := builder.Add(fragment); err != nil {
			return err
		}
		span.AddEvent(observability.EventSSEFragment,
			observability.Bool(observability.AttrSSEReasoning, fragment.IsReasoning()),
		)
		s.observer.Counter(observability.MetricSSEFragments).Add(ctx, 1)

		handler(fragment)
		return nil
	}, nil, opts...)

	parser.OnError(func(err error) {
		span.RecordError(err)
		r.mu.Lock()
		r.handlerErrors = append(r.handlerErrors, err)
		r.mu.Unlock()
	})

	if err := sse.Pipe(ctx, response.Body, parser); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	decodeErrors := r.DecodeErrors()
	span.SetAttributes(
		observability.Int(observability.AttrSSEFragments, builder.Fragments()),
		observability.Int(observability.AttrSSEDecodeErrors, len(decodeErrors)),
		observability.Bool(observability.AttrSSEDone, parser.Done()),
	)

	if builder.Fragments() == 0 && len(decodeErrors) > 0 {
		return nil, decodeErrors[0]
	}

	final, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("finalize stream: %w", err)
	}

	if !parser.Done() && !s.allowTruncated {
		return final, &TruncatedStreamError{Partial: final, Fragments: builder.Fragments()}
	}
	return final, nil
}

func (r *Request) takeStreamUsage() *Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	usage := r.streamUsage
	r.streamUsage = nil
	return usage
}

func (r *Request) recordDecodeError(ctx context.Context, span observability.Span, data string, err error) {
	var decodeErr *message.DecodeError
	if !errors.As(err, &decodeErr) {
		decodeErr = &message.DecodeError{Payload: utils.TruncateString(data, 200), Err: err}
	}

	r.mu.Lock()
	r.decodeErrors = append(r.decodeErrors, decodeErr)
	r.mu.Unlock()

	s := r.session
	span.AddEvent(observability.EventSSEDecodeError, observability.Error(decodeErr))
	s.observer.Counter(observability.MetricSSEDecodeErrors).Add(ctx, 1)
	s.observer.Warn(ctx, "skipping undecodable stream fragment",
		observability.String(observability.AttrRequestID, r.id),
		observability.Error(decodeErr),
	)
}
