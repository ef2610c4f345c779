package session

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/leofalp/openchat/internal/utils"
	"github.com/leofalp/openchat/message"
	"github.com/leofalp/openchat/providers/observability"
	"github.com/leofalp/openchat/transport"
)

// State is the lifecycle stage of a Request.
type State int

const (
	StateBuilding State = iota
	StateDispatched
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateDispatched:
		return "dispatched"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FragmentHandler receives every decoded fragment of a streaming call, in
// arrival order, before Send returns. A panicking handler does not abort
// the stream; the failure is reported by [Request.HandlerErrors].
type FragmentHandler func(fragment *message.Assistant)

// Request is one call on a Session. Build it with the chaining methods, then
// call Send exactly once. Building methods have no effect after Send.
type Request struct {
	session *Session
	id      string

	mu            sync.Mutex
	state         State
	messages      []message.Message
	temporary     bool
	handler       FragmentHandler
	decodeErrors  []*message.DecodeError
	handlerErrors []error
	streamUsage   *Usage
	usage         *Usage
}

// ID returns the request identifier used in logs and spans.
func (r *Request) ID() string {
	return r.id
}

// State returns the current lifecycle stage.
func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Temporary excludes this call from history.
func (r *Request) Temporary() *Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateBuilding {
		r.temporary = true
	}
	return r
}

// AddMessage appends one message to the call. Nil messages are ignored.
func (r *Request) AddMessage(m message.Message) *Request {
	return r.AddMessages(m)
}

// AddMessages appends messages to the call in order.
func (r *Request) AddMessages(messages ...message.Message) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateBuilding {
		return r
	}
	for _, m := range messages {
		if m != nil {
			r.messages = append(r.messages, m)
		}
	}
	return r
}

// AddText appends a user message.
func (r *Request) AddText(content string) *Request {
	return r.AddMessage(message.User(content))
}

// Stream makes the call streaming; handler receives every fragment.
// A nil handler still streams, without per-fragment callbacks.
func (r *Request) Stream(handler FragmentHandler) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateBuilding {
		return r
	}
	if handler == nil {
		handler = func(*message.Assistant) {}
	}
	r.handler = handler
	return r
}

// DecodeErrors returns the stream fragments that could not be decoded and
// were skipped.
func (r *Request) DecodeErrors() []*message.DecodeError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.decodeErrors)
}

// HandlerErrors returns the failures raised by the fragment handler.
func (r *Request) HandlerErrors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.handlerErrors)
}

// Usage returns the token usage reported for this call, taken from the
// reply or, for streams, from the trailing usage chunk.
func (r *Request) Usage() (Usage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usage == nil {
		return Usage{}, false
	}
	return *r.usage, true
}

// Send dispatches the call and returns the reply.
//
// It fails with ErrNoMessages before any I/O when no message was added, and
// with ErrAlreadySent on a second call. On success of a non-temporary call,
// the call's messages and the simplified reply are appended to history as
// one batch. A stream that ends without [DONE] returns the partial reply
// together with a *TruncatedStreamError unless the session allows it.
func (r *Request) Send(ctx context.Context) (*message.Assistant, error) {
	r.mu.Lock()
	if r.state != StateBuilding {
		r.mu.Unlock()
		return nil, ErrAlreadySent
	}
	if len(r.messages) == 0 {
		r.mu.Unlock()
		return nil, ErrNoMessages
	}
	r.state = StateDispatched
	messages := slices.Clone(r.messages)
	temporary := r.temporary
	handler := r.handler
	r.mu.Unlock()

	s := r.session
	streaming := handler != nil
	config, system := s.snapshot()

	spanName := observability.SpanSessionSend
	if streaming {
		spanName = observability.SpanSessionStream
	}
	ctx, span := s.observer.StartSpan(ctx, spanName,
		observability.String(observability.AttrSessionID, s.id),
		observability.String(observability.AttrRequestID, r.id),
		observability.String(observability.AttrLLMModel, config.Model()),
		observability.String(observability.AttrLLMEndpoint, s.path),
		observability.Bool(observability.AttrRequestStreaming, streaming),
		observability.Bool(observability.AttrRequestTemporary, temporary),
	)
	defer span.End()
	ctx = observability.ContextWithSpan(ctx, span)
	ctx = observability.ContextWithObserver(ctx, s.observer)

	timer := utils.NewTimer()

	body, err := buildBody(config, system, messages, streaming)
	if err != nil {
		return nil, r.fail(ctx, span, timer, config.Model(), err)
	}

	s.observer.Debug(ctx, "chat request dispatched",
		observability.String(observability.AttrRequestID, r.id),
		observability.Int(observability.AttrRequestMessagesCount, len(messages)),
		observability.Bool(observability.AttrRequestStreaming, streaming),
	)

	var reply *message.Assistant
	if streaming {
		reply, err = r.stream(ctx, span, body, handler)
	} else {
		reply, err = r.do(ctx, body)
	}
	if err != nil {
		return reply, r.fail(ctx, span, timer, config.Model(), err)
	}

	if !temporary {
		batch := append(messages, reply.Simple())
		if err := s.history.AppendMessages(ctx, batch...); err != nil {
			return reply, r.fail(ctx, span, timer, config.Model(), fmt.Errorf("%w: %w", ErrHistoryAppend, err))
		}
	}

	if usage, ok := UsageOf(reply); ok {
		r.recordUsage(ctx, span, usage)
	} else if usage := r.takeStreamUsage(); usage != nil {
		r.recordUsage(ctx, span, *usage)
	}

	r.complete(ctx, span, timer, config.Model(), reply)
	return reply, nil
}

func (r *Request) do(ctx context.Context, body []byte) (*message.Assistant, error) {
	s := r.session
	response, err := s.transport.Do(ctx, transport.Request{Path: s.path, APIKey: s.apiKey, Body: body})
	if err != nil {
		return nil, err
	}
	return message.ParseAssistant(response.Body)
}

// buildBody merges the config snapshot with the call's messages, preceded by
// the system message. "stream" is forced to match the call mode.
func buildBody(config Config, system *message.System, messages []message.Message, streaming bool) ([]byte, error) {
	wire := make([]message.Message, 0, len(messages)+1)
	if system != nil {
		wire = append(wire, *system)
	}
	wire = append(wire, messages...)

	body := config
	body["messages"] = message.ToWireList(wire)
	if streaming {
		body["stream"] = true
	} else {
		delete(body, "stream")
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return encoded, nil
}

func (r *Request) fail(ctx context.Context, span observability.Span, timer *utils.Timer, model string, err error) error {
	timer.Stop()
	r.mu.Lock()
	r.state = StateFailed
	r.mu.Unlock()

	s := r.session
	span.RecordError(err)
	span.SetStatus(observability.StatusError, "chat request failed")

	s.observer.Error(ctx, "chat request failed",
		observability.String(observability.AttrRequestID, r.id),
		observability.String(observability.AttrLLMModel, model),
		observability.Duration(observability.AttrDuration, timer.GetDuration()),
		observability.Error(err),
	)
	s.observer.Counter(observability.MetricSessionRequests).Add(ctx, 1,
		observability.String(observability.AttrStatus, "error"),
		observability.String(observability.AttrLLMModel, model),
	)
	s.observer.Histogram(observability.MetricSessionDuration).Record(ctx, timer.Milliseconds(),
		observability.String(observability.AttrStatus, "error"),
	)
	return err
}

func (r *Request) complete(ctx context.Context, span observability.Span, timer *utils.Timer, model string, reply *message.Assistant) {
	timer.Stop()
	r.mu.Lock()
	r.state = StateCompleted
	r.mu.Unlock()

	s := r.session
	span.SetAttributes(
		observability.Int(observability.AttrResponseContentLength, len(reply.Content())),
		observability.String(observability.AttrResponseContent, utils.TruncateString(reply.Content(), utils.DefaultMaxStringLength)),
	)
	span.SetStatus(observability.StatusOK, "")

	s.observer.Info(ctx, "chat request completed",
		observability.String(observability.AttrRequestID, r.id),
		observability.String(observability.AttrLLMModel, model),
		observability.Duration(observability.AttrDuration, timer.GetDuration()),
		observability.Int(observability.AttrResponseContentLength, len(reply.Content())),
	)
	s.observer.Counter(observability.MetricSessionRequests).Add(ctx, 1,
		observability.String(observability.AttrStatus, "ok"),
		observability.String(observability.AttrLLMModel, model),
	)
	s.observer.Histogram(observability.MetricSessionDuration).Record(ctx, timer.Milliseconds(),
		observability.String(observability.AttrStatus, "ok"),
	)
}
