package sse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
)

// Parser is a push-stream SSE decoder with byte-count backpressure.
//
// Every byte accepted by Write is accounted against the queue until the
// event it belongs to has been delivered. Write is rejected while the queue
// is at or above its maximum size. The parser is meant to be fed by a
// single goroutine; the query methods may be called from the callbacks.
type Parser struct {
	mu       sync.Mutex
	state    State
	queued   int
	maxSize  int
	ended    bool
	events   int
	handlers []error
	drained  chan struct{}

	onEvent func(data string) error
	onEnd   func()
	onDrain func()
	onError func(error)
	logger  *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithWriteQueueMaxSize sets the initial queue capacity in bytes.
func WithWriteQueueMaxSize(n int) Option {
	return func(p *Parser) {
		p.maxSize = n
	}
}

// WithLogger sets the logger used for dropped lines and handler failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser returns a Parser that calls onEvent once per non-empty event and
// onEnd once when End is first called. Either callback may be nil.
func NewParser(onEvent func(data string) error, onEnd func(), opts ...Option) *Parser {
	p := &Parser{
		maxSize: math.MaxInt,
		onEvent: onEvent,
		onEnd:   onEnd,
		logger:  slog.Default(),
		drained: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Write accepts one chunk of the stream without blocking. It returns
// ErrWriteQueueFull without touching any state when the queue is full, and
// ErrClosed after End.
// Events completed by the chunk are delivered before Write returns.
func (p *Parser) Write(chunk []byte) error {
	p.mu.Lock()
	if p.ended {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.queued >= p.maxSize {
		p.mu.Unlock()
		return ErrWriteQueueFull
	}
	p.queued += len(chunk)
	var blocks []Block
	p.state, blocks = Decode(p.state, chunk)
	p.mu.Unlock()

	for _, block := range blocks {
		p.deliver(block)
	}
	p.drainIfReady()
	return nil
}

// Push writes chunk, waiting while the queue is full until a drain or ctx
// is done. Capacity is only released by Write and SetWriteQueueMaxSize, so
// Push is useful when another goroutine feeds or resizes the parser.
func (p *Parser) Push(ctx context.Context, chunk []byte) error {
	for {
		err := p.Write(chunk)
		if !errors.Is(err, ErrWriteQueueFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.drained:
		}
	}
}

// End flushes the unterminated event, if any, and calls the end callback.
// Only the first call has an effect.
func (p *Parser) End() error {
	p.mu.Lock()
	if p.ended {
		p.mu.Unlock()
		return nil
	}
	p.ended = true
	var (
		block Block
		ok    bool
	)
	p.state, block, ok = Flush(p.state)
	p.mu.Unlock()

	if ok {
		p.deliver(block)
	}
	if p.onEnd != nil {
		p.safeCall("", func() error {
			p.onEnd()
			return nil
		})
	}
	return nil
}

// SetWriteQueueMaxSize changes the queue capacity in bytes.
func (p *Parser) SetWriteQueueMaxSize(n int) {
	p.mu.Lock()
	p.maxSize = n
	p.mu.Unlock()
	p.drainIfReady()
}

// WriteQueueMaxSize returns the queue capacity in bytes.
func (p *Parser) WriteQueueMaxSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxSize
}

// WriteQueueFull reports whether the queue is at or above its capacity.
func (p *Parser) WriteQueueFull() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queued >= p.maxSize
}

// QueueSize returns the number of accepted bytes not yet released.
func (p *Parser) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queued
}

// OnDrain sets the callback fired whenever the queue has capacity after a
// write or an event delivery.
func (p *Parser) OnDrain(fn func()) {
	p.mu.Lock()
	p.onDrain = fn
	p.mu.Unlock()
}

// OnError sets the callback receiving failures of the event and end
// callbacks.
func (p *Parser) OnError(fn func(error)) {
	p.mu.Lock()
	p.onError = fn
	p.mu.Unlock()
}

// Done reports whether the data: [DONE] terminator was seen.
func (p *Parser) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Done()
}

// Ended reports whether End has been called.
func (p *Parser) Ended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ended
}

// Events returns the number of events delivered so far.
func (p *Parser) Events() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events
}

// Err returns every callback failure joined, or nil.
func (p *Parser) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.handlers...)
}

func (p *Parser) deliver(block Block) {
	if block.Data != "" {
		p.mu.Lock()
		p.events++
		p.mu.Unlock()

		if p.onEvent != nil {
			p.safeCall(block.Data, func() error {
				return p.onEvent(block.Data)
			})
		}
	}

	p.mu.Lock()
	p.queued = max(p.queued-block.Size, 0)
	p.mu.Unlock()
	p.drainIfReady()
}

func (p *Parser) drainIfReady() {
	p.mu.Lock()
	full := p.queued >= p.maxSize
	drain := p.onDrain
	p.mu.Unlock()

	if full {
		return
	}
	select {
	case p.drained <- struct{}{}:
	default:
	}
	if drain != nil {
		drain()
	}
}

// safeCall runs fn, turning a returned error or a panic into a HandlerError
// that is logged, recorded and passed to the error callback.
func (p *Parser) safeCall(event string, fn func() error) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()
	if err == nil {
		return
	}

	handlerErr := &HandlerError{Event: event, Err: err}
	p.logger.Warn("sse handler failed", "error", err.Error(), "event_size", len(event))

	p.mu.Lock()
	p.handlers = append(p.handlers, handlerErr)
	onError := p.onError
	p.mu.Unlock()

	if onError != nil {
		onError(handlerErr)
	}
}
