// Package obstest provides an in-memory observability.Provider for tests.
package obstest

import (
	"context"
	"sync"

	"github.com/leofalp/openchat/providers/observability"
)

// Recorder captures spans, metric values and log messages.
type Recorder struct {
	mu       sync.Mutex
	Spans    []*Span
	Counters map[string]int64
	Values   map[string][]float64
	Logs     []string
}

// Span is a recorded span.
type Span struct {
	mu     sync.Mutex
	Name   string
	Attrs  []observability.Attribute
	Events []string
	Status observability.StatusCode
	Errors []error
	Ended  bool
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{
		Counters: map[string]int64{},
		Values:   map[string][]float64{},
	}
}

var _ observability.Provider = (*Recorder)(nil)

func (r *Recorder) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &Span{Name: name, Attrs: attrs}
	r.mu.Lock()
	r.Spans = append(r.Spans, span)
	r.mu.Unlock()
	return ctx, span
}

// Counter returns a counter writing into r.Counters.
func (r *Recorder) Counter(name string) observability.Counter {
	return counter{recorder: r, name: name}
}

// Histogram returns a histogram writing into r.Values.
func (r *Recorder) Histogram(name string) observability.Histogram {
	return histogram{recorder: r, name: name}
}

func (r *Recorder) Trace(_ context.Context, msg string, _ ...observability.Attribute) { r.log(msg) }
func (r *Recorder) Debug(_ context.Context, msg string, _ ...observability.Attribute) { r.log(msg) }
func (r *Recorder) Info(_ context.Context, msg string, _ ...observability.Attribute)  { r.log(msg) }
func (r *Recorder) Warn(_ context.Context, msg string, _ ...observability.Attribute)  { r.log(msg) }
func (r *Recorder) Error(_ context.Context, msg string, _ ...observability.Attribute) { r.log(msg) }

func (r *Recorder) log(msg string) {
	r.mu.Lock()
	r.Logs = append(r.Logs, msg)
	r.mu.Unlock()
}

// CounterValue returns the current value of the named counter.
func (r *Recorder) CounterValue(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Counters[name]
}

// LastSpan returns the most recently started span, or nil.
func (r *Recorder) LastSpan() *Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Spans) == 0 {
		return nil
	}
	return r.Spans[len(r.Spans)-1]
}

func (s *Span) End() {
	s.mu.Lock()
	s.Ended = true
	s.mu.Unlock()
}

func (s *Span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	s.Attrs = append(s.Attrs, attrs...)
	s.mu.Unlock()
}

func (s *Span) SetStatus(code observability.StatusCode, _ string) {
	s.mu.Lock()
	s.Status = code
	s.mu.Unlock()
}

func (s *Span) RecordError(err error) {
	s.mu.Lock()
	s.Errors = append(s.Errors, err)
	s.mu.Unlock()
}

func (s *Span) AddEvent(name string, _ ...observability.Attribute) {
	s.mu.Lock()
	s.Events = append(s.Events, name)
	s.mu.Unlock()
}

// HasEvent reports whether an event with the given name was added.
func (s *Span) HasEvent(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range s.Events {
		if event == name {
			return true
		}
	}
	return false
}

type counter struct {
	recorder *Recorder
	name     string
}

func (c counter) Add(_ context.Context, value int64, _ ...observability.Attribute) {
	c.recorder.mu.Lock()
	c.recorder.Counters[c.name] += value
	c.recorder.mu.Unlock()
}

type histogram struct {
	recorder *Recorder
	name     string
}

func (h histogram) Record(_ context.Context, value float64, _ ...observability.Attribute) {
	h.recorder.mu.Lock()
	h.recorder.Values[h.name] = append(h.recorder.Values[h.name], value)
	h.recorder.mu.Unlock()
}
