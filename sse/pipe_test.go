package sse

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestPipe_ReadsUntilEOFAndEnds(t *testing.T) {
	p, rec := newRecordingParser()
	body := strings.Repeat("data: chunk\n\n", 1000) + "data: [DONE]\n\n"

	if err := Pipe(context.Background(), strings.NewReader(body), p); err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	if len(rec.events) != 1000 {
		t.Errorf("expected 1000 events, got %d", len(rec.events))
	}
	if rec.ends != 1 || !p.Ended() || !p.Done() {
		t.Errorf("expected ended stream with terminator: ends=%d ended=%v done=%v", rec.ends, p.Ended(), p.Done())
	}
}

func TestPipe_OneByteReads(t *testing.T) {
	p, rec := newRecordingParser()
	reader := iotest.OneByteReader(strings.NewReader("data: a\n\ndata: b\n\n"))

	if err := Pipe(context.Background(), reader, p); err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	if !reflect.DeepEqual(rec.events, []string{"a", "b"}) {
		t.Errorf("events = %q", rec.events)
	}
}

func TestPipe_ReadErrorDoesNotEnd(t *testing.T) {
	p, rec := newRecordingParser()
	reader := io.MultiReader(strings.NewReader("data: a\n\ndata: partial"), iotest.ErrReader(errors.New("connection reset")))

	err := Pipe(context.Background(), reader, p)
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected read error, got %v", err)
	}
	if rec.ends != 0 || p.Ended() {
		t.Error("End must not be called after a read error")
	}
	if !reflect.DeepEqual(rec.events, []string{"a"}) {
		t.Errorf("events = %q", rec.events)
	}
}

func TestPipe_CancelledContext(t *testing.T) {
	p, rec := newRecordingParser()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Pipe(ctx, strings.NewReader("data: a\n\n"), p)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.ends != 0 || len(rec.events) != 0 {
		t.Errorf("expected nothing delivered, got events=%q ends=%d", rec.events, rec.ends)
	}
}

func TestPipe_EventLargerThanCapacity(t *testing.T) {
	p, _ := newRecordingParser(WithWriteQueueMaxSize(8))
	reader := iotest.OneByteReader(strings.NewReader("data: this event never fits\n\n"))

	err := Pipe(context.Background(), reader, p)

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CapacityError, got %v", err)
	}
	if capErr.Capacity != 8 || capErr.Queued < 8 {
		t.Errorf("unexpected capacity error %+v", capErr)
	}
	if !errors.Is(err, ErrWriteQueueFull) {
		t.Error("CapacityError must unwrap to ErrWriteQueueFull")
	}
}

func TestPipe_SmallEventsFitSmallCapacity(t *testing.T) {
	p, rec := newRecordingParser(WithWriteQueueMaxSize(16))
	reader := iotest.OneByteReader(strings.NewReader("data: a\n\ndata: b\n\ndata: c\n\n"))

	if err := Pipe(context.Background(), reader, p); err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	if !reflect.DeepEqual(rec.events, []string{"a", "b", "c"}) {
		t.Errorf("events = %q", rec.events)
	}
}
