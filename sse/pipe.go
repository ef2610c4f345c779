package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// readChunkSize is the buffer size used by Pipe for each read.
const readChunkSize = 4 * 1024

// Pipe reads r until EOF, writing every chunk to p, then calls p.End.
//
// A read error or a cancelled context stops the pipe and is returned without
// calling End, so the caller can tell a complete stream from an aborted one.
// A write rejected for capacity returns a *CapacityError.
func Pipe(ctx context.Context, r io.Reader, p *Parser) error {
	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			if err := p.Write(buf[:n]); err != nil {
				if errors.Is(err, ErrWriteQueueFull) {
					return &CapacityError{Queued: p.QueueSize(), Capacity: p.WriteQueueMaxSize()}
				}
				return err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return p.End()
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("sse: read stream: %w", readErr)
		}
	}
}
