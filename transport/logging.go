package transport

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/leofalp/openchat/internal/utils"
)

// LogLevel controls how much detail the logging middleware emits per call.
type LogLevel int

const (
	// LogLevelMinimal logs only the model, the path and the duration.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds body sizes and the message count.
	LogLevelStandard

	// LogLevelVerbose adds the request and response bodies, each truncated
	// to 500 characters.
	//
	// WARNING: DO NOT use LogLevelVerbose in production. It logs raw prompt
	// and response text, which may contain sensitive user data.
	LogLevelVerbose
)

// truncateLen is the maximum body length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware emits structured slog entries before and after every
// call. For streams the completion entry is written when the body is closed,
// with the number of bytes read.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return Middleware{
		Do:     buildDoLogging(logger, level),
		Stream: buildStreamLogging(logger, level),
	}
}

func buildDoLogging(logger *slog.Logger, level LogLevel) func(DoFunc) DoFunc {
	return func(next DoFunc) DoFunc {
		return func(ctx context.Context, request Request) (*Response, error) {
			logger.InfoContext(ctx, "chat send", requestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "chat send failed",
					slog.String("model", model(request)),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			attrs := []any{
				slog.String("model", model(request)),
				slog.Duration("duration", elapsed),
			}
			if level >= LogLevelStandard {
				attrs = append(attrs,
					slog.Int("response_size", len(response.Body)),
					slog.String("finish_reason", gjson.GetBytes(response.Body, "choices.0.finish_reason").String()),
				)
			}
			if level >= LogLevelVerbose {
				attrs = append(attrs, slog.String("response", utils.TruncateString(string(response.Body), truncateLen)))
			}
			logger.InfoContext(ctx, "chat send completed", attrs...)

			return response, nil
		}
	}
}

func buildStreamLogging(logger *slog.Logger, level LogLevel) func(StreamFunc) StreamFunc {
	return func(next StreamFunc) StreamFunc {
		return func(ctx context.Context, request Request) (*StreamResponse, error) {
			logger.InfoContext(ctx, "chat stream", requestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			if err != nil {
				logger.ErrorContext(ctx, "chat stream failed",
					slog.String("model", model(request)),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			response.Body = &loggingBody{
				ReadCloser: response.Body,
				onClose: func(read int64, readErr error) {
					attrs := []any{
						slog.String("model", model(request)),
						slog.Duration("duration", time.Since(start)),
						slog.Int64("bytes_read", read),
					}
					if readErr != nil {
						attrs = append(attrs, slog.String("error", readErr.Error()))
						logger.ErrorContext(ctx, "chat stream failed", attrs...)
						return
					}
					logger.InfoContext(ctx, "chat stream completed", attrs...)
				},
			}
			return response, nil
		}
	}
}

// loggingBody counts bytes and reports once, on the first Close.
type loggingBody struct {
	io.ReadCloser
	read    int64
	readErr error
	once    sync.Once
	onClose func(read int64, readErr error)
}

func (b *loggingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.read += int64(n)
	if err != nil && err != io.EOF && b.readErr == nil {
		b.readErr = err
	}
	return n, err
}

func (b *loggingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() { b.onClose(b.read, b.readErr) })
	return err
}

func requestAttrs(request Request, level LogLevel) []any {
	attrs := []any{
		slog.String("model", model(request)),
		slog.String("path", request.Path),
	}
	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.Int("request_size", len(request.Body)),
			slog.Int64("message_count", gjson.GetBytes(request.Body, "messages.#").Int()),
		)
	}
	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("request", utils.TruncateString(string(request.Body), truncateLen)))
	}
	return attrs
}

func model(request Request) string {
	return gjson.GetBytes(request.Body, "model").String()
}
