package session

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/leofalp/openchat/message"
	"github.com/leofalp/openchat/providers/observability"
)

// Usage is the token usage reported by the endpoint.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
	ReasoningTokens  int64 `json:"reasoning_tokens,omitempty"`
	CachedTokens     int64 `json:"cached_tokens,omitempty"`
	// Requests is the number of calls the totals cover.
	Requests int `json:"requests"`
}

// UsageOf reads the "usage" object of a reply. It reports false when the
// endpoint sent none.
func UsageOf(reply *message.Assistant) (Usage, bool) {
	if reply == nil {
		return Usage{}, false
	}
	return parseUsage(reply.Get("usage"))
}

func parseUsage(usage gjson.Result) (Usage, bool) {
	if !usage.IsObject() {
		return Usage{}, false
	}
	return Usage{
		PromptTokens:     usage.Get("prompt_tokens").Int(),
		CompletionTokens: usage.Get("completion_tokens").Int(),
		TotalTokens:      usage.Get("total_tokens").Int(),
		ReasoningTokens:  usage.Get("completion_tokens_details.reasoning_tokens").Int(),
		CachedTokens:     usage.Get("prompt_tokens_details.cached_tokens").Int(),
		Requests:         1,
	}, true
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.ReasoningTokens += other.ReasoningTokens
	u.CachedTokens += other.CachedTokens
	u.Requests += other.Requests
}

// usageChunk reports whether data is the trailing usage-only chunk sent when
// stream_options.include_usage is set: an empty choices array plus usage.
func usageChunk(data string) (Usage, bool) {
	if !gjson.Valid(data) {
		return Usage{}, false
	}
	parsed := gjson.Parse(data)
	choices := parsed.Get("choices")
	if choices.Exists() && (!choices.IsArray() || len(choices.Array()) > 0) {
		return Usage{}, false
	}
	return parseUsage(parsed.Get("usage"))
}

func (r *Request) recordUsage(ctx context.Context, span observability.Span, usage Usage) {
	r.mu.Lock()
	r.usage = &usage
	r.mu.Unlock()

	s := r.session
	s.mu.Lock()
	s.usage.Add(usage)
	s.mu.Unlock()

	span.SetAttributes(
		observability.Int64(observability.AttrLLMTokensPrompt, usage.PromptTokens),
		observability.Int64(observability.AttrLLMTokensCompletion, usage.CompletionTokens),
		observability.Int64(observability.AttrLLMTokensTotal, usage.TotalTokens),
	)
	tokens := s.observer.Counter(observability.MetricSessionTokens)
	tokens.Add(ctx, usage.PromptTokens, observability.String(observability.AttrLLMTokensKind, "prompt"))
	tokens.Add(ctx, usage.CompletionTokens, observability.String(observability.AttrLLMTokensKind, "completion"))
}
