package message

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// emptyTemplate stands in for the last fragment when a stream produced none.
var emptyTemplate = []byte(`{"object":"chat.completion","choices":[{"index":0}]}`)

// AssistantBuilder merges streamed fragments into one final reply.
//
// It owns the most recent fragment payload, used as the structural template
// of the result, and the answer and reasoning text accumulated so far.
// Reasoning fragments never contribute to the answer. Build consumes the
// builder; it is not safe for concurrent use.
type AssistantBuilder struct {
	template  []byte
	content   strings.Builder
	reasoning strings.Builder
	fragments int
	consumed  bool
}

// NewAssistantBuilder returns an empty builder.
func NewAssistantBuilder() *AssistantBuilder {
	return &AssistantBuilder{}
}

// Add merges one fragment.
func (b *AssistantBuilder) Add(fragment *Assistant) error {
	if b.consumed {
		return ErrBuilderConsumed
	}
	if fragment == nil {
		return nil
	}

	b.template = fragment.original
	b.fragments++
	if !fragment.IsReasoning() {
		b.content.WriteString(fragment.content)
	}
	if fragment.hasReasoning {
		b.reasoning.WriteString(fragment.reasoning)
	}
	return nil
}

// Fragments returns the number of fragments added so far.
func (b *AssistantBuilder) Fragments() int {
	return b.fragments
}

// Content returns the answer text accumulated so far, untrimmed.
func (b *AssistantBuilder) Content() string {
	return b.content.String()
}

// Build produces the final reply: the last fragment with choices reduced to
// choices[0], whose message holds the trimmed answer text (and the
// accumulated reasoning, when any was streamed). A builder with no fragments
// yields an empty answer.
func (b *AssistantBuilder) Build() (*Assistant, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	template := b.template
	if template == nil {
		template = emptyTemplate
	}

	choice := []byte(gjson.GetBytes(template, "choices.0").Raw)
	if len(choice) == 0 {
		choice = []byte(`{"index":0}`)
	}

	message := map[string]any{
		"role":    string(RoleAssistant),
		"content": strings.TrimSpace(b.content.String()),
	}
	if b.reasoning.Len() > 0 {
		message["reasoning_content"] = b.reasoning.String()
	}

	choice, err := sjson.SetBytes(choice, "message", message)
	if err != nil {
		return nil, fmt.Errorf("finalize assistant message: %w", err)
	}

	choices := make([]byte, 0, len(choice)+2)
	choices = append(choices, '[')
	choices = append(choices, choice...)
	choices = append(choices, ']')

	final, err := sjson.SetRawBytes(bytes.Clone(template), "choices", choices)
	if err != nil {
		return nil, fmt.Errorf("finalize assistant message: %w", err)
	}

	return ParseAssistant(final)
}
