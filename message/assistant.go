package message

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// Assistant is a reply, or one streamed fragment of a reply, from the
// model. It keeps the raw payload it was parsed from so fields this package
// does not model (id, usage, finish_reason...) stay reachable via [Assistant.Get].
//
// IsReasoning is true iff the payload carried no content (missing or null),
// which is how reasoning-only fragments arrive.
type Assistant struct {
	original     []byte
	content      string
	hasContent   bool
	reasoning    string
	hasReasoning bool
}

// ParseAssistant builds an Assistant from a chat completion or
// completion-chunk object. choices[0].message is read when present,
// otherwise choices[0].delta. Payloads that are not valid JSON get one
// repair attempt before failing with a *DecodeError.
func ParseAssistant(raw []byte) (*Assistant, error) {
	payload := raw
	if !gjson.ValidBytes(payload) {
		repaired, err := jsonrepair.JSONRepair(string(raw))
		if err != nil || !gjson.Valid(repaired) {
			return nil, &DecodeError{Payload: truncate(string(raw)), Err: fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)}
		}
		payload = []byte(repaired)
	}

	choice := gjson.GetBytes(payload, "choices.0")
	if !choice.IsObject() {
		return nil, &DecodeError{Payload: truncate(string(raw)), Err: fmt.Errorf("%w: missing choices[0]", ErrMalformedPayload)}
	}

	body := choice.Get("message")
	if !body.IsObject() {
		body = choice.Get("delta")
	}
	if !body.IsObject() {
		return nil, &DecodeError{Payload: truncate(string(raw)), Err: fmt.Errorf("%w: choices[0] has neither message nor delta", ErrMalformedPayload)}
	}

	message := &Assistant{original: bytes.Clone(payload)}

	if content := body.Get("content"); content.Exists() && content.Type != gjson.Null {
		message.content = content.String()
		message.hasContent = true
	}

	reasoning := body.Get("reasoning_content")
	if !reasoning.Exists() || reasoning.Type == gjson.Null {
		reasoning = body.Get("reasoning")
	}
	if reasoning.Exists() && reasoning.Type != gjson.Null {
		message.reasoning = reasoning.String()
		message.hasReasoning = true
	}

	return message, nil
}

// Original returns a copy of the payload the message was parsed from.
func (a *Assistant) Original() json.RawMessage {
	return bytes.Clone(a.original)
}

// Get reads an arbitrary path (gjson syntax) from the original payload,
// e.g. "id", "model" or "usage.total_tokens".
func (a *Assistant) Get(path string) gjson.Result {
	return gjson.GetBytes(a.original, path)
}

// Content returns the answer text, or "" when absent.
func (a *Assistant) Content() string { return a.content }

// HasContent reports whether the payload carried content.
func (a *Assistant) HasContent() bool { return a.hasContent }

// Reasoning returns the reasoning text, or "" when absent.
func (a *Assistant) Reasoning() string { return a.reasoning }

// HasReasoning reports whether the payload carried reasoning text.
func (a *Assistant) HasReasoning() bool { return a.hasReasoning }

// IsReasoning reports whether this is a reasoning-only fragment.
func (a *Assistant) IsReasoning() bool { return !a.hasContent }

func (a *Assistant) Role() Role { return RoleAssistant }

// FinishReason returns choices[0].finish_reason, or "".
func (a *Assistant) FinishReason() string {
	return a.Get("choices.0.finish_reason").String()
}

// Simple returns the history form of the reply.
func (a *Assistant) Simple() Simple {
	return NewSimple(a.content, RoleAssistant)
}
