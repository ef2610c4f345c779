// Package message models conversational turns exchanged with an
// OpenAI-compatible chat-completion endpoint.
//
// Every turn satisfies [Message] (content + role) and serialises to the
// {"content","role"} wire shape via [ToWire]. Plain variants are [User],
// [System], [Simple] and [Open]. Replies are [*Assistant], parsed from a raw
// completion or completion-chunk payload by [ParseAssistant]; streamed
// fragments are merged into one final reply by an [AssistantBuilder].
package message
