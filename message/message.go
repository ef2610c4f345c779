package message

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown message role %q", s)
	}
	return role, nil
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message is one conversational turn.
type Message interface {
	Content() string
	Role() Role
}

// Wire is the JSON shape of a message in a request body.
type Wire struct {
	Content string `json:"content"`
	Role    Role   `json:"role"`
}

// ToWire converts m to its wire shape.
func ToWire(m Message) Wire {
	return Wire{Content: m.Content(), Role: m.Role()}
}

// ToWireList converts messages in order.
func ToWireList(messages []Message) []Wire {
	out := make([]Wire, 0, len(messages))
	for _, m := range messages {
		out = append(out, ToWire(m))
	}
	return out
}

// Marshal returns the wire JSON of m.
func Marshal(m Message) ([]byte, error) {
	return json.Marshal(ToWire(m))
}

// User is a message typed by the end user.
type User string

func (u User) Content() string { return string(u) }
func (u User) Role() Role      { return RoleUser }

// System configures the assistant for a whole session.
type System string

func (s System) Content() string { return string(s) }
func (s System) Role() Role      { return RoleSystem }

// Simple carries only content and role. Assistant replies are stored in
// history in this form.
type Simple struct {
	content string
	role    Role
}

// NewSimple returns a Simple message.
func NewSimple(content string, role Role) Simple {
	return Simple{content: content, role: role}
}

func (s Simple) Content() string { return s.content }
func (s Simple) Role() Role      { return s.role }

// Open is a message of any role, typically decoded from wire JSON.
type Open struct {
	content string
	role    Role
}

// New returns an Open message. It panics on an unknown role; use
// [ParseRole] first for untrusted input.
func New(role Role, content string) Open {
	if !role.Valid() {
		panic(fmt.Sprintf("message: unknown role %q", role))
	}
	return Open{content: content, role: role}
}

// FromJSON decodes a {"content","role"} object.
func FromJSON(data []byte) (Open, error) {
	if !gjson.ValidBytes(data) {
		return Open{}, &DecodeError{Payload: truncate(string(data)), Err: ErrMalformedPayload}
	}
	parsed := gjson.ParseBytes(data)
	role, err := ParseRole(parsed.Get("role").String())
	if err != nil {
		return Open{}, &DecodeError{Payload: truncate(string(data)), Err: err}
	}
	return Open{content: parsed.Get("content").String(), role: role}, nil
}

func (o Open) Content() string { return o.content }
func (o Open) Role() Role      { return o.role }
