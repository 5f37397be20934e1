package chat

import (
	"encoding/json"
	"fmt"
)

// Model identifies a chat model supported by the endpoint.
type Model string

// Supported models.
const (
	// GPT35Turbo is the rolling gpt-3.5-turbo model.
	GPT35Turbo Model = "gpt-3.5-turbo"

	// GPT35Turbo0301 is the 2023-03-01 snapshot of gpt-3.5-turbo.
	GPT35Turbo0301 Model = "gpt-3.5-turbo-0301"
)

// Models returns every supported model in declaration order.
func Models() []Model {
	return []Model{GPT35Turbo, GPT35Turbo0301}
}

// ParseModel returns the Model with the given wire name.
func ParseModel(name string) (Model, error) {
	m := Model(name)
	if !m.Valid() {
		return "", fmt.Errorf("unknown model %q", name)
	}
	return m, nil
}

// Valid reports whether m is one of the supported models.
func (m Model) Valid() bool {
	switch m {
	case GPT35Turbo, GPT35Turbo0301:
		return true
	}
	return false
}

// String returns the wire name of the model.
func (m Model) String() string {
	return string(m)
}

// MarshalText implements encoding.TextMarshaler.
func (m Model) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown model %q", string(m))
	}
	return []byte(m), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Model) UnmarshalText(text []byte) error {
	parsed, err := ParseModel(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole returns the Role with the given wire name.
func ParseRole(name string) (Role, error) {
	r := Role(name)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", name)
	}
	return r, nil
}

// Valid reports whether r is system, user or assistant.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// String returns the wire name of the role.
func (r Role) String() string {
	return string(r)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown role %q", string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Message is a single turn of the conversation.
type Message struct {
	// Role identifies the message author
	Role Role `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// NewMessage returns a message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// UnmarshalJSON decodes a message and rejects documents missing either field.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire struct {
		Role    *Role   `json:"role"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Role == nil {
		return missingField("message.role")
	}
	if wire.Content == nil {
		return missingField("message.content")
	}
	*m = Message{Role: *wire.Role, Content: *wire.Content}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}
