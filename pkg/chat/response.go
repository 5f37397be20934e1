package chat

import (
	"encoding/json"
	"fmt"
)

// Finish reasons reported by the API.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)

// Response is a chat completion reply. It is populated only by decoding and
// exposes read-only accessors.
type Response struct {
	id      string
	object  string
	created uint64
	choices []Choice
	usage   Usage
}

// Choice is one generated candidate reply.
type Choice struct {
	index        uint64
	message      Message
	finishReason string
}

// Usage reports token consumption for a request.
type Usage struct {
	promptTokens     uint16
	completionTokens uint16
	totalTokens      uint16
}

// ID returns the response identifier (e.g. "chatcmpl-123").
func (r *Response) ID() string { return r.id }

// Object returns the object type (e.g. "chat.completion").
func (r *Response) Object() string { return r.object }

// Created returns the creation time in Unix seconds.
func (r *Response) Created() uint64 { return r.created }

// Choices returns a copy of the generated choices in order.
func (r *Response) Choices() []Choice {
	out := make([]Choice, len(r.choices))
	copy(out, r.choices)
	return out
}

// Usage returns the token usage block.
func (r *Response) Usage() Usage { return r.usage }

// Content returns the message content of the first choice, or "" when the
// response carries no choices.
func (r *Response) Content() string {
	if len(r.choices) == 0 {
		return ""
	}
	return r.choices[0].message.Content
}

// TokenUsage returns the prompt and completion token counts.
func (r *Response) TokenUsage() (prompt, completion int) {
	return int(r.usage.promptTokens), int(r.usage.completionTokens)
}

// Index returns the position of the choice.
func (c Choice) Index() uint64 { return c.index }

// Message returns the generated message.
func (c Choice) Message() Message { return c.message }

// FinishReason returns why generation stopped (e.g. "stop", "length").
func (c Choice) FinishReason() string { return c.finishReason }

// PromptTokens returns the number of prompt tokens.
func (u Usage) PromptTokens() uint16 { return u.promptTokens }

// CompletionTokens returns the number of generated tokens.
func (u Usage) CompletionTokens() uint16 { return u.completionTokens }

// TotalTokens returns prompt plus completion tokens.
func (u Usage) TotalTokens() uint16 { return u.totalTokens }

type responseWire struct {
	ID      *string       `json:"id"`
	Object  *string       `json:"object"`
	Created *uint64       `json:"created"`
	Choices *[]choiceWire `json:"choices"`
	Usage   *usageWire    `json:"usage"`
}

type choiceWire struct {
	Index        *uint64  `json:"index"`
	Message      *Message `json:"message"`
	FinishReason *string  `json:"finish_reason"`
}

type usageWire struct {
	PromptTokens     *uint16 `json:"prompt_tokens"`
	CompletionTokens *uint16 `json:"completion_tokens"`
	TotalTokens      *uint16 `json:"total_tokens"`
}

// UnmarshalJSON decodes a response. A missing or null required field rejects
// the whole document; unknown fields are ignored.
func (r *Response) UnmarshalJSON(data []byte) error {
	var wire responseWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch {
	case wire.ID == nil:
		return missingField("id")
	case wire.Object == nil:
		return missingField("object")
	case wire.Created == nil:
		return missingField("created")
	case wire.Choices == nil:
		return missingField("choices")
	case wire.Usage == nil:
		return missingField("usage")
	}

	choices := make([]Choice, 0, len(*wire.Choices))
	for i, c := range *wire.Choices {
		switch {
		case c.Index == nil:
			return missingField(fmt.Sprintf("choices[%d].index", i))
		case c.Message == nil:
			return missingField(fmt.Sprintf("choices[%d].message", i))
		case c.FinishReason == nil:
			return missingField(fmt.Sprintf("choices[%d].finish_reason", i))
		}
		choices = append(choices, Choice{
			index:        *c.Index,
			message:      *c.Message,
			finishReason: *c.FinishReason,
		})
	}

	u := wire.Usage
	switch {
	case u.PromptTokens == nil:
		return missingField("usage.prompt_tokens")
	case u.CompletionTokens == nil:
		return missingField("usage.completion_tokens")
	case u.TotalTokens == nil:
		return missingField("usage.total_tokens")
	}

	*r = Response{
		id:      *wire.ID,
		object:  *wire.Object,
		created: *wire.Created,
		choices: choices,
		usage: Usage{
			promptTokens:     *u.PromptTokens,
			completionTokens: *u.CompletionTokens,
			totalTokens:      *u.TotalTokens,
		},
	}
	return nil
}

// MarshalJSON encodes the response in the API's wire shape.
func (r *Response) MarshalJSON() ([]byte, error) {
	type choiceOut struct {
		Index        uint64  `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	}
	type usageOut struct {
		PromptTokens     uint16 `json:"prompt_tokens"`
		CompletionTokens uint16 `json:"completion_tokens"`
		TotalTokens      uint16 `json:"total_tokens"`
	}

	choices := make([]choiceOut, len(r.choices))
	for i, c := range r.choices {
		choices[i] = choiceOut{Index: c.index, Message: c.message, FinishReason: c.finishReason}
	}

	return json.Marshal(struct {
		ID      string      `json:"id"`
		Object  string      `json:"object"`
		Created uint64      `json:"created"`
		Choices []choiceOut `json:"choices"`
		Usage   usageOut    `json:"usage"`
	}{
		ID:      r.id,
		Object:  r.object,
		Created: r.created,
		Choices: choices,
		Usage: usageOut{
			PromptTokens:     r.usage.promptTokens,
			CompletionTokens: r.usage.completionTokens,
			TotalTokens:      r.usage.totalTokens,
		},
	})
}
