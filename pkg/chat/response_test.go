package chat

import (
	"encoding/json"
	"strings"
	"testing"
)

const sampleResponse = `{
	"id": "chatcmpl-123",
	"object": "chat.completion",
	"created": 1677652288,
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "\nEarth is"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
}`

func TestResponse_UnmarshalJSON(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(sampleResponse), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if resp.ID() != "chatcmpl-123" {
		t.Errorf("expected id chatcmpl-123, got %q", resp.ID())
	}
	if resp.Object() != "chat.completion" {
		t.Errorf("expected object chat.completion, got %q", resp.Object())
	}
	if resp.Created() != 1677652288 {
		t.Errorf("expected created 1677652288, got %d", resp.Created())
	}

	choices := resp.Choices()
	if len(choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(choices))
	}
	if got := choices[0].Message().Content; got != "\nEarth is" {
		t.Errorf("expected content %q, got %q", "\nEarth is", got)
	}
	if choices[0].Message().Role != RoleAssistant {
		t.Errorf("expected assistant role, got %q", choices[0].Message().Role)
	}
	if choices[0].FinishReason() != FinishReasonStop {
		t.Errorf("expected finish_reason stop, got %q", choices[0].FinishReason())
	}
	if resp.Content() != "\nEarth is" {
		t.Errorf("Content() = %q", resp.Content())
	}

	usage := resp.Usage()
	if usage.PromptTokens() != 9 || usage.CompletionTokens() != 12 || usage.TotalTokens() != 21 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}

func TestResponse_RoundTrip(t *testing.T) {
	var first Response
	if err := json.Unmarshal([]byte(sampleResponse), &first); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	data, err := json.Marshal(&first)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var second Response
	if err := json.Unmarshal(data, &second); err != nil {
		t.Fatalf("second Unmarshal failed: %v", err)
	}

	if second.Content() != "\nEarth is" {
		t.Errorf("expected content to survive round trip, got %q", second.Content())
	}
	if second.Usage() != first.Usage() {
		t.Errorf("usage mismatch: %+v vs %+v", second.Usage(), first.Usage())
	}
}

func TestResponse_IgnoresUnknownFields(t *testing.T) {
	body := strings.Replace(sampleResponse, `"object"`, `"system_fingerprint": "fp_1", "object"`, 1)

	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unknown field should be ignored, got: %v", err)
	}
}

func TestResponse_UnmarshalJSON_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing id",
			body:    `{"object":"x","created":1,"choices":[],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`,
			wantErr: `"id"`,
		},
		{
			name:    "missing usage",
			body:    `{"id":"a","object":"x","created":1,"choices":[]}`,
			wantErr: `"usage"`,
		},
		{
			name:    "null choices",
			body:    `{"id":"a","object":"x","created":1,"choices":null,"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`,
			wantErr: `"choices"`,
		},
		{
			name:    "choice without finish reason",
			body:    `{"id":"a","object":"x","created":1,"choices":[{"index":0,"message":{"role":"assistant","content":"hi"}}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`,
			wantErr: `choices[0].finish_reason`,
		},
		{
			name:    "message without content",
			body:    `{"id":"a","object":"x","created":1,"choices":[{"index":0,"message":{"role":"assistant"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`,
			wantErr: `message.content`,
		},
		{
			name:    "usage without total",
			body:    `{"id":"a","object":"x","created":1,"choices":[],"usage":{"prompt_tokens":1,"completion_tokens":1}}`,
			wantErr: `usage.total_tokens`,
		},
		{
			name:    "token count overflows",
			body:    `{"id":"a","object":"x","created":1,"choices":[],"usage":{"prompt_tokens":70000,"completion_tokens":1,"total_tokens":2}}`,
			wantErr: `prompt_tokens`,
		},
		{
			name:    "wrong type",
			body:    `{"id":7,"object":"x","created":1,"choices":[],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`,
			wantErr: `id`,
		},
		{
			name:    "not an object",
			body:    `[1,2,3]`,
			wantErr: `cannot unmarshal`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp Response
			err := json.Unmarshal([]byte(tt.body), &resp)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestResponse_ContentWithoutChoices(t *testing.T) {
	body := `{"id":"a","object":"x","created":1,"choices":[],"usage":{"prompt_tokens":1,"completion_tokens":0,"total_tokens":1}}`

	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if resp.Content() != "" {
		t.Errorf("expected empty content, got %q", resp.Content())
	}
}

func TestRequest_DecodeResponse(t *testing.T) {
	req := NewRequest(GPT35Turbo)

	resp, err := req.DecodeResponse([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if resp.Content() != "\nEarth is" {
		t.Errorf("unexpected content %q", resp.Content())
	}

	if _, err := req.DecodeResponse([]byte(`{"id":"x"}`)); err == nil {
		t.Error("expected error for incomplete body")
	}
}
