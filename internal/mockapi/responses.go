package mockapi

import (
	"net/http"
)

// Completion returns a 200 reply carrying a single assistant choice.
func Completion(content string) Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       CompletionBody(content),
	}
}

// CompletionBody builds a chat completion document with one choice.
func CompletionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": 1677652288,
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     9,
			"completion_tokens": 12,
			"total_tokens":      21,
		},
	}
}

// ModelList returns a 200 reply for the models endpoint.
func ModelList() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "gpt-3.5-turbo", "object": "model", "owned_by": "openai"},
				{"id": "gpt-3.5-turbo-0301", "object": "model", "owned_by": "openai"},
			},
		},
	}
}

// Error returns a reply with an API error document.
func Error(statusCode int, message string) Response {
	return Response{
		StatusCode: statusCode,
		Body: map[string]any{
			"error": map[string]any{
				"message": message,
				"type":    "invalid_request_error",
				"code":    nil,
			},
		},
	}
}

// Unauthorized returns a 401 reply.
func Unauthorized() Response {
	return Error(http.StatusUnauthorized, "Incorrect API key provided")
}

// ServerError returns a 500 reply.
func ServerError() Response {
	return Error(http.StatusInternalServerError, "The server had an error while processing your request")
}

// Raw returns a reply with a literal body.
func Raw(statusCode int, body string) Response {
	return Response{StatusCode: statusCode, Body: body}
}
