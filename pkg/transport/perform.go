package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/chatclient/pkg/telemetry/logging"
)

// Payload is a request body that knows how to decode its own response type.
type Payload[R any] interface {
	json.Marshaler

	// DecodeResponse decodes a 200 response body.
	DecodeResponse(body []byte) (*R, error)
}

// ModelNamer is implemented by payloads that target a model. The name is
// copied into the Exchange and the log context.
type ModelNamer interface {
	ModelName() string
}

// UsageReporter is implemented by responses that report token usage.
type UsageReporter interface {
	TokenUsage() (prompt, completion int)
}

// Perform encodes payload, POSTs it to the client's endpoint with the
// headers from auth and decodes the reply.
//
// Exactly one HTTP request is made; nothing is retried. Failures are
// classified as *NetworkError (no response), *UnauthorizedError (401),
// *APIError (any other non-200) or *DecodeError (200 with a bad body).
// Cancelling ctx abandons the call and yields a *NetworkError wrapping the
// context error.
func Perform[R any](ctx context.Context, c *Client, payload Payload[R], auth HeaderGenerator) (*R, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	headers := auth.GenerateHeaders()
	ex := c.newExchange(ctx, OperationPerform, http.MethodPost, c.endpoint, headers, body)
	ctx = logging.WithRequestID(ctx, ex.RequestID)
	if m, ok := payload.(ModelNamer); ok {
		ex.Model = m.ModelName()
		ctx = logging.WithModel(ctx, ex.Model)
	}

	resp, err := c.send(ctx, http.MethodPost, c.endpoint, headers, body)

	var result *R
	if err == nil {
		ex.StatusCode = resp.status
		ex.ResponseBody = resp.body
		result, err = decode(resp, payload)
	}
	if u, ok := any(result).(UsageReporter); ok && result != nil {
		ex.PromptTokens, ex.CompletionTokens = u.TokenUsage()
	}

	c.finish(ctx, ex, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// decode classifies by status first, so a 401 or other non-200 keeps its
// class even when the body was cut short.
func decode[R any](resp *response, payload Payload[R]) (*R, error) {
	if resp.status != http.StatusOK {
		return nil, statusError(resp.status, resp.body)
	}
	if resp.readErr != nil {
		return nil, &DecodeError{Body: resp.body, Cause: resp.readErr}
	}

	result, err := payload.DecodeResponse(resp.body)
	if err == nil && result == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		return nil, &DecodeError{Body: resp.body, Cause: err}
	}
	return result, nil
}
