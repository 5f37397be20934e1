package transport

import (
	"context"
	"time"

	"mercator-hq/chatclient/pkg/auth"
)

// Operations recorded in Exchange.Operation.
const (
	OperationPerform     = "perform"
	OperationCheckAccess = "check_access"
)

// Exchange describes one completed call. Observers must treat it as
// read-only.
type Exchange struct {
	// RequestID identifies the call in logs and records
	RequestID string

	// Operation is OperationPerform or OperationCheckAccess
	Operation string

	// Model is the target model, when the payload names one
	Model string

	// Method and URL of the HTTP request
	Method string
	URL    string

	// RequestHeaders are the sent headers with the authorization masked
	RequestHeaders []auth.Header

	// RequestBody is the JSON body as sent, nil for a GET
	RequestBody []byte

	// StatusCode is zero when no response arrived
	StatusCode int

	// ResponseBody is the raw body as read, possibly cut short when the
	// connection broke off mid-body
	ResponseBody []byte

	// Token usage reported by a successfully decoded response
	PromptTokens     int
	CompletionTokens int

	// Outcome is one of the Outcome* labels
	Outcome string

	Started time.Time
	Latency time.Duration

	// Err is the error returned to the caller, if any
	Err error
}

// Observer is notified once per call after the outcome is known. It cannot
// change the outcome. Implementations must be safe for concurrent use and
// should not block.
type Observer interface {
	ObserveExchange(ctx context.Context, ex *Exchange)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ex *Exchange)

// ObserveExchange calls f(ctx, ex).
func (f ObserverFunc) ObserveExchange(ctx context.Context, ex *Exchange) {
	f(ctx, ex)
}
