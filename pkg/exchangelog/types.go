package exchangelog

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"mercator-hq/chatclient/pkg/transport"
)

// Record is the stored form of one API call: the raw request, a curl
// rendering of it and the raw response. Records are never replayed into
// later requests.
type Record struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From the transport exchange
	Operation string `json:"operation"`  // perform, check_access

	// Timing
	StartTime time.Time     `json:"start_time"`
	Latency   time.Duration `json:"latency"`

	// Request
	Method      string `json:"method"`
	URL         string `json:"url"`
	Model       string `json:"model,omitempty"`
	RequestBody string `json:"request_body,omitempty"`
	Curl        string `json:"curl"`                   // Authorization masked
	RequestHash string `json:"request_hash,omitempty"` // SHA-256 of request body

	// Response
	StatusCode   int    `json:"status_code"` // 0 when no response arrived
	ResponseBody string `json:"response_body,omitempty"`
	ResponseHash string `json:"response_hash,omitempty"`

	// Usage
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`

	// Result
	Outcome string `json:"outcome"` // ok, network, unauthorized, api_error, decode, error
	Error   string `json:"error,omitempty"`
}

// NewRecord builds a Record from a completed exchange.
func NewRecord(ex *transport.Exchange) *Record {
	record := &Record{
		ID:               uuid.New().String(),
		RequestID:        ex.RequestID,
		Operation:        ex.Operation,
		StartTime:        ex.Started,
		Latency:          ex.Latency,
		Method:           ex.Method,
		URL:              ex.URL,
		Model:            ex.Model,
		RequestBody:      string(ex.RequestBody),
		Curl:             RenderCurl(ex),
		RequestHash:      HashContent(ex.RequestBody),
		StatusCode:       ex.StatusCode,
		ResponseBody:     string(ex.ResponseBody),
		ResponseHash:     HashContent(ex.ResponseBody),
		PromptTokens:     ex.PromptTokens,
		CompletionTokens: ex.CompletionTokens,
		Outcome:          ex.Outcome,
	}
	if ex.Err != nil {
		record.Error = ex.Err.Error()
	}
	return record
}

// Query defines filter parameters for listing records.
type Query struct {
	// Time range on StartTime
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive
	EndTime   *time.Time `json:"end_time,omitempty"`   // Exclusive

	// Filters
	RequestID string `json:"request_id,omitempty"`
	Operation string `json:"operation,omitempty"`
	Model     string `json:"model,omitempty"`
	Outcome   string `json:"outcome,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// SortOrder orders by StartTime: "asc" or "desc"
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage defines the interface for exchange log backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records matching the query. An empty result is an empty
	// slice, not an error.
	List(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query. Pagination
	// fields are ignored.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records that started before t and returns how
	// many were removed.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Exporter writes records in some external format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
