package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mercator-hq/chatclient/pkg/exchangelog"
)

// CSVExporter writes records as CSV. Bodies and the curl rendering are left
// out; the hashes identify them.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

var _ exchangelog.Exporter = (*CSVExporter)(nil)

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes one row per record.
func (e *CSVExporter) Export(ctx context.Context, records []*exchangelog.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(headerRow); err != nil {
			return exchangelog.NewExportError("csv", len(records), err)
		}
	}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return exchangelog.NewExportError("csv", i, err)
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return exchangelog.NewExportError("csv", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return exchangelog.NewExportError("csv", len(records), err)
	}
	return nil
}

var headerRow = []string{
	"id", "request_id", "operation",
	"start_time", "latency_ms",
	"method", "url", "model",
	"status_code", "outcome", "error",
	"prompt_tokens", "completion_tokens",
	"request_hash", "response_hash",
}

func recordToRow(record *exchangelog.Record) []string {
	startTime := ""
	if !record.StartTime.IsZero() {
		startTime = record.StartTime.UTC().Format(time.RFC3339Nano)
	}

	return []string{
		record.ID,
		record.RequestID,
		record.Operation,
		startTime,
		strconv.FormatInt(record.Latency.Milliseconds(), 10),
		record.Method,
		record.URL,
		record.Model,
		strconv.Itoa(record.StatusCode),
		record.Outcome,
		record.Error,
		strconv.Itoa(record.PromptTokens),
		strconv.Itoa(record.CompletionTokens),
		record.RequestHash,
		record.ResponseHash,
	}
}
