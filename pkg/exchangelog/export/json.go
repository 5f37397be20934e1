package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/chatclient/pkg/exchangelog"
)

// JSONExporter writes records as a single JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

var _ exchangelog.Exporter = (*JSONExporter)(nil)

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records as a JSON array; no records is "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*exchangelog.Record, w io.Writer) error {
	if records == nil {
		records = []*exchangelog.Record{}
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return exchangelog.NewExportError("json", len(records), err)
	}

	if _, err := w.Write(data); err != nil {
		return exchangelog.NewExportError("json", len(records), err)
	}
	return nil
}

// JSONLinesExporter writes one JSON object per line. Output can be appended
// to an existing file.
type JSONLinesExporter struct{}

var _ exchangelog.Exporter = (*JSONLinesExporter)(nil)

// NewJSONLinesExporter creates a new JSON lines exporter.
func NewJSONLinesExporter() *JSONLinesExporter {
	return &JSONLinesExporter{}
}

// Export writes each record followed by a newline. It stops early if ctx is
// cancelled.
func (e *JSONLinesExporter) Export(ctx context.Context, records []*exchangelog.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return exchangelog.NewExportError("jsonl", i, err)
		}
		if err := enc.Encode(record); err != nil {
			return exchangelog.NewExportError("jsonl", i, err)
		}
	}
	return nil
}
