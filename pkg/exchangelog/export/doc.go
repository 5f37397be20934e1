// Package export writes exchange log records to external formats.
//
//   - JSON: one array, optionally indented
//   - JSON lines: one object per line, used for retention archives
//   - CSV: metadata columns with a header row; bodies are omitted
//
// Example:
//
//	records, err := store.List(ctx, &exchangelog.Query{Limit: 50})
//	if err != nil {
//		return err
//	}
//	return export.NewCSVExporter(true).Export(ctx, records, os.Stdout)
//
// Failures are reported as *exchangelog.ExportError.
package export
