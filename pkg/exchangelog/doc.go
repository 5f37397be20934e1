// Package exchangelog keeps a durable log of API calls: the raw request, a
// curl command reproducing it and the raw response.
//
// # Architecture
//
//  1. recorder.Recorder observes a transport.Client and turns each Exchange
//     into a Record off the caller's goroutine.
//  2. A Storage backend persists records (storage.MemoryStorage or
//     storage.SQLStorage over sqlite, sqlite3 or mysql).
//  3. retention.Pruner deletes old records, on demand or on a cron schedule.
//  4. export writes records as JSON, JSON lines or CSV.
//
// # Records
//
// Each record carries the request ID, timing, method, URL, model, both raw
// bodies with their SHA-256 hashes, the status code, the outcome label and
// the error text. The curl rendering never contains the full key.
//
// The log is for inspection only. Nothing in it is fed back into later
// requests.
//
// # Usage
//
//	store, err := storage.Open("sqlite", "data/exchanges.db")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, nil)
//	defer rec.Close()
//
//	client := transport.NewClient(transport.WithObserver(rec))
package exchangelog
