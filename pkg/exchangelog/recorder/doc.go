// Package recorder writes transport exchanges to an exchange log.
//
// A Recorder is a transport.Observer. Exchanges become records on the
// calling goroutine (hashing, curl rendering) and are written to storage by
// a single background worker. When the queue is full for longer than
// EnqueueTimeout the record is dropped and counted; the API call itself is
// never slowed down by the database.
//
//	rec := recorder.NewRecorder(store, &recorder.Config{AsyncBuffer: 100})
//	defer rec.Close()
//	client := transport.NewClient(transport.WithObserver(rec))
//
// Close drains the queue before returning.
package recorder
