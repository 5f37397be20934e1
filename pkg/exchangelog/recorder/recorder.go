package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mercator-hq/chatclient/pkg/exchangelog"
	"mercator-hq/chatclient/pkg/transport"
)

// Config contains configuration for the recorder.
type Config struct {
	// AsyncBuffer is the size of the queue between observers and the
	// storage writer.
	// Default: 100
	AsyncBuffer int

	// EnqueueTimeout bounds how long ObserveExchange waits for room in a
	// full queue before dropping the record.
	// Default: 100ms
	EnqueueTimeout time.Duration

	// WriteTimeout bounds each storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:    100,
		EnqueueTimeout: 100 * time.Millisecond,
		WriteTimeout:   5 * time.Second,
	}
}

// Recorder turns transport exchanges into records and writes them to storage
// on a background goroutine so callers never wait on the database.
type Recorder struct {
	storage    exchangelog.Storage
	config     *Config
	recordChan chan *exchangelog.Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger

	dropped atomic.Int64
	written atomic.Int64
}

var _ transport.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder writing to storage and starts its worker.
// A nil config uses DefaultConfig; zero fields take their defaults.
func NewRecorder(storage exchangelog.Storage, config *Config) *Recorder {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = defaults.AsyncBuffer
	}
	if config.EnqueueTimeout <= 0 {
		config.EnqueueTimeout = defaults.EnqueueTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *exchangelog.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "exchangelog.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("exchange recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// ObserveExchange enqueues a record for ex. It returns without waiting for
// the write.
func (r *Recorder) ObserveExchange(_ context.Context, ex *transport.Exchange) {
	if err := r.Record(exchangelog.NewRecord(ex)); err != nil {
		r.logger.Warn("dropping exchange record", "request_id", ex.RequestID, "error", err)
	}
}

// Record enqueues record for writing. It fails with an error matching
// exchangelog.ErrDropped when the recorder is closed (context.Canceled) or the
// queue stays full for EnqueueTimeout (context.DeadlineExceeded).
func (r *Recorder) Record(record *exchangelog.Record) error {
	select {
	case <-r.done:
		r.dropped.Add(1)
		return exchangelog.DropError(record.ID, context.Canceled)
	default:
	}

	timer := time.NewTimer(r.config.EnqueueTimeout)
	defer timer.Stop()

	select {
	case r.recordChan <- record:
		return nil
	case <-timer.C:
		r.dropped.Add(1)
		return exchangelog.DropError(record.ID, context.DeadlineExceeded)
	case <-r.done:
		r.dropped.Add(1)
		return exchangelog.DropError(record.ID, context.Canceled)
	}
}

// Dropped returns how many records were discarded without being written.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Written returns how many records reached storage.
func (r *Recorder) Written() int64 {
	return r.written.Load()
}

// Close stops accepting records, writes everything already queued and
// waits for the worker to exit. It does not close the storage.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
		r.logger.Debug("exchange recorder shut down",
			"written", r.written.Load(),
			"dropped", r.dropped.Load(),
		)
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *exchangelog.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.dropped.Add(1)
		r.logger.Error("failed to store exchange record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}
	r.written.Add(1)

	if duration := time.Since(start); duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow exchange log write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
		)
	}
}
