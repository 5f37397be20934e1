package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/chatclient/pkg/exchangelog"
)

// MemoryStorage keeps records in a map. It is used by tests and by the CLI
// when the exchange log should not outlive the process.
type MemoryStorage struct {
	records map[string]*exchangelog.Record
	mu      sync.RWMutex
}

var _ exchangelog.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*exchangelog.Record),
	}
}

// Store saves a copy of record.
func (s *MemoryStorage) Store(_ context.Context, record *exchangelog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Get returns a copy of the record with the given ID.
func (s *MemoryStorage) Get(_ context.Context, id string) (*exchangelog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, exchangelog.ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

// List returns copies of the matching records.
func (s *MemoryStorage) List(_ context.Context, query *exchangelog.Query) ([]*exchangelog.Record, error) {
	q := *query
	if err := exchangelog.ValidateQuery(&q); err != nil {
		return nil, err
	}
	exchangelog.ApplyQueryDefaults(&q)

	s.mu.RLock()
	results := []*exchangelog.Record{}
	for _, record := range s.records {
		if q.Matches(record) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !a.StartTime.Equal(b.StartTime) {
			if q.SortOrder == "asc" {
				return a.StartTime.Before(b.StartTime)
			}
			return a.StartTime.After(b.StartTime)
		}
		if q.SortOrder == "asc" {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})

	if q.Offset >= len(results) {
		return []*exchangelog.Record{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(results) {
		end = len(results)
	}
	return results[q.Offset:end], nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(_ context.Context, query *exchangelog.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if query.Matches(record) {
			count++
		}
	}
	return count, nil
}

// DeleteBefore removes records that started before t.
func (s *MemoryStorage) DeleteBefore(_ context.Context, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if record.StartTime.Before(t) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}
