package exchangelog

import (
	"fmt"
)

const (
	// DefaultLimit is the number of records returned when Limit is zero.
	DefaultLimit = 100

	// MaxLimit is the largest accepted Limit.
	MaxLimit = 10000
)

// ValidateQuery reports the first invalid parameter in q as a *QueryError.
func ValidateQuery(q *Query) error {
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	switch q.SortOrder {
	case "", "asc", "desc":
	default:
		return NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}

	return nil
}

// ApplyQueryDefaults fills in Limit and SortOrder. Newest first is the
// default order.
func ApplyQueryDefaults(q *Query) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}

// Matches reports whether record satisfies the query's filters.
func (q *Query) Matches(record *Record) bool {
	if q.StartTime != nil && record.StartTime.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && !record.StartTime.Before(*q.EndTime) {
		return false
	}
	if q.RequestID != "" && record.RequestID != q.RequestID {
		return false
	}
	if q.Operation != "" && record.Operation != q.Operation {
		return false
	}
	if q.Model != "" && record.Model != q.Model {
		return false
	}
	if q.Outcome != "" && record.Outcome != q.Outcome {
		return false
	}
	return true
}
