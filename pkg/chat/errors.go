package chat

import "fmt"

// ConstraintError reports a request field value outside its documented range.
// It is returned by the Request setters; the request is left unchanged.
type ConstraintError struct {
	// Field is the wire name of the rejected field (e.g. "temperature")
	Field string

	// Value is the rejected value
	Value any

	// Message describes the violated constraint
	Message string
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}
