package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MaxStopSequences is the largest number of sequences a stop list may hold.
const MaxStopSequences = 4

// StopSequence is either a single stop string or a list of stop strings.
// It encodes as a bare JSON string or a JSON array, never as an object.
type StopSequence struct {
	single string
	list   []string
	isList bool
}

// StopString returns a StopSequence holding one string.
func StopString(s string) StopSequence {
	return StopSequence{single: s}
}

// StopList returns a StopSequence holding a list of strings. The length limit
// is checked by Request.SetStop, not here.
func StopList(sequences ...string) StopSequence {
	list := make([]string, len(sequences))
	copy(list, sequences)
	return StopSequence{list: list, isList: true}
}

// IsList reports whether the sequence uses the list form.
func (s StopSequence) IsList() bool {
	return s.isList
}

// Len returns 1 for the string form and the list length otherwise.
func (s StopSequence) Len() int {
	if s.isList {
		return len(s.list)
	}
	return 1
}

// Values returns the stop strings. The string form yields a single element.
func (s StopSequence) Values() []string {
	if !s.isList {
		return []string{s.single}
	}
	out := make([]string, len(s.list))
	copy(out, s.list)
	return out
}

// Equal reports whether two sequences have the same form and contents.
func (s StopSequence) Equal(other StopSequence) bool {
	if s.isList != other.isList {
		return false
	}
	if !s.isList {
		return s.single == other.single
	}
	if len(s.list) != len(other.list) {
		return false
	}
	for i := range s.list {
		if s.list[i] != other.list[i] {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (s StopSequence) MarshalJSON() ([]byte, error) {
	if !s.isList {
		return json.Marshal(s.single)
	}
	if s.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.list)
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (s *StopSequence) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("stop: empty value")
	}

	switch trimmed[0] {
	case '"':
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return fmt.Errorf("stop: %w", err)
		}
		*s = StopString(single)
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("stop: %w", err)
		}
		*s = StopList(list...)
		return nil
	default:
		return fmt.Errorf("stop: expected string or array of strings, got %s", trimmed)
	}
}
