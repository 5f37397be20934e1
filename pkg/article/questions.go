package article

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Question is one entry of a questions file.
type Question struct {
	Key  string
	Text string
}

// LoadQuestions reads a TOML questions file. Questions are returned in file
// order.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	questions, err := ParseQuestions(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return questions, nil
}

// ParseQuestions parses questions in TOML form. Every top-level key must
// hold a non-empty string; tables and other value types are rejected.
func ParseQuestions(data string) ([]Question, error) {
	var raw map[string]any
	md, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}

	questions := make([]Question, 0, len(raw))
	for _, key := range md.Keys() {
		if len(key) != 1 {
			// Nested keys are reported through their top-level table.
			continue
		}
		name := key[0]
		text, ok := raw[name].(string)
		if !ok {
			return nil, fmt.Errorf("question %q: expected a string, got %s", name, md.Type(name))
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("question %q is empty", name)
		}
		if !validKey(name) {
			return nil, fmt.Errorf("question key %q cannot be used as a placeholder", name)
		}
		questions = append(questions, Question{Key: name, Text: text})
	}
	return questions, nil
}
