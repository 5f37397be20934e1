package article

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validKey(key string) bool {
	return keyPattern.MatchString(key)
}

// MissingAnswersError is returned by Fill when placeholders have no answer.
type MissingAnswersError struct {
	Keys []string
}

func (e *MissingAnswersError) Error() string {
	return fmt.Sprintf("no answer for placeholders: %s", strings.Join(e.Keys, ", "))
}

// Placeholders returns the distinct placeholder keys of an article in order
// of first appearance.
func Placeholders(article string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(article, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// Fill replaces every placeholder with its answer. Answers are trimmed of
// surrounding whitespace. Unused answers are ignored.
func Fill(article string, answers map[string]string) (string, error) {
	var missing []string
	for _, key := range Placeholders(article) {
		if _, ok := answers[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "", &MissingAnswersError{Keys: missing}
	}

	return placeholderPattern.ReplaceAllStringFunc(article, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		return strings.TrimSpace(answers[key])
	}), nil
}

// Unused returns the keys of questions that do not appear in the article,
// sorted.
func Unused(article string, questions []Question) []string {
	used := make(map[string]bool)
	for _, key := range Placeholders(article) {
		used[key] = true
	}

	var unused []string
	for _, q := range questions {
		if !used[q.Key] {
			unused = append(unused, q.Key)
		}
	}
	sort.Strings(unused)
	return unused
}
