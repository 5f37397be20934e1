package logging

import (
	"testing"
)

func TestRedactor_RedactString(t *testing.T) {
	redactor := NewRedactor(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare key", "key " + testKey, "key sk-***"},
		{"bearer", "Authorization: Bearer " + testKey, "Authorization: Bearer ***"},
		{"password", "password=hunter2", "password: ***"},
		{"clean", "nothing to hide", "nothing to hide"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_CustomPatterns(t *testing.T) {
	redactor := NewRedactor([]RedactPattern{
		{Name: "org", Pattern: `org-[a-z]+`, Replacement: "org-***"},
		{Name: "broken", Pattern: `[unclosed`, Replacement: "***"},
	})

	if got := redactor.RedactString("org-acme"); got != "org-***" {
		t.Errorf("custom pattern not applied: %q", got)
	}
	if len(redactor.patterns) != len(defaultPatterns)+1 {
		t.Errorf("expected invalid pattern to be skipped, have %d patterns", len(redactor.patterns))
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"authorization", true},
		{"Authorization", true},
		{"api_key", true},
		{"refresh_token", true},
		{"client_secret", true},
		{"model", false},
		{"status", false},
	}

	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestRedactValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcd", "***"},
		{"abcdef", "abcd***"},
	}

	for _, tt := range tests {
		if got := RedactValue(tt.in); got != tt.want {
			t.Errorf("RedactValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
