package auth

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

var (
	validKeyA = "sk-" + strings.Repeat("X", KeyLength)
	validKeyB = "sk-" + strings.Repeat("a1", KeyLength/2)
)

func TestNewCredential(t *testing.T) {
	tests := []struct {
		name    string
		auth    string
		wantErr bool
	}{
		{"valid", "Bearer " + validKeyA, false},
		{"mixed alphanumerics", "Bearer " + validKeyB, false},
		{"key too short", "Bearer sk-" + strings.Repeat("X", 47), true},
		{"key too long", "Bearer sk-" + strings.Repeat("X", 49), true},
		{"wrong key prefix", "Bearer sk/" + strings.Repeat("X", 48), true},
		{"wrong scheme", "Basic " + validKeyA, true},
		{"lowercase scheme", "bearer " + validKeyA, true},
		{"missing scheme", validKeyA, true},
		{"double space", "Bearer  " + validKeyA, true},
		{"trailing token", "Bearer " + validKeyA + " extra", true},
		{"non alphanumeric", "Bearer sk-" + strings.Repeat("X", 47) + "-", true},
		{"non ASCII letter", "Bearer sk-" + strings.Repeat("X", 47) + "é", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := NewCredential(tt.auth)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCredential() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Errorf("expected *FormatError, got %T", err)
				}
				if strings.Contains(err.Error(), "XXXX") {
					t.Errorf("error message leaks the key: %q", err.Error())
				}
				return
			}
			if cred.Auth() != tt.auth {
				t.Errorf("Auth() = %q, want %q", cred.Auth(), tt.auth)
			}
		})
	}
}

func TestNewCredential_Organization(t *testing.T) {
	tests := []struct {
		name    string
		org     string
		wantErr bool
	}{
		{"plain", "org-acme", false},
		{"spaces and tab", "acme corp\tteam", false},
		{"newline", "org\nInjected: yes", true},
		{"carriage return", "org\r", true},
		{"non ASCII", "orgé", true},
		{"DEL", "org\x7f", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := NewCredential("Bearer "+validKeyA, WithOrganization(tt.org))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCredential() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			org, ok := cred.Organization()
			if !ok || org != tt.org {
				t.Errorf("Organization() = %q, %v; want %q, true", org, ok, tt.org)
			}
		})
	}
}

func TestNewCredentialFromKey(t *testing.T) {
	cred, err := NewCredentialFromKey(validKeyA)
	if err != nil {
		t.Fatalf("NewCredentialFromKey() error = %v", err)
	}
	if cred.Auth() != "Bearer "+validKeyA {
		t.Errorf("Auth() = %q", cred.Auth())
	}

	if _, err := NewCredentialFromKey("not-a-key"); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestCredential_GenerateHeaders(t *testing.T) {
	t.Run("without organization", func(t *testing.T) {
		cred, err := NewCredentialFromKey(validKeyA)
		if err != nil {
			t.Fatal(err)
		}

		want := []Header{
			{Name: "Content-Type", Value: "application/json"},
			{Name: "Authorization", Value: "Bearer " + validKeyA},
		}
		assertHeaders(t, cred.GenerateHeaders(), want)
	})

	t.Run("with organization", func(t *testing.T) {
		cred, err := NewCredentialFromKey(validKeyA, WithOrganization("org-acme"))
		if err != nil {
			t.Fatal(err)
		}

		want := []Header{
			{Name: "Content-Type", Value: "application/json"},
			{Name: "Authorization", Value: "Bearer " + validKeyA},
			{Name: "OpenAI-Organization", Value: "org-acme"},
		}
		assertHeaders(t, cred.GenerateHeaders(), want)
	})
}

func TestCredential_Replace(t *testing.T) {
	cred, err := NewCredentialFromKey(validKeyA)
	if err != nil {
		t.Fatal(err)
	}

	if err := cred.ReplaceAuth("Bearer sk-short"); err == nil {
		t.Fatal("expected error replacing with malformed auth")
	}
	if cred.Auth() != "Bearer "+validKeyA {
		t.Errorf("failed ReplaceAuth changed the credential: %q", cred.Auth())
	}

	if err := cred.ReplaceAuth("Bearer " + validKeyB); err != nil {
		t.Fatalf("ReplaceAuth() error = %v", err)
	}
	if cred.Auth() != "Bearer "+validKeyB {
		t.Errorf("Auth() = %q after replace", cred.Auth())
	}

	if _, ok := cred.Organization(); ok {
		t.Fatal("expected no organization before ReplaceOrganization")
	}
	if err := cred.ReplaceOrganization("bad\x00org"); err == nil {
		t.Fatal("expected error for control byte in organization")
	}
	if _, ok := cred.Organization(); ok {
		t.Error("failed ReplaceOrganization set an organization")
	}
	if err := cred.ReplaceOrganization("org-new"); err != nil {
		t.Fatalf("ReplaceOrganization() error = %v", err)
	}
	if org, ok := cred.Organization(); !ok || org != "org-new" {
		t.Errorf("Organization() = %q, %v", org, ok)
	}
	if got := len(cred.GenerateHeaders()); got != 3 {
		t.Errorf("expected 3 headers after adding organization, got %d", got)
	}
}

func TestCredential_ConcurrentAccess(t *testing.T) {
	cred, err := NewCredentialFromKey(validKeyA)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			key := validKeyA
			if i%2 == 0 {
				key = validKeyB
			}
			_ = cred.ReplaceAuth("Bearer " + key)
		}(i)
		go func() {
			defer wg.Done()
			headers := cred.GenerateHeaders()
			if err := ValidateAuth(headers[1].Value); err != nil {
				t.Errorf("observed invalid auth header: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestCredential_LogValue(t *testing.T) {
	cred, err := NewCredentialFromKey(validKeyB, WithOrganization("org-acme"))
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("using credential", "credential", cred)

	out := buf.String()
	if strings.Contains(out, validKeyB) {
		t.Errorf("log output contains the full key: %s", out)
	}
	if !strings.Contains(out, "sk-...a1a1") {
		t.Errorf("log output missing masked key: %s", out)
	}
	if !strings.Contains(out, "org-acme") {
		t.Errorf("log output missing organization: %s", out)
	}
}

func TestMaskAuth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bearer " + validKeyA, "Bearer sk-...XXXX"},
		{"Bearer sk-ab", "Bearer ***"},
		{"", "Bearer ***"},
	}

	for _, tt := range tests {
		if got := MaskAuth(tt.in); got != tt.want {
			t.Errorf("MaskAuth(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func assertHeaders(t *testing.T, got, want []Header) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d headers, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("header %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
