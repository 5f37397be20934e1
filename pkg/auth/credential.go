package auth

import (
	"log/slog"
	"sync"
)

// Header names and values produced by GenerateHeaders.
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderOrganization  = "OpenAI-Organization"

	ContentTypeJSON = "application/json"
)

// Header is a single HTTP header name/value pair.
type Header struct {
	Name  string
	Value string
}

// Credential is a validated bearer authorization string plus an optional
// organization identifier.
type Credential struct {
	mu           sync.RWMutex
	auth         string
	organization string
	hasOrg       bool
}

// Option configures a Credential at construction time.
type Option func(*options)

type options struct {
	organization *string
}

// WithOrganization attaches an organization identifier to the credential.
func WithOrganization(org string) Option {
	return func(o *options) {
		o.organization = &org
	}
}

// NewCredential validates auth (and the organization, if given) and returns
// a Credential. It returns a *FormatError when either value is rejected.
func NewCredential(auth string, opts ...Option) (*Credential, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := ValidateAuth(auth); err != nil {
		return nil, err
	}

	c := &Credential{auth: auth}
	if o.organization != nil {
		if err := ValidateHeaderValue("organization", *o.organization); err != nil {
			return nil, err
		}
		c.organization = *o.organization
		c.hasOrg = true
	}
	return c, nil
}

// NewCredentialFromKey wraps a raw "sk-..." key as "Bearer <key>" and calls
// NewCredential.
func NewCredentialFromKey(key string, opts ...Option) (*Credential, error) {
	return NewCredential(BearerPrefix+key, opts...)
}

// ReplaceAuth swaps the authorization string. On error the credential keeps
// its previous value.
func (c *Credential) ReplaceAuth(auth string) error {
	if err := ValidateAuth(auth); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = auth
	return nil
}

// ReplaceOrganization sets or swaps the organization identifier. On error the
// credential keeps its previous value.
func (c *Credential) ReplaceOrganization(org string) error {
	if err := ValidateHeaderValue("organization", org); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.organization = org
	c.hasOrg = true
	return nil
}

// Auth returns the authorization string.
func (c *Credential) Auth() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// Organization returns the organization identifier and whether one is set.
func (c *Credential) Organization() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.organization, c.hasOrg
}

// GenerateHeaders returns the request headers in order: Content-Type,
// Authorization, then OpenAI-Organization when an organization is set.
func (c *Credential) GenerateHeaders() []Header {
	c.mu.RLock()
	defer c.mu.RUnlock()

	headers := make([]Header, 0, 3)
	headers = append(headers,
		Header{Name: HeaderContentType, Value: ContentTypeJSON},
		Header{Name: HeaderAuthorization, Value: c.auth},
	)
	if c.hasOrg {
		headers = append(headers, Header{Name: HeaderOrganization, Value: c.organization})
	}
	return headers
}

// LogValue implements slog.LogValuer so a logged credential never prints the
// full key.
func (c *Credential) LogValue() slog.Value {
	org, hasOrg := c.Organization()
	attrs := []slog.Attr{slog.String("auth", MaskAuth(c.Auth()))}
	if hasOrg {
		attrs = append(attrs, slog.String("organization", org))
	}
	return slog.GroupValue(attrs...)
}
