/*
Package auth holds the credential used to authenticate chat completion calls.

A Credential carries a bearer authorization string and an optional
organization identifier. Both are validated when the credential is created or
replaced, so a Credential that exists always produces legal HTTP headers.

# Basic Usage

	cred, err := auth.NewCredentialFromKey(os.Getenv("OPENAI_API_KEY"),
		auth.WithOrganization("org-acme"),
	)
	if err != nil {
		log.Fatal(err)
	}

	for _, h := range cred.GenerateHeaders() {
		fmt.Println(h.Name, h.Value)
	}

# Authorization Format

The authorization string must be exactly "Bearer sk-" followed by 48 ASCII
letters or digits. Organization values are free-form but must be legal
literal header values: visible ASCII or tab, no control bytes and nothing
outside ASCII.

# Key Files

LoadKeyFile reads a key from a file with owner-only permissions (0600 or
0400). WatchKeyFile keeps a Credential in sync with such a file: writes are
debounced, and content that fails validation is logged and ignored so the
previous key stays in use.

	go func() {
		if err := auth.WatchKeyFile(ctx, "/run/secrets/openai", cred); err != nil {
			slog.Error("key watcher stopped", "error", err)
		}
	}()

# Thread Safety

Credential is safe for concurrent use. Readers take a shared lock, so header
generation during a request never observes a half-replaced key.
*/
package auth
