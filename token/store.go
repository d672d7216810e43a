package token

import (
	"context"
	"errors"
	"time"
)

// ErrNoCredential is returned by Load when nothing is stored.
var ErrNoCredential = errors.New("no stored credential")

// Credential is the opaque token pair issued at login. The session engine
// never inspects it beyond handing the access token to the decoder.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the credential exists and has not expired.
func (c *Credential) Valid(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	return c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt)
}

// expiresWithin reports whether the credential expires inside the window.
// A credential with no recorded expiry never needs refreshing.
func (c *Credential) expiresWithin(now time.Time, window time.Duration) bool {
	if c == nil || c.AccessToken == "" || c.ExpiresAt.IsZero() {
		return false
	}
	return now.Add(window).After(c.ExpiresAt)
}

// Store is the credential persistence contract the session engine depends
// on. Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the stored credential or ErrNoCredential.
	Load(ctx context.Context) (*Credential, error)
	// Save replaces the stored credential.
	Save(ctx context.Context, cred Credential) error
	// ClearAuthentication removes the credential. Clearing an empty store
	// is not an error.
	ClearAuthentication(ctx context.Context) error
	// IsAuthenticated reports whether a valid, unexpired credential is
	// present. It never performs network I/O against the auth server.
	IsAuthenticated(ctx context.Context) bool
	// NeedsRefresh reports whether the credential is close enough to
	// expiry that it should be rotated.
	NeedsRefresh(ctx context.Context) bool
}
