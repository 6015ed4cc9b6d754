// Package session tracks logged-in identities server-side, keyed by an
// opaque token carried in a cookie. The only per-session state is the
// logname of the authenticated user.
package session

import (
	"context"
)

// Store holds server-side session state
type Store interface {
	// Create mints a session for logname and returns its opaque token
	Create(ctx context.Context, logname string) (string, error)
	// Logname returns the identity bound to token, or "" if the token is
	// unknown or expired
	Logname(ctx context.Context, token string) (string, error)
	// Destroy discards the session; unknown tokens are not an error
	Destroy(ctx context.Context, token string) error
}
