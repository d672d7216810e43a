package shelfgate

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed is the umbrella for expected login/register
	// failures; match with errors.Is.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrNoUserRole marks the role invariant violation: the server or a
	// decoded token produced a user with a blank role.
	ErrNoUserRole = errors.New("authentication failed - no user role")
	// ErrNotAuthenticated is returned by operations that require a live
	// session when there is none.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionNotReady is returned when an operation runs before Build
	// completed its wiring.
	ErrSessionNotReady = errors.New("session not ready")
)

// Messages surfaced in Snapshot.Error. The no-role text is part of the
// observable contract; the UI matches on it.
const (
	msgNoUserRole   = "Authentication failed - no user role"
	msgRefreshMsg   = "Session refresh failed"
	msgInitFailed   = "Session initialization failed"
	msgAuthRequired = "Authentication required"
)

// AuthError is the tagged result for an expected auth failure: it carries
// the operation that failed and the human-readable message also recorded
// in the session snapshot. It matches ErrAuthenticationFailed, and
// ErrNoUserRole when the failure was the role invariant.
type AuthError struct {
	Op      string
	Message string
	roleErr bool
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return e.Message
}

func (e *AuthError) Is(target error) bool {
	if target == ErrAuthenticationFailed {
		return true
	}
	return e.roleErr && target == ErrNoUserRole
}

func newAuthError(op, message string) *AuthError {
	return &AuthError{Op: op, Message: message}
}

func newRoleError(op string) *AuthError {
	return &AuthError{Op: op, Message: msgNoUserRole, roleErr: true}
}
