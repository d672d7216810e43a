package shelfgate

import (
	"errors"
	"testing"
)

func TestAuthErrorMatching(t *testing.T) {
	plain := newAuthError(opLogin, "Invalid credentials")
	if !errors.Is(plain, ErrAuthenticationFailed) {
		t.Fatal("every AuthError matches ErrAuthenticationFailed")
	}
	if errors.Is(plain, ErrNoUserRole) {
		t.Fatal("non-role failures must not match ErrNoUserRole")
	}
	if plain.Error() != "Invalid credentials" {
		t.Fatalf("unexpected message %q", plain.Error())
	}

	role := newRoleError(opRefresh)
	if !errors.Is(role, ErrNoUserRole) || !errors.Is(role, ErrAuthenticationFailed) {
		t.Fatal("role errors match both sentinels")
	}
	if role.Error() != "Authentication failed - no user role" {
		t.Fatalf("unexpected message %q", role.Error())
	}
	if role.Op != opRefresh {
		t.Fatalf("operation not carried: %q", role.Op)
	}
}

func TestAuthErrorFallbackMessage(t *testing.T) {
	e := newAuthError(opRegister, "")
	if e.Error() != "register failed" {
		t.Fatalf("unexpected fallback %q", e.Error())
	}
}
