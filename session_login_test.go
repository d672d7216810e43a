package shelfgate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func authPayload(role string) map[string]any {
	return map[string]any{
		"user": map[string]string{
			"id": "u1", "email": "a@library.com", "fullName": "Ada Admin", "role": role,
		},
		"accessToken":  "issued-access",
		"refreshToken": "issued-refresh",
		"tokenType":    "Bearer",
		"expiresIn":    3600,
	}
}

func TestLoginSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		if req.Email != "a@library.com" || req.Password != "secret" {
			writeFail(t, w, http.StatusOK, "invalid_credentials", "Invalid credentials")
			return
		}
		writeOK(t, w, authPayload("Administrator"))
	})
	sess, store, _ := newTestSession(t, mux)

	user, err := sess.Login(context.Background(), Credentials{Email: "a@library.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Role != "Administrator" {
		t.Fatalf("unexpected role %q", user.Role)
	}

	snap := sess.Snapshot()
	if !snap.Authenticated || snap.Error != "" || snap.Loading {
		t.Fatalf("unexpected snapshot after login: %+v", snap)
	}

	cred, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("expected stored credential: %v", err)
	}
	if cred.AccessToken != "issued-access" || cred.RefreshToken != "issued-refresh" {
		t.Fatalf("credential not persisted as issued: %+v", cred)
	}
	if got := sess.Metrics().Value(MetricLoginSuccess); got != 1 {
		t.Fatalf("expected login success metric 1, got %d", got)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeFail(t, w, http.StatusOK, "invalid_credentials", "Invalid credentials")
	})
	sess, store, _ := newTestSession(t, mux)

	user, err := sess.Login(context.Background(), Credentials{Email: "a@library.com", Password: "wrong"})
	if user != nil {
		t.Fatal("expected no user on failure")
	}
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.Message != "Invalid credentials" {
		t.Fatalf("error should carry the server message, got %q", authErr.Message)
	}

	snap := sess.Snapshot()
	if snap.Authenticated || snap.Error != "Invalid credentials" {
		t.Fatalf("unexpected snapshot after rejected login: %+v", snap)
	}
	if store.IsAuthenticated(context.Background()) {
		t.Fatal("no credential should be stored after a rejected login")
	}
	if got := sess.Metrics().Value(MetricLoginFailure); got != 1 {
		t.Fatalf("expected login failure metric 1, got %d", got)
	}
}

func TestLoginBlankRoleIsAuthFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(t, w, authPayload(""))
	})
	sess, store, _ := newTestSession(t, mux)

	_, err := sess.Login(context.Background(), Credentials{Email: "a@library.com", Password: "secret"})
	if !errors.Is(err, ErrNoUserRole) {
		t.Fatalf("expected ErrNoUserRole, got %v", err)
	}
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatal("role failures are authentication failures")
	}

	snap := sess.Snapshot()
	if snap.Authenticated {
		t.Fatal("expected unauthenticated session")
	}
	if snap.Error != "Authentication failed - no user role" {
		t.Fatalf("unexpected error message %q", snap.Error)
	}
	if store.IsAuthenticated(context.Background()) {
		t.Fatal("issued credential must be discarded on a role failure")
	}
}

func TestRegisterSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email           string `json:"email"`
			Password        string `json:"password"`
			ConfirmPassword string `json:"confirmPassword"`
			Role            string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode register body: %v", err)
		}
		if req.Role != "Member" {
			t.Errorf("unexpected requested role %q", req.Role)
		}
		payload := authPayload("Member")
		writeOK(t, w, payload)
	})
	sess, _, _ := newTestSession(t, mux)

	user, err := sess.Register(context.Background(), Registration{
		FirstName: "Ada", LastName: "Admin",
		Email: "a@library.com", Password: "secret", ConfirmPassword: "secret",
		Role: "Member",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != "Member" {
		t.Fatalf("unexpected role %q", user.Role)
	}
	if !sess.Snapshot().Authenticated {
		t.Fatal("registration should authenticate the session")
	}
	if got := sess.Metrics().Value(MetricRegisterSuccess); got != 1 {
		t.Fatalf("expected register success metric 1, got %d", got)
	}
}

func TestRegisterRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, _ *http.Request) {
		writeFail(t, w, http.StatusConflict, "email_taken", "Email already registered")
	})
	sess, _, _ := newTestSession(t, mux)

	_, err := sess.Register(context.Background(), Registration{Email: "a@library.com"})
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if snap := sess.Snapshot(); snap.Error != "Email already registered" {
		t.Fatalf("expected server message surfaced, got %q", snap.Error)
	}
}

func TestLogoutIsBestEffort(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(t, w, authPayload("Administrator"))
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		// Server-side failure must not keep the client signed in.
		w.WriteHeader(http.StatusInternalServerError)
	})
	sess, store, counter := newTestSession(t, mux)

	if _, err := sess.Login(context.Background(), Credentials{Email: "a@library.com", Password: "secret"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	sess.Logout(context.Background())

	snap := sess.Snapshot()
	if snap.Authenticated || snap.User != nil {
		t.Fatal("expected unauthenticated session after logout")
	}
	if snap.Error != "" {
		t.Fatalf("logout clears the error slot, got %q", snap.Error)
	}
	if store.IsAuthenticated(context.Background()) {
		t.Fatal("expected credential cleared after logout")
	}
	if counter.count("/auth/logout") != 1 {
		t.Fatalf("expected one logout call, got %d", counter.count("/auth/logout"))
	}
	if got := sess.Metrics().Value(MetricLogout); got != 1 {
		t.Fatalf("expected logout metric 1, got %d", got)
	}
}
