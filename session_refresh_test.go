package shelfgate

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestRefreshNoOpWhenCredentialIsFresh(t *testing.T) {
	sess, store, counter := newTestSession(t, nil)
	// Far outside the 2m refresh window.
	seedCredential(t, store, "opaque", time.Now().Add(time.Hour))

	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if counter.total() != 0 {
		t.Fatalf("fresh credential should make no network calls, got %d", counter.total())
	}
}

func TestRefreshRotatesCredential(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode refresh body: %v", err)
		}
		if req["refreshToken"] != "refresh-1" {
			t.Errorf("expected stored refresh token, got %q", req["refreshToken"])
		}
		writeOK(t, w, map[string]any{
			"user": map[string]string{
				"id": "u1", "email": "a@library.com", "fullName": "Ada Admin", "role": "Administrator",
			},
			"accessToken":  "rotated-access",
			"refreshToken": "rotated-refresh",
			"tokenType":    "Bearer",
			"expiresIn":    3600,
		})
	})
	sess, store, _ := newTestSession(t, mux)
	seedCredential(t, store, "opaque", time.Now().Add(30*time.Second))

	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	cred, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("expected rotated credential: %v", err)
	}
	if cred.AccessToken != "rotated-access" || cred.RefreshToken != "rotated-refresh" {
		t.Fatalf("credential not rotated: %+v", cred)
	}

	snap := sess.Snapshot()
	if !snap.Authenticated || snap.User == nil || snap.User.Role != "Administrator" {
		t.Fatalf("unexpected snapshot after refresh: %+v", snap)
	}
	if got := sess.Metrics().Value(MetricRefreshSuccess); got != 1 {
		t.Fatalf("expected refresh success metric 1, got %d", got)
	}
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		writeFail(t, w, http.StatusUnauthorized, "refresh_invalid", "Refresh token revoked")
	})
	sess, store, _ := newTestSession(t, mux)
	seedCredential(t, store, "opaque", time.Now().Add(30*time.Second))

	err := sess.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	snap := sess.Snapshot()
	if snap.Authenticated {
		t.Fatal("expected unauthenticated session after failed refresh")
	}
	if snap.Error != "Session refresh failed" {
		t.Fatalf("unexpected error message %q", snap.Error)
	}
	if store.IsAuthenticated(context.Background()) {
		t.Fatal("expected credential cleared after failed refresh")
	}
	if got := sess.Metrics().Value(MetricRefreshFailure); got != 1 {
		t.Fatalf("expected refresh failure metric 1, got %d", got)
	}
}
