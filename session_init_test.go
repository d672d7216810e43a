package shelfgate

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestInitializeWithoutCredential(t *testing.T) {
	sess, _, counter := newTestSession(t, nil)

	snap := sess.Initialize(context.Background())
	if snap.Authenticated || snap.User != nil {
		t.Fatal("expected unauthenticated session")
	}
	if !snap.Initialized {
		t.Fatal("expected Initialized to flip to true")
	}
	if snap.Loading {
		t.Fatal("expected Loading false after settle")
	}
	if snap.Error != "" {
		t.Fatalf("absence of a credential is not an error, got %q", snap.Error)
	}
	if counter.total() != 0 {
		t.Fatalf("expected no network calls, got %d", counter.total())
	}
}

func TestInitializeFromTokenSkipsNetwork(t *testing.T) {
	sess, store, counter := newTestSession(t, nil)
	seedCredential(t, store,
		testAccessToken(t, "u1", "staff@library.com", "Sam Staff", "MinorStaff", time.Now().Add(time.Hour)),
		time.Now().Add(time.Hour))

	snap := sess.Initialize(context.Background())
	if !snap.Authenticated || snap.User == nil {
		t.Fatal("expected authenticated session")
	}
	if snap.User.Role != "MinorStaff" {
		t.Fatalf("unexpected role %q", snap.User.Role)
	}
	if snap.User.Email != "staff@library.com" {
		t.Fatalf("unexpected email %q", snap.User.Email)
	}
	if counter.total() != 0 {
		t.Fatalf("local decode should make zero network calls, got %d", counter.total())
	}
	if got := sess.Metrics().Value(MetricInitFromToken); got != 1 {
		t.Fatalf("expected init-from-token metric 1, got %d", got)
	}
}

func TestInitializeFallsBackToServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/current-user", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(t, w, map[string]string{
			"id": "u7", "email": "mgr@library.com", "fullName": "Mo Manager", "role": "ManagementStaff",
		})
	})
	sess, store, counter := newTestSession(t, mux)
	// An opaque token cannot be decoded locally, so the server is asked.
	seedCredential(t, store, "opaque-session-token", time.Now().Add(time.Hour))

	snap := sess.Initialize(context.Background())
	if !snap.Authenticated || snap.User == nil {
		t.Fatal("expected authenticated session")
	}
	if snap.User.Role != "ManagementStaff" {
		t.Fatalf("unexpected role %q", snap.User.Role)
	}
	if counter.count("/auth/current-user") != 1 {
		t.Fatalf("expected one current-user call, got %d", counter.count("/auth/current-user"))
	}
	if got := sess.Metrics().Value(MetricInitFromServer); got != 1 {
		t.Fatalf("expected init-from-server metric 1, got %d", got)
	}
}

func TestInitializeServerRejectionStaysQuiet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/current-user", func(w http.ResponseWriter, _ *http.Request) {
		writeFail(t, w, http.StatusUnauthorized, "unauthorized", "Session expired")
	})
	sess, store, _ := newTestSession(t, mux)
	seedCredential(t, store, "opaque-stale-token", time.Now().Add(time.Hour))

	snap := sess.Initialize(context.Background())
	if snap.Authenticated {
		t.Fatal("expected unauthenticated session")
	}
	// A stale token is the normal path, not a surfaced error.
	if snap.Error != "" {
		t.Fatalf("expected quiet rejection, got error %q", snap.Error)
	}
	if store.IsAuthenticated(context.Background()) {
		t.Fatal("expected stale credential to be cleared")
	}
}

func TestInitializeTransportFailureRecordsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/current-user", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})
	sess, store, _ := newTestSession(t, mux)
	seedCredential(t, store, "opaque-token", time.Now().Add(time.Hour))

	snap := sess.Initialize(context.Background())
	if snap.Authenticated {
		t.Fatal("expected unauthenticated session")
	}
	if snap.Error != "Session initialization failed" {
		t.Fatalf("unexpected error message: %q", snap.Error)
	}
	if store.IsAuthenticated(context.Background()) {
		t.Fatal("expected credential to be cleared")
	}
}

func TestInitializeRunsOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/current-user", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(t, w, map[string]string{"id": "u1", "email": "a@library.com", "role": "Administrator"})
	})
	sess, store, counter := newTestSession(t, mux)
	seedCredential(t, store, "opaque-token", time.Now().Add(time.Hour))

	first := sess.Initialize(context.Background())
	second := sess.Initialize(context.Background())

	if counter.count("/auth/current-user") != 1 {
		t.Fatalf("expected exactly one current-user call, got %d", counter.count("/auth/current-user"))
	}
	if !first.Authenticated || !second.Authenticated {
		t.Fatal("both snapshots should be authenticated")
	}
}

func TestInitializeConcurrentCallersSettleIdentically(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/current-user", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(10 * time.Millisecond)
		writeOK(t, w, map[string]string{"id": "u1", "email": "a@library.com", "role": "Administrator"})
	})
	sess, store, counter := newTestSession(t, mux)
	seedCredential(t, store, "opaque-token", time.Now().Add(time.Hour))

	const callers = 8
	results := make(chan Snapshot, callers)
	for i := 0; i < callers; i++ {
		go func() {
			results <- sess.Initialize(context.Background())
		}()
	}
	for i := 0; i < callers; i++ {
		snap := <-results
		if !snap.Authenticated || !snap.Initialized {
			t.Fatal("every caller should observe the settled authenticated state")
		}
	}
	if counter.count("/auth/current-user") != 1 {
		t.Fatalf("expected exactly one current-user call, got %d", counter.count("/auth/current-user"))
	}
}
