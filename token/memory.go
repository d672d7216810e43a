package token

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the credential in process memory. It is the default
// store for single-process clients and for tests.
type MemoryStore struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	cred *Credential
}

// NewMemoryStore creates an empty store. refreshWindow is how long before
// expiry NeedsRefresh starts reporting true; zero disables proactive
// refresh (the credential is only refreshed once expired).
func NewMemoryStore(refreshWindow time.Duration) *MemoryStore {
	return &MemoryStore{
		window: refreshWindow,
		now:    time.Now,
	}
}

func (s *MemoryStore) Load(context.Context) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil {
		return nil, ErrNoCredential
	}
	cred := *s.cred
	return &cred, nil
}

func (s *MemoryStore) Save(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = &cred
	return nil
}

func (s *MemoryStore) ClearAuthentication(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = nil
	return nil
}

func (s *MemoryStore) IsAuthenticated(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cred.Valid(s.now())
}

func (s *MemoryStore) NeedsRefresh(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil || s.window <= 0 {
		return false
	}
	return s.cred.expiresWithin(s.now(), s.window)
}
