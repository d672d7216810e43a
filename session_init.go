package shelfgate

import (
	"context"
	"errors"

	"github.com/hartwellk/shelfgate/api"
)

// Initialize establishes the session from whatever credential is already
// stored. It runs the underlying work exactly once per Session lifetime;
// later calls (including concurrent ones) wait for the first to settle and
// return the settled snapshot. Initialized flips to true whichever branch
// is taken, so gates can rely on it unconditionally.
//
// Resolution order, each step short-circuiting on success:
//
//  1. No valid stored credential → Unauthenticated.
//  2. Decode the stored access token locally. A decoded user with a valid
//     role authenticates with no network call; a decoded user with a
//     blank role is an integrity failure — credential cleared,
//     Unauthenticated.
//  3. Ask the server for the current user. Valid role → Authenticated;
//     blank role or any failure → credential cleared, Unauthenticated.
func (s *Session) Initialize(ctx context.Context) Snapshot {
	s.initOnce.Do(func() {
		s.runInitialize(ctx)
	})
	return s.Snapshot()
}

func (s *Session) runInitialize(ctx context.Context) {
	defer func() {
		// Nothing escapes initialization: a panic in a collaborator
		// degrades to the unauthenticated state with an error recorded.
		if r := recover(); r != nil {
			_ = s.tokens.ClearAuthentication(ctx)
			s.setUnauthenticated(msgInitFailed)
		}
		s.mu.Lock()
		s.initialized = true
		s.loading = false
		s.mu.Unlock()
	}()

	s.beginOperation()

	if !s.tokens.IsAuthenticated(ctx) {
		s.setUnauthenticated("")
		s.metricInc(MetricInitUnauthenticated)
		s.emitAudit(ctx, auditEventInitUnauth, true, "", "", nil, nil)
		return
	}

	if cred, err := s.tokens.Load(ctx); err == nil {
		if ident, derr := s.decoder.Identity(cred.AccessToken); derr == nil {
			u := SessionUser{
				ID:       ident.ID,
				Email:    ident.Email,
				FullName: ident.FullName,
				Role:     ident.Role,
			}
			// adoptUser settles both outcomes: a blank role clears the
			// credential and records the integrity error.
			if s.adoptUser(ctx, u, opInitialize) == nil {
				s.metricInc(MetricInitFromToken)
				s.emitAudit(ctx, auditEventInitFromToken, true, u.ID, u.Email, nil, nil)
			}
			return
		}
	}

	remote, err := s.api.CurrentUser(ctx)
	if err != nil {
		_ = s.tokens.ClearAuthentication(ctx)
		// A 401 or an explicit rejection is the normal "token went
		// stale" path and stays quiet; a transport failure is recorded.
		var rejected *api.RemoteError
		if errors.Is(err, api.ErrUnauthenticated) || errors.As(err, &rejected) {
			s.setUnauthenticated("")
		} else {
			s.setUnauthenticated(msgInitFailed)
		}
		s.metricInc(MetricInitUnauthenticated)
		s.emitAudit(ctx, auditEventInitUnauth, false, "", "", err, nil)
		return
	}

	u := SessionUser{
		ID:       remote.ID,
		Email:    remote.Email,
		FullName: remote.FullName,
		Role:     remote.Role,
	}
	if s.adoptUser(ctx, u, opInitialize) == nil {
		s.metricInc(MetricInitFromServer)
		s.emitAudit(ctx, auditEventInitFromServer, true, u.ID, u.Email, nil, nil)
	}
}
