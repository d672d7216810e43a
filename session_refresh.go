package shelfgate

import (
	"context"
	"fmt"
)

// Refresh rotates the credential when the token store reports it is near
// expiry. A refresh that fails — transport, rejection, or a refreshed user
// with a blank role — forces a full logout: stale half-sessions are worse
// than a clean re-login.
func (s *Session) Refresh(ctx context.Context) error {
	if !s.tokens.NeedsRefresh(ctx) {
		return nil
	}

	cred, err := s.tokens.Load(ctx)
	if err != nil {
		return s.failRefresh(ctx, err)
	}

	s.beginOperation()

	payload, err := s.api.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		return s.failRefresh(ctx, err)
	}

	if err := s.tokens.Save(ctx, credentialFromPayload(payload)); err != nil {
		return s.failRefresh(ctx, err)
	}

	u := SessionUser{
		ID:       payload.User.ID,
		Email:    payload.User.Email,
		FullName: payload.User.FullName,
		Role:     payload.User.Role,
	}
	if err := s.adoptUser(ctx, u, opRefresh); err != nil {
		// adoptUser already cleared the credential and recorded the
		// integrity error; count it as a refresh failure too.
		s.metricInc(MetricRefreshFailure)
		return err
	}

	s.metricInc(MetricRefreshSuccess)
	s.emitAudit(ctx, auditEventRefreshSuccess, true, u.ID, u.Email, nil, nil)
	return nil
}

func (s *Session) failRefresh(ctx context.Context, cause error) error {
	_ = s.tokens.ClearAuthentication(ctx)
	s.setUnauthenticated(msgRefreshMsg)
	s.metricInc(MetricRefreshFailure)
	s.emitAudit(ctx, auditEventRefreshFailure, false, "", "", cause, nil)
	return fmt.Errorf("%s: %w", msgRefreshMsg, cause)
}

// Logout ends the session. The server call is best-effort: whatever it
// returns (or however it fails), the local credential and user state are
// cleared and the error slot is reset.
func (s *Session) Logout(ctx context.Context) {
	snap := s.Snapshot()

	_ = s.api.Logout(ctx)
	_ = s.tokens.ClearAuthentication(ctx)

	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.lastError = ""
	s.mu.Unlock()

	s.metricInc(MetricLogout)
	if snap.User != nil {
		s.emitAudit(ctx, auditEventLogout, true, snap.User.ID, snap.User.Email, nil, nil)
	} else {
		s.emitAudit(ctx, auditEventLogout, true, "", "", nil, nil)
	}
}
