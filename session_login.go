package shelfgate

import (
	"context"
	"errors"
	"time"

	"github.com/hartwellk/shelfgate/api"
	"github.com/hartwellk/shelfgate/token"
)

// Login authenticates against the server. Expected failures — rejected
// credentials, a user issued without a role — return *AuthError carrying
// the same human-readable message recorded in the snapshot; the session
// ends Unauthenticated in every failure branch.
func (s *Session) Login(ctx context.Context, creds Credentials) (*SessionUser, error) {
	s.beginOperation()

	payload, err := s.api.Login(ctx, api.LoginRequest{
		Email:      creds.Email,
		Password:   creds.Password,
		RememberMe: creds.RememberMe,
	})
	if err != nil {
		msg := failureMessage(err)
		s.setUnauthenticated(msg)
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventLoginFailure, false, "", creds.Email, err, nil)
		return nil, newAuthError(opLogin, msg)
	}

	return s.completeAuth(ctx, payload, opLogin)
}

// Register creates an account; the contract is identical to Login.
func (s *Session) Register(ctx context.Context, reg Registration) (*SessionUser, error) {
	s.beginOperation()

	payload, err := s.api.Register(ctx, api.RegisterRequest{
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
		Email:           reg.Email,
		Password:        reg.Password,
		ConfirmPassword: reg.ConfirmPassword,
		Role:            reg.Role,
	})
	if err != nil {
		msg := failureMessage(err)
		s.setUnauthenticated(msg)
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, "", reg.Email, err, nil)
		return nil, newAuthError(opRegister, msg)
	}

	return s.completeAuth(ctx, payload, opRegister)
}

// completeAuth persists the issued credential and adopts the user. The
// role check happens in adoptUser before the session turns authenticated;
// a credential that cannot be persisted fails the operation rather than
// leaving a session that will not survive a restart.
func (s *Session) completeAuth(ctx context.Context, payload *api.AuthPayload, op string) (*SessionUser, error) {
	cred := credentialFromPayload(payload)
	if err := s.tokens.Save(ctx, cred); err != nil {
		msg := "Failed to store credential"
		s.setUnauthenticated(msg)
		s.incAuthFailure(op)
		s.emitAudit(ctx, failureEvent(op), false, payload.User.ID, payload.User.Email, err, nil)
		return nil, newAuthError(op, msg)
	}

	u := SessionUser{
		ID:       payload.User.ID,
		Email:    payload.User.Email,
		FullName: payload.User.FullName,
		Role:     payload.User.Role,
	}
	if err := s.adoptUser(ctx, u, op); err != nil {
		s.incAuthFailure(op)
		return nil, err
	}

	s.incAuthSuccess(op)
	s.emitAudit(ctx, successEvent(op), true, u.ID, u.Email, nil, func() map[string]string {
		return map[string]string{"role": u.Role}
	})
	return &u, nil
}

func credentialFromPayload(payload *api.AuthPayload) token.Credential {
	cred := token.Credential{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
	}
	if payload.ExpiresIn > 0 {
		cred.ExpiresAt = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return cred
}

// failureMessage turns an api error into the text shown to the user. The
// server's own message wins when it sent one.
func failureMessage(err error) string {
	var remote *api.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if errors.Is(err, api.ErrUnauthenticated) {
		return msgAuthRequired
	}
	return err.Error()
}

func successEvent(op string) string {
	if op == opRegister {
		return auditEventRegisterSuccess
	}
	return auditEventLoginSuccess
}

func failureEvent(op string) string {
	if op == opRegister {
		return auditEventRegisterFailure
	}
	return auditEventLoginFailure
}

func (s *Session) incAuthSuccess(op string) {
	if op == opRegister {
		s.metricInc(MetricRegisterSuccess)
		return
	}
	s.metricInc(MetricLoginSuccess)
}

func (s *Session) incAuthFailure(op string) {
	if op == opRegister {
		s.metricInc(MetricRegisterFailure)
		return
	}
	s.metricInc(MetricLoginFailure)
}
