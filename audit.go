package shelfgate

import (
	"context"
	"errors"
	"time"

	"github.com/hartwellk/shelfgate/api"
)

const (
	auditEventInitFromToken      = "init_from_token"
	auditEventInitFromServer     = "init_from_server"
	auditEventInitUnauth         = "init_unauthenticated"
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventRegisterSuccess    = "register_success"
	auditEventRegisterFailure    = "register_failure"
	auditEventRefreshSuccess     = "refresh_success"
	auditEventRefreshFailure     = "refresh_failure"
	auditEventLogout             = "logout"
	auditEventInvariantViolation = "role_invariant_violation"
)

// AuditErrorCode defines a public type used by shelfgate APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnauthenticated AuditErrorCode = "unauthenticated"
	auditErrForbidden       AuditErrorCode = "forbidden"
	auditErrNoUserRole      AuditErrorCode = "no_user_role"
	auditErrRemoteRejected  AuditErrorCode = "remote_rejected"
	auditErrMalformed       AuditErrorCode = "malformed_response"
	auditErrTransport       AuditErrorCode = "transport_error"
)

func (s *Session) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Terminal:  terminalIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	s.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var remote *api.RemoteError

	switch {
	case errors.Is(err, api.ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, api.ErrForbidden):
		return auditErrForbidden
	case errors.Is(err, ErrNoUserRole):
		return auditErrNoUserRole
	case errors.Is(err, api.ErrMalformedResponse):
		return auditErrMalformed
	case errors.As(err, &remote):
		return auditErrRemoteRejected
	default:
		return auditErrTransport
	}
}
