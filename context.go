package shelfgate

import "context"

type terminalIDContextKey struct{}

// WithTerminalID attaches the physical terminal identifier (kiosk, desk
// workstation) to ctx. The session engine stamps it onto audit events so
// shared-desk sign-ins can be told apart.
func WithTerminalID(ctx context.Context, terminalID string) context.Context {
	return context.WithValue(ctx, terminalIDContextKey{}, terminalID)
}

func terminalIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	terminalID, _ := ctx.Value(terminalIDContextKey{}).(string)
	return terminalID
}
