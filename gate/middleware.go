package gate

import (
	"context"
	"net/http"
	"net/url"
)

type verdictContextKey struct{}

// VerdictFromContext retrieves the verdict stored by Protect for the
// current request.
func VerdictFromContext(ctx context.Context) (Verdict, bool) {
	v, ok := ctx.Value(verdictContextKey{}).(Verdict)
	return v, ok
}

// Protect adapts a RouteGuard into net/http middleware for clients that
// embed a local UI server. The session is initialized (idempotently)
// before any decision, so the first request after process start cannot be
// misrouted. Unauthenticated requests are redirected to loginPath with the
// original location in the "next" query parameter; authorization failures
// get 403 without a redirect.
func Protect(guard *RouteGuard, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard == nil || guard.Session == nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			guard.Session.Initialize(r.Context())

			verdict := guard.EvaluateFor(r.Context(), r.URL.RequestURI())
			switch verdict.Decision {
			case DecisionAllow:
				ctx := context.WithValue(r.Context(), verdictContextKey{}, verdict)
				next.ServeHTTP(w, r.WithContext(ctx))
			case DecisionLogin:
				target := loginPath
				if verdict.ReturnTo != "" {
					target += "?next=" + url.QueryEscape(verdict.ReturnTo)
				}
				http.Redirect(w, r, target, http.StatusFound)
			case DecisionDenied:
				http.Error(w, "insufficient permissions", http.StatusForbidden)
			default:
				// Initialize settled above, so Pending means a broken
				// session; fail closed.
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
