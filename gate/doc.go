// Package gate holds the declarative access gates: consumers that combine
// session state with one of the two resolvers and answer "render, wait,
// redirect, or deny" for a protected surface.
//
// A [RouteGuard] protects a whole navigation target: it waits for session
// initialization (never redirecting early, so a page refresh cannot flash
// protected content or bounce a valid session to login), sends
// unauthenticated visitors to login with the original location preserved,
// and optionally requires a role from the claim table and/or a
// server-verified resource+action.
//
// A [Conditional] protects an inline fragment: a single predicate over the
// bulk snapshot (all-of/any-of named permissions) or a point query.
//
// Both fail closed — a resolver error is a denial, never an allow.
package gate
