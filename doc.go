// Package shelfgate provides the client-side access-control core for the
// Shelf library-management front end: a session state machine reconciling a
// stored credential with the server-issued role, plus the wiring points for
// the two permission resolvers (optimistic role-claim tables in
// permission/, server-verified decisions in authz/) and the access gates in
// gate/ that consume them.
//
// The package is designed for UI-driven workloads: Session methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build], and every network call suspends on the caller's context.
//
// # Architecture boundaries
//
// shelfgate is the public surface. It exposes [Session], [Builder],
// [Config], and value types (Snapshot, SessionUser, MetricsSnapshot). All
// internal coordination — audit dispatch, metric storage — lives under
// internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Trust a locally-held role claim for a security-sensitive decision;
//     that is authz's job, against the server.
//   - Expose the token store's credential contents in its public API.
//   - Import any sub-package that re-imports shelfgate (no import cycles).
//
// # Consistency contract
//
// An authenticated session always carries a non-empty role. Every code path
// that accepts a user record — init-from-token, init-from-server, login,
// register, refresh — re-checks this, and [Session.Snapshot] checks it once
// more on read. A violation forces the unauthenticated state and records an
// error; it is never papered over with a default role.
package shelfgate
