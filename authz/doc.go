// Package authz is the server-verified permission resolver: the component
// that asks the Shelf server for the authoritative allow/deny answer
// instead of trusting the client-held role claim.
//
// Two query shapes exist. The bulk query fetches the session's full
// permission set in one round-trip and caches it for UI affordances,
// keyed by the current identity; a fetch whose identity was superseded
// mid-flight is discarded rather than allowed to overwrite fresher state.
// The point query verifies one resource/action(+instance) triple and is
// never cached — it runs immediately before each sensitive operation.
//
// Everything here fails closed: an unauthenticated session, a non-success
// envelope, a timeout, or a malformed body all resolve to denial, never to
// an optimistic allow.
package authz
