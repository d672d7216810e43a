// Package permission is the role-claim resolver: a static mapping from the
// session's role string to a bitmask of UI capabilities.
//
// Decisions made here trust the client-held role claim and exist only to
// keep the interface snappy — showing or hiding buttons, pre-filtering
// navigation. They must never be the sole gate for a security-sensitive
// action; that is the server-verified resolver's job (package authz). The
// two resolvers are deliberately distinct types so a call site cannot
// accidentally substitute the optimistic one where verification is
// required.
//
// Resolution fails closed: an unknown role, a blank role, or an
// unauthenticated session all resolve to the empty capability set.
package permission
