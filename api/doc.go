// Package api is the typed HTTP client for the Shelf server's auth and
// permission endpoints. Every response travels in a uniform envelope
// ({success, data, error}); this package decodes and validates the envelope
// at the boundary and hands callers either concrete payload structs or
// tagged errors, never loosely-typed maps.
//
// # Architecture boundaries
//
// api owns transport only. It attaches the bearer credential and cookie
// jar, applies the configured timeout, and maps HTTP status codes to
// sentinel errors ([ErrUnauthenticated], [ErrForbidden]). It makes no
// allow/deny decisions — that is authz's job — and it never inspects or
// mutates session state.
package api
