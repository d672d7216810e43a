// Package token owns the client's stored credential: the bearer token pair,
// its expiry, and the claim decoder that turns a stored access token into
// an identity without a network round-trip.
//
// Two store implementations ship with the package. [MemoryStore] serves a
// single-process client; [RedisStore] persists the credential so several
// client processes on one circulation desk share a sign-in.
//
// The decoder deliberately does NOT verify the token signature — the client
// holds no verification key and the decoded identity is only an optimistic
// claim. Anything security-sensitive goes through authz against the server.
package token
