// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import "context"

// Identity is the credential attached to a single call.
type Identity struct {
	Token string
}

type identityKey struct{}

// WithIdentity returns a context whose calls authenticate as id, overriding
// the token bound on the client. An Identity with an empty Token sends no
// Authorization header at all.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the per-call identity stored in ctx.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
