package auth

import (
	"context"

	"campus-market/internal/model"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the caller's identity.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller's identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(model.Identity)
	return id, ok
}
