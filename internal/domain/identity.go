package domain

import "context"

// Identity is the current verified identity supplied by the external auth
// collaborator. The ledger never authenticates; it only consumes this.
type Identity struct {
	AccountID string
	Email     string
	Name      string
}

type identityContextKey struct{}

// WithIdentity attaches an identity to the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok
}
