package auth

import "context"

// Identity is the authenticated principal supplied by the external auth
// provider. Caseline never establishes sessions itself; the transport
// layer resolves the identity and stores it in the request context.
type Identity struct {
	Sub  string
	Name string
}

// NewAnonymous returns the identity used when no auth provider is
// configured (development mode).
func NewAnonymous() *Identity {
	return &Identity{
		Sub:  "anonymous",
		Name: "Anonymous",
	}
}

type ctxKey struct{}

// ContextWithIdentity stores the identity in the context
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext retrieves the identity from the context. It
// returns the anonymous identity when none is set.
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(ctxKey{}).(*Identity); ok && id != nil {
		return id
	}
	return NewAnonymous()
}
