package http

import (
	"net/http"

	"github.com/secmon-lab/caseline/pkg/domain/model/auth"
)

// IdentityResolver maps an incoming request to an authenticated
// identity. Session establishment happens upstream (a reverse proxy or
// IAP); the resolver only reads its result.
type IdentityResolver interface {
	Resolve(r *http.Request) (*auth.Identity, error)
}

// HeaderIdentityResolver reads the identity from trusted proxy headers
type HeaderIdentityResolver struct{}

func (HeaderIdentityResolver) Resolve(r *http.Request) (*auth.Identity, error) {
	sub := r.Header.Get("X-Caseline-User")
	if sub == "" {
		return auth.NewAnonymous(), nil
	}

	name := r.Header.Get("X-Caseline-User-Name")
	if name == "" {
		name = sub
	}

	return &auth.Identity{Sub: sub, Name: name}, nil
}

// identityMiddleware resolves the request identity and stores it in the
// context. When no resolver is configured, every request runs as the
// anonymous identity.
func identityMiddleware(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.NewAnonymous()
			if resolver != nil {
				resolved, err := resolver.Resolve(r)
				if err != nil {
					http.Error(w, "Authentication required", http.StatusUnauthorized)
					return
				}
				id = resolved
			}

			ctx := auth.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
