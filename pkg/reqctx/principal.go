package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// Principal identifies the authenticated caller as verified from the
// bearer token. Ownership checks (creator-only delete) compare against
// Principal.UserID; everything else is the store's RLS.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, keyPrincipal, p)
}

// PrincipalFromContext retrieves the authenticated principal.
// Returns nil, false on unauthenticated contexts.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	v := ctx.Value(keyPrincipal)
	if v == nil {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}
