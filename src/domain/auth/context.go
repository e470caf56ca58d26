package auth

import "context"

type principalKey struct{}

// ContextWithPrincipal attaches the authenticated principal to ctx
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by the session middleware
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey{}).(*Principal)
	if !ok || p == nil || p.UserID == "" {
		return nil, false
	}
	return p, true
}
