package httpx

import (
	"context"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
)

// principalKey is an unexported context key type to avoid collisions
// across packages.
type principalKey struct{}

// SetPrincipalInContext returns a child context carrying the verified
// principal. A zero principal leaves ctx unchanged.
func SetPrincipalInContext(ctx context.Context, principal domainauth.Principal) context.Context {
	if principal.UID == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the verified principal and whether one
// is present. Only the gate's strict mode populates it.
func PrincipalFromContext(ctx context.Context) (domainauth.Principal, bool) {
	if principal, ok := ctx.Value(principalKey{}).(domainauth.Principal); ok && principal.UID != "" {
		return principal, true
	}
	return domainauth.Principal{}, false
}
