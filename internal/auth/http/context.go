// Package http provides HTTP handlers, authentication middleware and
// permission checks for the authorization API.
package http

import (
	"context"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
)

// principalKey is a context key type for storing the request principal.
type principalKey struct{}

// tokenHashKey is a context key type for storing the hash of the bearer token.
type tokenHashKey struct{}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, principal *authDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipal retrieves the authenticated principal from the context.
// Returns (nil, false) if the authentication middleware did not run.
func GetPrincipal(ctx context.Context) (*authDomain.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*authDomain.Principal)
	return principal, ok && principal != nil
}

// WithTokenHash stores the hash of the bearer token that authenticated the request.
func WithTokenHash(ctx context.Context, tokenHash string) context.Context {
	return context.WithValue(ctx, tokenHashKey{}, tokenHash)
}

// GetTokenHash retrieves the hash stored by WithTokenHash.
func GetTokenHash(ctx context.Context) (string, bool) {
	tokenHash, ok := ctx.Value(tokenHashKey{}).(string)
	return tokenHash, ok
}
