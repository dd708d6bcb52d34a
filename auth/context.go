package auth

import (
	"context"

	"github.com/user/ticx-go/db"
)

// contextKey is unexported so no other package can collide with the keys.
type contextKey string

const (
	userContextKey   contextKey = "auth_user"
	claimsContextKey contextKey = "auth_claims"
)

// NewContextWithUser attaches the identity verified by the Basic-auth
// stage. Handlers downstream read it back instead of re-parsing the
// Authorization header.
func NewContextWithUser(ctx context.Context, user *db.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the verified identity, if any. Handlers must
// treat a missing identity as an error, not a precondition to assert on.
func UserFromContext(ctx context.Context) (*db.User, bool) {
	user, ok := ctx.Value(userContextKey).(*db.User)
	return user, ok
}

// NewContextWithClaims attaches the claims verified by the token stage.
func NewContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the validated token claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}
