package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// PrincipalLocalsKey is where the authenticated user is stored in fiber locals
const PrincipalLocalsKey = "principal"

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// SetPrincipal attaches the user to the request, in locals and in the
// user context.
func SetPrincipal(c *fiber.Ctx, user *User) {
	c.Locals(PrincipalLocalsKey, user)
	c.SetUserContext(WithContext(c.UserContext(), user))
}

// PrincipalFromRouter returns the user attached by the protected route
func PrincipalFromRouter(c *fiber.Ctx) (*User, bool) {
	raw, ok := c.Locals(PrincipalLocalsKey).(*User)
	return raw, ok && raw != nil
}

// GetRouterClaims extracts the AuthClaims stored by the JWT middleware
func GetRouterClaims(c *fiber.Ctx, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user"
	}
	claims, ok := c.Locals(key).(AuthClaims)
	return claims, ok
}
