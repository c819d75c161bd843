package auth

import (
	"slices"

	"github.com/gofiber/fiber/v2"
)

// RouteAccess declares which roles may reach a route. An empty set admits
// any authenticated principal.
type RouteAccess struct {
	RequiredRoles []UserRole
}

// Roles is shorthand for RouteAccess{RequiredRoles: roles}
func Roles(roles ...UserRole) RouteAccess {
	return RouteAccess{RequiredRoles: roles}
}

// Authorize decides whether principal satisfies access. A missing
// principal is always denied.
func Authorize(principal *User, access RouteAccess) error {
	if principal == nil {
		return ErrPrincipalNotFound
	}

	if len(access.RequiredRoles) == 0 {
		return nil
	}

	if slices.Contains(access.RequiredRoles, principal.Role) {
		return nil
	}

	return withCause(ErrForbidden, nil).WithMetadata(map[string]any{
		"role":     string(principal.Role),
		"required": access.RequiredRoles,
	})
}

// Handler evaluates access against the request principal. Mount it after
// the protected route middleware.
func (r RouteAccess) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromRouter(c)
		if err := Authorize(principal, r); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireRoles returns a guard handler for the given roles
func RequireRoles(roles ...UserRole) fiber.Handler {
	return Roles(roles...).Handler()
}
