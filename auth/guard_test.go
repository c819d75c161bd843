package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-boards/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Role: auth.RoleUser}
	admin := &auth.User{ID: uuid.New(), Role: auth.RoleAdmin}

	tests := []struct {
		name      string
		principal *auth.User
		access    auth.RouteAccess
		want      error
	}{
		{"no roles admits user", user, auth.Roles(), nil},
		{"user on user route", user, auth.Roles(auth.RoleUser), nil},
		{"user on admin route", user, auth.Roles(auth.RoleAdmin), auth.ErrForbidden},
		{"admin on admin route", admin, auth.Roles(auth.RoleAdmin), nil},
		{"admin on user route", admin, auth.Roles(auth.RoleUser), auth.ErrForbidden},
		{"either role", admin, auth.Roles(auth.RoleUser, auth.RoleAdmin), nil},
		{"missing principal", nil, auth.Roles(), auth.ErrPrincipalNotFound},
		{"missing principal on role route", nil, auth.Roles(auth.RoleUser), auth.ErrPrincipalNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.Authorize(tt.principal, tt.access)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRequireRoles_Handler(t *testing.T) {
	app := newErrorApp()

	withPrincipal := func(role auth.UserRole) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if role != "" {
				auth.SetPrincipal(c, &auth.User{ID: uuid.New(), Role: role})
			}
			return c.Next()
		}
	}

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }

	app.Get("/admin/as-user", withPrincipal(auth.RoleUser), auth.RequireRoles(auth.RoleAdmin), ok)
	app.Get("/admin/as-admin", withPrincipal(auth.RoleAdmin), auth.RequireRoles(auth.RoleAdmin), ok)
	app.Get("/admin/anonymous", withPrincipal(""), auth.RequireRoles(auth.RoleAdmin), ok)

	tests := []struct {
		path   string
		status int
	}{
		{"/admin/as-user", fiber.StatusForbidden},
		{"/admin/as-admin", fiber.StatusOK},
		{"/admin/anonymous", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}
}
