package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rollertrack/access-api/internal/core/domain"
)

// RequireCapability enforces role-based access control for one capability.
// The decision comes from the domain grant table, not from role-name
// branches in handlers.
func RequireCapability(cap domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleClaim, _ := c.Get("role").(string)
			role, ok := domain.ParseRole(roleClaim)
			if !ok || !cap.AllowedFor(role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
