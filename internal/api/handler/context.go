package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rollertrack/access-api/internal/core/domain"
)

// ctxActor extracts the acting identity injected by the Auth middleware.
// Presence of both claims proves the middleware ran; a token without them
// is structurally valid but operationally unusable, so reject with 401.
func ctxActor(c echo.Context) (domain.Actor, error) {
	employeeID, _ := c.Get("employee_id").(string)
	roleClaim, _ := c.Get("role").(string)

	role, ok := domain.ParseRole(roleClaim)
	if employeeID == "" || !ok {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	return domain.Actor{EmployeeID: employeeID, Role: role}, nil
}
