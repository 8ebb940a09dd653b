package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rollertrack/access-api/internal/api/metrics"
	"github.com/rollertrack/access-api/internal/core/domain"
	"github.com/rollertrack/access-api/internal/core/ports"
)

type DirectoryHandler struct {
	directory ports.DirectoryService
}

func NewDirectoryHandler(directory ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

type createAccountRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"required,oneof=operator admin super_admin"`
	Active     bool   `json:"active"`
}

type updateAccountRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required,oneof=operator admin super_admin"`
	Active     bool   `json:"active"`
}

type changePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// List returns every account.
//
// @Summary      List accounts
// @Tags         directory
// @Produce      json
// @Success      200  {array}   domain.Account
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *DirectoryHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	accounts, err := h.directory.List(c.Request().Context(), actor)
	if err != nil {
		metrics.DirectoryOpsTotal.WithLabelValues("list", opResult(err)).Inc()
		return err
	}
	metrics.DirectoryOpsTotal.WithLabelValues("list", "ok").Inc()
	return c.JSON(http.StatusOK, accounts)
}

// Search matches accounts by employee id, email, or role substring.
//
// @Summary      Search accounts
// @Tags         directory
// @Produce      json
// @Param        q    query     string  true  "Search term"
// @Success      200  {array}   domain.Account
// @Router       /users/search [get]
func (h *DirectoryHandler) Search(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	accounts, err := h.directory.Search(c.Request().Context(), actor, c.QueryParam("q"))
	if err != nil {
		metrics.DirectoryOpsTotal.WithLabelValues("search", opResult(err)).Inc()
		return err
	}
	metrics.DirectoryOpsTotal.WithLabelValues("search", "ok").Inc()
	return c.JSON(http.StatusOK, accounts)
}

// Get returns one account by employee id.
//
// @Summary      Get an account
// @Tags         directory
// @Produce      json
// @Param        employee_id  path      string  true  "Employee ID"
// @Success      200          {object}  domain.Account
// @Failure      404          {object}  map[string]string
// @Router       /users/{employee_id} [get]
func (h *DirectoryHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	account, err := h.directory.Get(c.Request().Context(), actor, c.Param("employee_id"))
	if err != nil {
		metrics.DirectoryOpsTotal.WithLabelValues("get", opResult(err)).Inc()
		return err
	}
	metrics.DirectoryOpsTotal.WithLabelValues("get", "ok").Inc()
	return c.JSON(http.StatusOK, account)
}

// Create inserts a new account.
//
// @Summary      Create an account
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        body  body      createAccountRequest  true  "New account"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *DirectoryHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.directory.Create(c.Request().Context(), actor, ports.CreateAccountInput{
		EmployeeID: req.EmployeeID,
		Email:      req.Email,
		Password:   req.Password,
		Role:       domain.Role(req.Role),
		Active:     req.Active,
	})
	if err != nil {
		metrics.DirectoryOpsTotal.WithLabelValues("create", opResult(err)).Inc()
		return err
	}
	metrics.DirectoryOpsTotal.WithLabelValues("create", "ok").Inc()
	return c.JSON(http.StatusCreated, account)
}

// Update rewrites an account's identity fields.
//
// @Summary      Update an account
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        employee_id  path      string                true  "Employee ID"
// @Param        body         body      updateAccountRequest  true  "New field values"
// @Success      200          {object}  domain.Account
// @Failure      403          {object}  map[string]string
// @Failure      404          {object}  map[string]string
// @Failure      409          {object}  map[string]string
// @Router       /users/{employee_id} [put]
func (h *DirectoryHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.directory.Update(c.Request().Context(), actor, c.Param("employee_id"), ports.UpdateAccountInput{
		EmployeeID: req.EmployeeID,
		Email:      req.Email,
		Role:       domain.Role(req.Role),
		Active:     req.Active,
	})
	if err != nil {
		metrics.DirectoryOpsTotal.WithLabelValues("update", opResult(err)).Inc()
		return err
	}
	metrics.DirectoryOpsTotal.WithLabelValues("update", "ok").Inc()
	return c.JSON(http.StatusOK, account)
}

// ChangePassword writes a new credential for an account.
//
// @Summary      Change an account password
// @Tags         directory
// @Accept       json
// @Param        employee_id  path  string                 true  "Employee ID"
// @Param        body         body  changePasswordRequest  true  "New password"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users/{employee_id}/password [put]
func (h *DirectoryHandler) ChangePassword(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.directory.ChangePassword(c.Request().Context(), actor, c.Param("employee_id"), req.Password); err != nil {
		metrics.DirectoryOpsTotal.WithLabelValues("change_password", opResult(err)).Inc()
		return err
	}
	metrics.DirectoryOpsTotal.WithLabelValues("change_password", "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Delete removes an account. Deleting the caller's own account is refused.
//
// @Summary      Delete an account
// @Tags         directory
// @Param        employee_id  path  string  true  "Employee ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{employee_id} [delete]
func (h *DirectoryHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.directory.Delete(c.Request().Context(), actor, c.Param("employee_id")); err != nil {
		metrics.DirectoryOpsTotal.WithLabelValues("delete", opResult(err)).Inc()
		return err
	}
	metrics.DirectoryOpsTotal.WithLabelValues("delete", "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

// opResult buckets a directory error for the metrics label.
func opResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return "denied"
	case domain.IsConflict(err):
		return "conflict"
	case domain.IsValidation(err):
		return "invalid"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	default:
		return "error"
	}
}
