package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/rollertrack/access-api/internal/api/metrics"
	"github.com/rollertrack/access-api/internal/core/domain"
	"github.com/rollertrack/access-api/internal/core/ports"
)

// loginFailedMessage is the single client-facing text for every credential
// failure. Distinguishing unknown email from wrong password in the response
// body would be an account-enumeration side channel; the typed outcome kinds
// stay visible only in metrics and audit records.
const loginFailedMessage = "invalid email, password, or role"

type AuthHandler struct {
	authService ports.AuthService
	jwtSecret   string
	tokenTTL    time.Duration
}

func NewAuthHandler(authService ports.AuthService, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthHandler{authService: authService, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=operator admin super_admin"`
}

type loginResponse struct {
	Token      string `json:"token,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	Role       string `json:"role,omitempty"`

	Error             string `json:"error,omitempty"`
	AttemptsRemaining *int   `json:"attempts_remaining,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// Login evaluates credentials and returns a bearer token on success.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  loginResponse
// @Failure      403   {object}  loginResponse
// @Failure      423   {object}  loginResponse
// @Failure      503   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	start := time.Now()
	outcome, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, domain.Role(req.Role))

	metrics.LoginsTotal.WithLabelValues(string(outcome.Kind)).Inc()
	metrics.LoginDuration.WithLabelValues(string(outcome.Kind)).Observe(time.Since(start).Seconds())

	switch outcome.Kind {
	case domain.OutcomeSuccess:
		token, signErr := h.issueToken(outcome)
		if signErr != nil {
			return signErr
		}
		return c.JSON(http.StatusOK, loginResponse{
			Token:      token,
			EmployeeID: outcome.EmployeeID,
			Role:       string(outcome.Role),
		})

	case domain.OutcomeLockedOut:
		metrics.LockoutsTotal.Inc()
		return c.JSON(http.StatusLocked, loginResponse{
			Error:             "account temporarily locked",
			RetryAfterSeconds: int(outcome.RetryAfter.Seconds()),
		})

	case domain.OutcomeInactiveAccount:
		return c.JSON(http.StatusForbidden, loginResponse{Error: "account is inactive, contact an administrator"})

	case domain.OutcomeInvalidCredential, domain.OutcomeRoleMismatch:
		remaining := outcome.AttemptsRemaining
		return c.JSON(http.StatusUnauthorized, loginResponse{
			Error:             loginFailedMessage,
			AttemptsRemaining: &remaining,
		})

	case domain.OutcomeUnknownIdentity:
		return c.JSON(http.StatusUnauthorized, loginResponse{Error: loginFailedMessage})

	default: // backend_unavailable
		if err == nil {
			err = domain.ErrBackendUnavailable
		}
		return err
	}
}

func (h *AuthHandler) issueToken(outcome domain.LoginOutcome) (string, error) {
	claims := jwt.MapClaims{
		"employee_id": outcome.EmployeeID,
		"role":        string(outcome.Role),
		"exp":         time.Now().Add(h.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(h.jwtSecret))
}
