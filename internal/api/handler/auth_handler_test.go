package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/rollertrack/access-api/internal/core/domain"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, email, secretText string, claimedRole domain.Role) (domain.LoginOutcome, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, secretText string, claimedRole domain.Role) (domain.LoginOutcome, error) {
	return s.loginFn(ctx, email, secretText, claimedRole)
}

func newLoginContext(t *testing.T, e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, secretText string, claimedRole domain.Role) (domain.LoginOutcome, error) {
			if email != "alice@plant.example" || secretText != "s3cret1" || claimedRole != domain.RoleAdmin {
				t.Fatalf("unexpected args: %s %s %s", email, secretText, claimedRole)
			}
			return domain.SuccessOutcome("EMP-1", domain.RoleAdmin), nil
		},
	}
	handler := NewAuthHandler(stub, "signing-key", time.Hour)

	c, rec := newLoginContext(t, e, `{"email":"alice@plant.example","password":"s3cret1","role":"admin"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["employee_id"] != "EMP-1" || resp["role"] != "admin" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	tokenStr, _ := resp["token"].(string)
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("signing-key"), nil
	})
	if err != nil || !tkn.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims["employee_id"] != "EMP-1" || claims["role"] != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthHandler_Login_CredentialFailuresShareMessage(t *testing.T) {
	// Unknown identity, wrong password, and role mismatch must be
	// indistinguishable in the response body.
	outcomes := []domain.LoginOutcome{
		domain.UnknownIdentityOutcome(),
		domain.InvalidCredentialOutcome(2),
		domain.RoleMismatchOutcome(1),
	}
	for _, outcome := range outcomes {
		e := echo.New()
		stub := &stubAuthService{
			loginFn: func(context.Context, string, string, domain.Role) (domain.LoginOutcome, error) {
				return outcome, nil
			},
		}
		handler := NewAuthHandler(stub, "signing-key", time.Hour)

		c, rec := newLoginContext(t, e, `{"email":"a@plant.example","password":"pw1abc","role":"admin"}`)
		if err := handler.Login(c); err != nil {
			t.Fatalf("%s: handler error: %v", outcome.Kind, err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", outcome.Kind, rec.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp["error"] != loginFailedMessage {
			t.Fatalf("%s: expected unified failure message, got %v", outcome.Kind, resp["error"])
		}
		if _, hasToken := resp["token"]; hasToken {
			t.Fatalf("%s: failure response must not carry a token", outcome.Kind)
		}
	}
}

func TestAuthHandler_Login_LockedOut(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, domain.Role) (domain.LoginOutcome, error) {
			return domain.LockedOutOutcome(90 * time.Second), nil
		},
	}
	handler := NewAuthHandler(stub, "signing-key", time.Hour)

	c, rec := newLoginContext(t, e, `{"email":"a@plant.example","password":"pw1abc","role":"admin"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["retry_after_seconds"] != float64(90) {
		t.Fatalf("expected retry_after_seconds 90, got %v", resp["retry_after_seconds"])
	}
}

func TestAuthHandler_Login_InactiveAccount(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, domain.Role) (domain.LoginOutcome, error) {
			return domain.InactiveAccountOutcome(), nil
		},
	}
	handler := NewAuthHandler(stub, "signing-key", time.Hour)

	c, rec := newLoginContext(t, e, `{"email":"a@plant.example","password":"pw1abc","role":"admin"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_BackendUnavailable(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, domain.Role) (domain.LoginOutcome, error) {
			return domain.BackendUnavailableOutcome(), domain.ErrBackendUnavailable
		},
	}
	handler := NewAuthHandler(stub, "signing-key", time.Hour)

	c, _ := newLoginContext(t, e, `{"email":"a@plant.example","password":"pw1abc","role":"admin"}`)
	err := handler.Login(c)
	if err == nil {
		t.Fatalf("expected error to propagate to the error handler")
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, domain.Role) (domain.LoginOutcome, error) {
			t.Fatalf("should not be called")
			return domain.LoginOutcome{}, nil
		},
	}
	handler := NewAuthHandler(stub, "signing-key", time.Hour)

	c, rec := newLoginContext(t, e, "{")
	_ = handler.Login(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_RejectsUnknownRoleClaim(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, domain.Role) (domain.LoginOutcome, error) {
			t.Fatalf("should not be called")
			return domain.LoginOutcome{}, nil
		},
	}
	handler := NewAuthHandler(stub, "signing-key", time.Hour)

	c, rec := newLoginContext(t, e, `{"email":"a@plant.example","password":"pw1abc","role":"manager"}`)
	_ = handler.Login(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unlisted role, got %d", rec.Code)
	}
}
