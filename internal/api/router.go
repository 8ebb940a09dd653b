package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rollertrack/access-api/internal/api/handler"
	"github.com/rollertrack/access-api/internal/api/middleware"
	"github.com/rollertrack/access-api/internal/core/domain"
	"github.com/rollertrack/access-api/internal/core/ports"
)

// Dependencies carries everything the router needs wired in.
type Dependencies struct {
	Auth      ports.AuthService
	Directory ports.DirectoryService
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	TokenTTL  time.Duration
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("access"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.JWTSecret, deps.TokenTTL)
	directoryHandler := handler.NewDirectoryHandler(deps.Directory)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	// --- Public routes ---
	e.POST("/auth/login", authHandler.Login)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Account directory (authenticated + capability-gated) ---
	users := e.Group("/users",
		middleware.Auth(deps.JWTSecret),
		middleware.RequireCapability(domain.CapUserManagement),
	)
	users.GET("", directoryHandler.List)
	users.GET("/search", directoryHandler.Search)
	users.GET("/:employee_id", directoryHandler.Get)
	users.POST("", directoryHandler.Create)
	users.PUT("/:employee_id", directoryHandler.Update)
	users.PUT("/:employee_id/password", directoryHandler.ChangePassword)
	users.DELETE("/:employee_id", directoryHandler.Delete)

	return e
}
