package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/docvault/document-system/docs" // swagger spec
	"github.com/docvault/document-system/internal/api/handler"
	"github.com/docvault/document-system/internal/api/middleware"
	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

const metricsSubsystem = "docvault"

// Dependencies are the services the router exposes over HTTP.
type Dependencies struct {
	Auth        ports.AuthService
	Users       ports.UserService
	Roles       ports.RoleService
	Documents   ports.DocumentService
	Tokens      middleware.TokenVerifier
	Revocations ports.TokenRevocations
	// Health maps a dependency name to its readiness check.
	Health map[string]handler.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: deps.Registerer,
	}))

	authMW := middleware.Auth(deps.Tokens, deps.Revocations, log)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMW)

	// --- Users ---
	userHandler := handler.NewUserHandler(deps.Users)
	users := e.Group("/users", authMW)
	users.GET("", userHandler.List, adminOnly)
	users.GET("/me", userHandler.Me)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Roles ---
	roleHandler := handler.NewRoleHandler(deps.Roles)
	e.GET("/roles", roleHandler.List, authMW)

	// --- Documents ---
	docHandler := handler.NewDocumentHandler(deps.Documents)
	docs := e.Group("/documents", authMW)
	docs.POST("", docHandler.Create)
	docs.GET("", docHandler.List)
	docs.GET("/:id", docHandler.Get)
	docs.PUT("/:id", docHandler.Update)
	docs.DELETE("/:id", docHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
