package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tajious/repairdesk/internal/api/handlers"
	"github.com/tajious/repairdesk/internal/config"
	"github.com/tajious/repairdesk/internal/middleware"
	"github.com/tajious/repairdesk/internal/models"
)

type Router struct {
	app            *fiber.App
	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	healthHandler  *handlers.HealthHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
	limits         config.ServerConfig
}

func NewRouter(
	app *fiber.App,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	limits config.ServerConfig,
) *Router {
	return &Router{
		app:            app,
		authHandler:    authHandler,
		userHandler:    userHandler,
		healthHandler:  healthHandler,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		limits:         limits,
	}
}

func (r *Router) SetupRoutes() {
	r.app.Get("/healthz", r.healthHandler.Health)

	api := r.app.Group("/api/v1", r.rateLimiter.RateLimit("api", r.limits.RateLimit))

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/login", r.rateLimiter.RateLimit("login", r.limits.LoginRateLimit), r.authHandler.Login)
	auth.Post("/refresh", r.authHandler.Refresh)

	// Logout works without a valid access token so an expired client can
	// still end its refresh session.
	auth.Post("/logout", r.authMiddleware.Identify(), r.authHandler.Logout)

	// Protected routes
	authenticate := r.authMiddleware.Authenticate()
	perUser := r.rateLimiter.UserRateLimit("api", r.limits.UserRateLimit)
	auth.Get("/me", authenticate, perUser, r.authHandler.Me)
	auth.Put("/change-password", authenticate, perUser, r.authHandler.ChangePassword)

	users := api.Group("/users", authenticate, perUser, r.authMiddleware.RequireRole(models.RoleAdmin))
	users.Post("/", r.userHandler.CreateUser)
	users.Get("/", r.userHandler.ListUsers)
	users.Post("/:id/reset-password", r.userHandler.ResetPassword)
	users.Delete("/:id", r.userHandler.DeleteUser)
}
