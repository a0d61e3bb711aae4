package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/tajious/repairdesk/internal/api/handlers"
	"github.com/tajious/repairdesk/internal/api/router"
	"github.com/tajious/repairdesk/internal/config"
	"github.com/tajious/repairdesk/internal/logger"
	"github.com/tajious/repairdesk/internal/middleware"
	"github.com/tajious/repairdesk/internal/service"
	"github.com/tajious/repairdesk/internal/session"
	"github.com/tajious/repairdesk/internal/storage"
	"github.com/tajious/repairdesk/internal/tokens"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Environment)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := storage.NewPostgresStorage(storage.BuildDSN(cfg.Database))
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Seed.AdminPhone != "" && cfg.Seed.AdminPassword != "" {
		created, err := storage.SeedAdmin(ctx, store, cfg.Seed.AdminPhone, cfg.Seed.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("seeded administrator account", "phone", cfg.Seed.AdminPhone)
		}
	}

	redisClient, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	issuer := tokens.NewIssuer(cfg.JWT.AccessSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshSecret, cfg.JWT.RefreshTTL)
	sessions := session.NewRedisStore(redisClient)
	authService := service.NewAuthService(store, sessions, issuer, log)
	userService := service.NewUserService(store, sessions, log)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "RepairDesk",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New())

	// Initialize handlers and middleware
	authHandler := handlers.NewAuthHandler(authService, handlers.CookieConfig{
		Secure:     cfg.Server.CookieSecure,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, log)
	userHandler := handlers.NewUserHandler(userService, log)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Check{
		"postgres": store.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}, log)
	authMiddleware := middleware.NewAuthMiddleware(issuer)
	rateLimiter := middleware.NewRateLimiter(middleware.NewRedisStore(redisClient), cfg.Server.RateLimit.Enabled, log)

	// Initialize router
	apiRouter := router.NewRouter(
		app,
		authHandler,
		userHandler,
		healthHandler,
		authMiddleware,
		rateLimiter,
		cfg.Server,
	)

	// Setup routes
	apiRouter.SetupRoutes()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	log.Info("server starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
	if err := app.Listen(":" + cfg.Server.Port); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newRedisClient prefers REDIS_URL and falls back to host and port.
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
