// Package server contains the HTTP handlers and routing for the craftery API.
package server

import (
	"context"
	"fmt"
	"time"

	"craftery/internal/cache"
	"craftery/internal/config"
	"craftery/internal/database"
	"craftery/internal/middleware"
	"craftery/internal/models"
	"craftery/internal/repository"
	"craftery/internal/service"
	"craftery/internal/session"
	"craftery/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// sessionCookie is the cookie the client holds; its value is the opaque
// session token and nothing else.
const sessionCookie = "craftery_session"

// Server holds all dependencies and provides handlers
type Server struct {
	config   *config.Config
	db       *gorm.DB
	redis    *redis.Client
	sessions *session.Manager

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	favoriteRepo repository.FavoriteRepository

	auth      *service.AuthService
	posts     *service.PostService
	favorites *service.FavoriteService
	images    *service.ImageService

	app *fiber.App
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()
	if redisClient == nil {
		return nil, fmt.Errorf("redis connection failed: sessions require a reachable store")
	}

	var store storage.ObjectStore
	if minioStore, err := storage.NewMinioStore(cfg); err != nil {
		// Image uploads are degraded, everything else still works.
		middleware.Logger.Warn("object store unavailable, image uploads disabled", "error", err.Error())
	} else {
		store = minioStore
	}

	return NewServerWithDeps(cfg, db, redisClient, store), nil
}

// NewServerWithDeps wires a server from pre-built dependencies. Tests use it
// to supply an in-memory database, miniredis, and a fake object store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	sessions := session.NewManager(redisClient, cfg.SessionTTL)

	s := &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		sessions:     sessions,
		userRepo:     userRepo,
		postRepo:     postRepo,
		favoriteRepo: favoriteRepo,
		auth:         service.NewAuthService(userRepo, sessions),
		posts:        service.NewPostService(postRepo),
		favorites:    service.NewFavoriteService(favoriteRepo, postRepo),
	}
	if store != nil {
		s.images = service.NewImageService(store)
	}
	return s
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	// Security headers
	app.Use(helmet.New())

	prom := middleware.InitMetrics("craftery")
	prom.RegisterAt(app, "/metrics")
	app.Use(middleware.MetricsMiddleware(prom))

	// Structured Logging middleware
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.SessionRequired(), s.Logout)

	// Public post routes (browse/search); a session, when present, marks the
	// viewer's favorites in the response.
	publicPosts := api.Group("/posts", s.OptionalSession())
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/search", middleware.RateLimit(s.redis, 10, time.Minute, "search"), s.SearchPosts)
	publicPosts.Get("/category/:category", s.GetPostsByCategory)
	publicPosts.Get("/:id", s.GetPost)

	// Protected routes
	protected := api.Group("", s.SessionRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Get("/me/favorites", s.GetMyFavorites)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.ImageUpload(), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/favorite", s.FavoritePost)
	posts.Delete("/:id/favorite", s.UnfavoritePost)
	posts.Put("/:id", s.ImageUpload(), s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the backing stores are reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ready",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// SessionRequired guards a route: the request must carry a valid session
// cookie. On success the resolved user id lands in c.Locals("userID") and the
// request context, so handlers and the logger see it.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessionCookie)
		if token == "" {
			return models.RespondWithAppError(c, models.NewUnauthenticatedError("Login required"))
		}

		userID, ok, err := s.sessions.Validate(c.UserContext(), token)
		if err != nil {
			return models.RespondWithAppError(c, models.NewStoreError(err))
		}
		if !ok {
			return models.RespondWithAppError(c, models.NewUnauthenticatedError("Session expired, please log in again"))
		}

		s.bindUser(c, userID)
		return c.Next()
	}
}

// OptionalSession resolves the session cookie when present but lets the
// request through either way. Store failures degrade to an anonymous view.
func (s *Server) OptionalSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessionCookie)
		if token != "" {
			if userID, ok, err := s.sessions.Validate(c.UserContext(), token); err == nil && ok {
				s.bindUser(c, userID)
			}
		}
		return c.Next()
	}
}

func (s *Server) bindUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, userID))
}

// currentUserID returns the authenticated user id, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   s.config.Env == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(s.config.SessionTTL.Seconds()),
		Path:     "/",
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		HTTPOnly: true,
		Secure:   s.config.Env == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})
}

// App builds the configured Fiber application.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Craftery API",
		// Room for a full-size image upload plus form fields.
		BodyLimit: 12 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fiberErr, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fiberErr.Code, fiberErr)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			return models.RespondWithAppError(c, err)
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting connections, drains in-flight requests, and
// releases the server's resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down http server", "error", err.Error())
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr.Error())
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr.Error())
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
