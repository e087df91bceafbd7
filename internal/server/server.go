package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"forum/internal/cache"
	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/notifications"
	"forum/internal/observability"
	"forum/internal/repository"
	"forum/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

//go:embed views
var viewsFS embed.FS

// Server holds all dependencies and provides handlers
type Server struct {
	config           *config.Config
	db               *gorm.DB
	redis            *redis.Client
	app              *fiber.App
	sessions         *session.Store
	promMiddleware   *fiberprometheus.FiberPrometheus
	shutdownCtx      context.Context
	shutdownFn       context.CancelFunc
	userRepo         repository.UserRepository
	communityRepo    repository.CommunityRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	voteRepo         repository.VoteRepository
	notifier         *notifications.Notifier
	hub              *notifications.Hub
	authService      *service.AuthService
	communityService *service.CommunityService
	postService      *service.PostService
	commentService   *service.CommentService
	userService      *service.UserService
}

// NewServer connects the database and Redis described by cfg and builds a Server on them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, rate limiting and the realtime feed are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		userRepo:       repository.NewUserRepository(db),
		communityRepo:  repository.NewCommunityRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		voteRepo:       repository.NewVoteRepository(db),
		sessions:       newSessionStore(cfg),
	}

	var (
		communityEvents service.CommunityEventPublisher
		postEvents      service.PostEventPublisher
		commentEvents   service.CommentEventPublisher
	)
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		communityEvents, postEvents, commentEvents = s.notifier, s.notifier, s.notifier
	}

	s.authService = service.NewAuthService(s.userRepo, cfg.JWTSecret, redisClient)
	s.communityService = service.NewCommunityService(s.communityRepo, communityEvents)
	s.postService = service.NewPostService(s.postRepo, s.voteRepo, s.userRepo, s.communityService, postEvents)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.voteRepo, commentEvents)
	s.userService = service.NewUserService(s.userRepo)

	return s, nil
}

func newSessionStore(cfg *config.Config) *session.Store {
	hours := cfg.SessionExpirationHours
	if hours <= 0 {
		hours = 24
	}
	return session.New(session.Config{
		Expiration:     time.Duration(hours) * time.Hour,
		KeyLookup:      "cookie:forum_session",
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookiePath:     "/",
	})
}

func newViewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}
	return html.NewFileSystem(http.FS(sub), ".html"), nil
}

// NewApp builds the Fiber application with middleware and routes.
func (s *Server) NewApp() (*fiber.App, error) {
	engine, err := newViewEngine()
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:           "Forum",
		Views:             engine,
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
		ErrorHandler:      s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app, nil
}

// errorHandler answers JSON under /api and plain text elsewhere.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var status int
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else {
		status = models.StatusFor(err)
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"path", c.Path(), "status", status, "error", err)
	}

	if isAPIPath(c.Path()) {
		if fe == nil && models.ErrorCode(err) == models.CodeInternal {
			err = models.NewInternalError(err)
		}
		return models.RespondWithError(c, status, err)
	}

	message := http.StatusText(status)
	if fe != nil {
		message = fe.Message
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(status).SendString(message)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.CurrentUser(s.sessions))
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	if s.config.CSRFEnabled {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:_csrf",
			CookieName:     "forum_csrf",
			CookieSameSite: "Lax",
			CookieSecure:   s.config.CookieSecure,
			CookieHTTPOnly: true,
			Expiration:     time.Hour,
			ContextKey:     csrfContextKey,
			Next: func(c *fiber.Ctx) bool {
				return isAPIPath(c.Path())
			},
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// HTML pages
	app.Get("/", s.Index)
	app.Get("/index", s.Index)

	auth := app.Group("/auth")
	auth.Get("/register", s.ShowRegister)
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Get("/login", s.ShowLogin)
	auth.Post("/login", middleware.RateLimitWithPolicy(s.redis, 10, 5*time.Minute, middleware.FailClosed, "login"), s.Login)
	auth.Get("/logout", s.Logout)
	auth.Post("/logout", s.Logout)

	communities := app.Group("/communities")
	communities.Get("/", s.ListCommunities)
	communities.Get("/create", middleware.LoginRequired(s.sessions), s.ShowCreateCommunity)
	communities.Post("/create", middleware.LoginRequired(s.sessions),
		middleware.RateLimit(s.redis, 5, time.Minute, "create_community"), s.CreateCommunity)

	// JSON API
	api := app.Group("/api")
	tokenRequired := middleware.TokenRequired(s.config.JWTSecret, s.redis)

	apiAuth := api.Group("/auth")
	apiAuth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.APIRegister)
	apiAuth.Post("/login", middleware.RateLimitWithPolicy(s.redis, 10, 5*time.Minute, middleware.FailClosed, "login"), s.APILogin)
	apiAuth.Post("/logout", tokenRequired, s.APILogout)

	apiCommunities := api.Group("/communities")
	apiCommunities.Get("/", s.APIListCommunities)
	apiCommunities.Post("/", tokenRequired,
		middleware.RateLimit(s.redis, 5, time.Minute, "create_community"), s.APICreateCommunity)
	apiCommunities.Get("/:identifier", s.APIGetCommunity)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", tokenRequired, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/community/:communityIdentifier", s.ListCommunityPosts)
	posts.Get("/author/:userId", s.ListUserPosts)
	posts.Get("/:postId", s.GetPost)
	posts.Put("/:postId", tokenRequired, s.UpdatePost)
	posts.Delete("/:postId", tokenRequired, s.DeletePost)

	comments := api.Group("/comments")
	comments.Post("/", tokenRequired, middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	comments.Get("/post/:postId", s.ListPostComments)

	votes := api.Group("/votes", tokenRequired, middleware.RateLimit(s.redis, 60, time.Minute, "vote"))
	votes.Post("/post/:postId", s.VotePost)
	votes.Post("/comment/:commentId", s.VoteComment)

	users := api.Group("/users", tokenRequired)
	users.Get("/profile", s.GetMyProfile)
	users.Put("/profile", s.UpdateMyProfile)
	users.Put("/profile/change-password", middleware.RateLimit(s.redis, 5, 10*time.Minute, "change_password"), s.ChangePassword)

	api.Get("/ws/communities", s.requireFeed, s.CommunityFeedHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is required for the
// realtime feed, so its absence makes the instance unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app, wires the realtime hub to Redis and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app, err := s.NewApp()
	if err != nil {
		return err
	}
	s.app = app

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring", "hub", s.hub.Name(), "error", err)
			}
		}()
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", "hub", s.hub.Name(), "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
