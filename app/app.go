// Package app assembles the service: configuration, logging, database,
// auth stack and the content routes, mounted on a single fiber app.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/goliatone/go-boards/auth"
	"github.com/goliatone/go-boards/config"
	"github.com/goliatone/go-boards/content"
	"github.com/goliatone/go-boards/logging"
	"github.com/goliatone/go-boards/persistence"
	"github.com/uptrace/bun"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   *logging.SlogLogger
	provider auth.LoggerProvider
	bunDB    *bun.DB
	repo     auth.RepositoryManager
	tokens   *auth.TokenServiceImpl
	users    *auth.UserProvider
	auther   *auth.Auther
	httpAuth *auth.RouteAuthenticator
	srv      *fiber.App
}

// Option customizes New
type Option func(*App)

// WithRootLogger replaces the logger built from LOG_LEVEL and LOG_FORMAT
func WithRootLogger(logger *logging.SlogLogger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New wires every component. The database is opened and migrated before
// any route is mounted.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: missing config")
	}

	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logging.New(logging.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
		})
	}
	a.provider = logging.NewProvider(a.logger)

	if err := WithPersistence(ctx, a); err != nil {
		return nil, err
	}

	if err := WithAuth(ctx, a); err != nil {
		_ = a.Close()
		return nil, err
	}

	WithHTTPServer(a)
	AuthRoutes(a)
	ContentRoutes(a)

	return a, nil
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) GetLogger(name string) auth.Logger {
	return a.provider.GetLogger(name)
}

func (a *App) DB() *bun.DB {
	return a.bunDB
}

// Handler exposes the fiber app, mostly for app.Test
func (a *App) Handler() *fiber.App {
	return a.srv
}

// WithPersistence opens the database and applies migrations when
// DB_AUTO_MIGRATE is set.
func WithPersistence(ctx context.Context, a *App) error {
	cfg := a.config.DB

	db, err := persistence.Open(ctx, cfg, a.GetLogger("persistence"))
	if err != nil {
		return err
	}

	if cfg.AutoMigrate {
		if err := persistence.Migrate(ctx, db, cfg.Driver, a.GetLogger("migrations")); err != nil {
			_ = db.Close()
			return err
		}
	}

	a.bunDB = db
	a.repo = auth.NewRepositoryManager(db)

	return a.repo.Validate()
}

// WithAuth builds the token service, identity provider and authenticators
func WithAuth(_ context.Context, a *App) error {
	cfg := a.config
	hasher := auth.BcryptHasher{}

	var tokenOpts []auth.TokenServiceOption
	if cfg.JWTKeyID != "" {
		tokenOpts = append(tokenOpts, auth.WithKeyID(cfg.JWTKeyID))
	}
	if len(cfg.JWTPreviousKeys) > 0 {
		tokenOpts = append(tokenOpts, auth.WithVerificationKeys(cfg.JWTPreviousKeys))
	}

	a.tokens = auth.NewTokenServiceFromConfig(cfg, a.GetLogger("tokens"), tokenOpts...)

	a.users = auth.NewUserProvider(a.repo.Users(), hasher).
		WithLogger(a.GetLogger("users"))

	a.auther = auth.NewAuthenticator(a.users, auth.NewSignupHandler(a.repo, hasher), a.tokens).
		WithLogger(a.GetLogger("auth")).
		WithActivitySink(auth.NewLoggerActivitySink(a.GetLogger("activity"))).
		WithDeterministicIDs(cfg.DeterministicIDs)

	httpAuth, err := auth.NewHTTPAuthenticator(a.tokens, a.users, cfg)
	if err != nil {
		return fmt.Errorf("http authenticator: %w", err)
	}
	a.httpAuth = httpAuth.WithLogger(a.GetLogger("jwt"))

	return nil
}

func WithHTTPServer(a *App) {
	a.srv = fiber.New(fiber.Config{
		AppName:               "boards",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(a.GetLogger("http")),
	})

	a.srv.Use(recover.New(recover.Config{EnableStackTrace: a.config.IsDevelopment()}))
	a.srv.Use(requestid.New())
	a.srv.Use(RequestLogger(a.GetLogger("http")))

	a.srv.Get("/healthz", HealthHandler(a.bunDB)).Name("health")
}

func AuthRoutes(a *App) {
	auth.RegisterAuthRoutes(a.srv.Group("/api/auth"),
		auth.WithAuthenticator(a.auther),
		auth.WithRouteAuthenticator(a.httpAuth),
		auth.WithControllerLogger(a.GetLogger("auth.http")),
		auth.WithSigninLimit(a.config.SigninRateLimit),
		auth.WithDebug(a.config.IsDevelopment()),
	)
}

// ContentRoutes mounts articles, boards and blogs under /api. Blogs use the
// in memory store unless BLOG_STORE=database.
func ContentRoutes(a *App) {
	api := a.srv.Group("/api")
	protected := a.httpAuth.ProtectedRoute()

	articles := content.NewService(content.Articles, content.NewBunStore(a.bunDB, content.Articles)).
		WithLogger(a.GetLogger("articles"))
	content.RegisterRoutes(api, protected, articles, a.GetLogger("articles.http"))

	boards := content.NewService(content.Boards, content.NewBunStore(a.bunDB, content.Boards)).
		WithLogger(a.GetLogger("boards"))
	content.RegisterRoutes(api, protected, boards, a.GetLogger("boards.http"))

	var blogStore content.Store[*content.Blog] = content.NewMemoryStore(content.Blogs)
	if a.config.BlogStore == "database" {
		blogStore = content.NewBunStore(a.bunDB, content.Blogs)
	}
	blogs := content.NewService(content.Blogs, blogStore).
		WithLogger(a.GetLogger("blogs"))
	content.RegisterRoutes(api, protected, blogs, a.GetLogger("blogs.http"))
}

// Run serves until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then drains in-flight requests and closes the database.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.config.Addr())
		errc <- a.srv.Listen(a.config.Addr())
	}()

	select {
	case err := <-errc:
		_ = a.Close()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.srv.ShutdownWithContext(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}

	return a.Close()
}

func (a *App) Close() error {
	if a.bunDB == nil {
		return nil
	}
	return a.bunDB.Close()
}
