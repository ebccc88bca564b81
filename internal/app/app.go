package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"admindash/internal/auth"
	"admindash/internal/cache"
	"admindash/internal/config"
	"admindash/internal/handler"
	"admindash/internal/logging"
	"admindash/internal/router"
	"admindash/internal/service"
	"admindash/internal/session"
	"admindash/internal/validation"
)

// App is the assembled HTTP server.
type App struct {
	echo   *echo.Echo
	cfg    *config.Config
	log    logging.Logger
	stores *Stores
	cache  *cache.Client

	// Tokens is exposed for tooling that needs to inspect or mint sessions.
	Tokens *auth.TokenService
}

// Option customizes New.
type Option func(*options)

type options struct {
	tokenOpts []auth.Option
}

// WithTokenOptions passes options to the token service.
func WithTokenOptions(opts ...auth.Option) Option {
	return func(o *options) {
		o.tokenOpts = append(o.tokenOpts, opts...)
	}
}

// New wires services, handlers and routes over stores. cacheClient may be nil.
func New(cfg *config.Config, log logging.Logger, stores *Stores, cacheClient *cache.Client, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenLifetime, o.tokenOpts...)
	if err != nil {
		return nil, err
	}

	validate := validation.New()
	transport := session.NewTransport(cfg.CookieName, cfg.IsProduction())
	userService := service.NewUserService(stores.Users, cacheClient)
	store := service.NewCredentialStore(
		stores.Users,
		auth.NewPasswordHasher(cfg.BcryptCost),
		validate,
		service.OnUserChange(userService.Invalidate),
	)

	authService := service.NewAuthService(store, tokens, log)
	productService := service.NewProductService(stores.Products, cacheClient, validate)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(
		e,
		cfg,
		log,
		validate,
		authService,
		handler.NewAuthHandler(authService, transport),
		handler.NewUserHandler(userService),
		handler.NewProductHandler(productService),
	)

	return &App{
		echo:   e,
		cfg:    cfg,
		log:    log,
		stores: stores,
		cache:  cacheClient,
		Tokens: tokens,
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run serves HTTP until Shutdown is called.
func (a *App) Run() error {
	a.log.Info(context.Background(), "server listening", "port", a.cfg.ServerPort)
	if err := a.echo.Start(":" + a.cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the storage and cache connections.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.echo.Shutdown(ctx)
	if cerr := a.stores.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := a.cache.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
