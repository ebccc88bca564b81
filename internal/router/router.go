package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"admindash/docs"
	"admindash/internal/config"
	apperr "admindash/internal/errors"
	"admindash/internal/handler"
	"admindash/internal/logging"
	"admindash/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log logging.Logger,
	validate *validator.Validate,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
) {
	e.HTTPErrorHandler = handler.NewErrorHandler(log)
	e.Validator = &CustomValidator{validator: validate}

	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	authGroup := e.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/whoami", authHandler.WhoAmI)
	authGroup.GET("/me", authHandler.WhoAmI)

	// Secured routes (require a valid session cookie)
	secured := e.Group("/api", sessionMiddleware(cfg.CookieName, authService))

	secured.GET("/users", userHandler.ListUsers)
	secured.GET("/users/:id", userHandler.GetUser)
	secured.PATCH("/users/:id/status", userHandler.SetStatus)

	secured.GET("/products", productHandler.ListProducts)
	secured.POST("/products", productHandler.CreateProduct)
	secured.GET("/products/:id", productHandler.GetProduct)
	secured.PUT("/products/:id", productHandler.UpdateProduct)
	secured.DELETE("/products/:id", productHandler.DeleteProduct)
}

// sessionMiddleware reads the session cookie and resolves it to the current
// user through WhoAmI, so protected routes apply exactly the same checks.
func sessionMiddleware(cookieName string, authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.UserContextKey,
		TokenLookup: "cookie:" + cookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.WhoAmI(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return appErr
			}
			// The cookie could not be extracted at all.
			return apperr.ErrMissingToken
		},
	})
}

func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Status >= http.StatusInternalServerError {
				log.Error(c.Request().Context(), "request", args...)
				return nil
			}
			log.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
