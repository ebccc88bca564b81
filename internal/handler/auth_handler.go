package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"admindash/internal/service"
	"admindash/internal/session"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	transport   *session.Transport
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, transport *session.Transport) *AuthHandler {
	return &AuthHandler{authService: authService, transport: transport}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age,omitempty"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account and starts a session. The session token is set as an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} Response{data=UserData}
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Failure 500 {object} Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	sess, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return err
	}

	h.transport.Attach(c.Response(), sess.Token, sess.ExpiresAt)
	return ok(c, http.StatusCreated, UserData{User: sess.User}, "Registration successful")
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=UserData}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 500 {object} Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.transport.Attach(c.Response(), sess.Token, sess.ExpiresAt)
	return ok(c, http.StatusOK, UserData{User: sess.User}, "Login successful")
}

// Logout godoc
// @Summary Logout user
// @Description Clears the session cookie. Always succeeds.
// @Tags auth
// @Produce json
// @Success 200 {object} Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := h.transport.Extract(c.Request())
	h.authService.Logout(c.Request().Context(), token)

	h.transport.Clear(c.Response())
	return ok(c, http.StatusOK, nil, "Logout successful")
}

// WhoAmI godoc
// @Summary Current user
// @Description Resolves the user of the session cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=UserData}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /auth/whoami [get]
func (h *AuthHandler) WhoAmI(c echo.Context) error {
	token, _ := h.transport.Extract(c.Request())
	user, err := h.authService.WhoAmI(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, UserData{User: user}, "")
}
