package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperr "admindash/internal/errors"
	"admindash/internal/repository"
	"admindash/internal/service"
	"admindash/internal/validation"
)

// UserHandler serves user administration endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// SetStatusRequest activates or deactivates a user.
type SetStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Name or email contains"
// @Success 200 {object} Response{data=UsersData}
// @Failure 401 {object} Response
// @Router /api/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, page, err := h.svc.ListUsers(c.Request().Context(), listOptions(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, UsersData{Users: users, Pagination: page}, "")
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=UserData}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, UserData{User: user}, "")
}

// SetStatus godoc
// @Summary Activate or deactivate a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body SetStatusRequest true "New status"
// @Success 200 {object} Response{data=UserData}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/users/{id}/status [patch]
func (h *UserHandler) SetStatus(c echo.Context) error {
	var req SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return apperr.Validation(validation.Message(err))
	}

	user, err := h.svc.SetActive(c.Request().Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		return err
	}

	msg := "User deactivated"
	if user.IsActive {
		msg = "User activated"
	}
	return ok(c, http.StatusOK, UserData{User: user}, msg)
}

func listOptions(c echo.Context) repository.ListOptions {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return repository.ListOptions{
		Page:     page,
		Limit:    limit,
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	}
}
