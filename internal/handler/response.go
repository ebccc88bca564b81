package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperr "admindash/internal/errors"
	"admindash/internal/logging"
	"admindash/internal/model"
)

// Response is the envelope of every JSON response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// UserData wraps a single user.
type UserData struct {
	User *model.User `json:"user"`
}

// UsersData wraps one page of users.
type UsersData struct {
	Users      []model.User     `json:"users"`
	Pagination model.Pagination `json:"pagination"`
}

// ProductData wraps a single product.
type ProductData struct {
	Product *model.Product `json:"product"`
}

// ProductsData wraps one page of products.
type ProductsData struct {
	Products   []model.Product  `json:"products"`
	Pagination model.Pagination `json:"pagination"`
}

func ok(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, Response{Success: true, Data: data, Message: message})
}

// NewErrorHandler returns an echo error handler rendering errors in the
// response envelope. Internal failures are logged and reported with a
// generic message.
func NewErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   Response
		)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			body = Response{Error: fmt.Sprint(he.Message), Code: codeForStatus(status)}
			if status >= http.StatusInternalServerError {
				body.Error = apperr.MsgInternal
			}
		} else {
			mapped := apperr.MapErrorToHTTP(err)
			status = mapped.StatusCode
			body = Response{Error: mapped.Message, Code: mapped.Code}
		}

		if status >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "request failed",
				"error", err,
				"method", c.Request().Method,
				"path", c.Path(),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error(c.Request().Context(), "write error response", "error", err)
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return ""
	}
}

func invalidBody() error {
	return apperr.Validation("Invalid request body")
}

// CurrentUser returns the authenticated user stored on the context by the
// session middleware, or nil.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(UserContextKey).(*model.User)
	return u
}

// UserContextKey is the echo context key holding the authenticated user.
const UserContextKey = "user"
