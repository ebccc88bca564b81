// Package client talks to the dashboard API over HTTP and keeps the
// client-side view of the current session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"admindash/internal/model"
)

// ErrUnavailable is returned when the server cannot be reached.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx answer from the server. Message is the server's
// client-facing error text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// HTTPClient is a cookie-aware client of the dashboard API.
type HTTPClient struct {
	baseURL    *url.URL
	cookieName string
	http       *http.Client
}

// ClientOption customizes an HTTPClient.
type ClientOption func(*HTTPClient)

// WithCookieName sets the session cookie name. It must match the server's
// COOKIE_NAME.
func WithCookieName(name string) ClientOption {
	return func(c *HTTPClient) {
		c.cookieName = name
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.http.Timeout = d
	}
}

// NewHTTPClient returns a client of the API at baseURL with its own cookie jar.
func NewHTTPClient(baseURL string, opts ...ClientOption) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		baseURL:    u,
		cookieName: "auth-token",
		http:       &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SessionToken returns the session token currently held in the cookie jar.
func (c *HTTPClient) SessionToken() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == c.cookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken places token into the cookie jar, as if the server had
// set it. An empty token removes the session cookie.
func (c *HTTPClient) SetSessionToken(token string) {
	ck := &http.Cookie{Name: c.cookieName, Value: token, Path: "/"}
	if token == "" {
		ck.MaxAge = -1
	}
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{ck})
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type userData struct {
	User *model.User `json:"user"`
}

// WhoAmI returns the user the server associates with the current session.
func (c *HTTPClient) WhoAmI(ctx context.Context) (*model.User, error) {
	var data userData
	if err := c.do(ctx, http.MethodGet, "/auth/whoami", nil, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// Login authenticates and stores the session cookie.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*model.User, error) {
	var data userData
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age,omitempty"`
}

// Register creates an account and stores the session cookie.
func (c *HTTPClient) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	var data userData
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// Logout asks the server to clear the session cookie.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ProductQuery filters a product listing.
type ProductQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// ProductPage is one page of products.
type ProductPage struct {
	Products   []model.Product  `json:"products"`
	Pagination model.Pagination `json:"pagination"`
}

// ListProducts returns one page of products.
func (c *HTTPClient) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	path := "/api/products"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var page ProductPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

type productData struct {
	Product *model.Product `json:"product"`
}

// GetProduct returns the product with id.
func (c *HTTPClient) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var data productData
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &data); err != nil {
		return nil, err
	}
	return data.Product, nil
}

// NewProduct carries the fields of a product to create.
type NewProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Stock       int             `json:"stock"`
}

// CreateProduct creates a product.
func (c *HTTPClient) CreateProduct(ctx context.Context, p NewProduct) (*model.Product, error) {
	var data productData
	if err := c.do(ctx, http.MethodPost, "/api/products", p, &data); err != nil {
		return nil, err
	}
	return data.Product, nil
}

// DeleteProduct deletes the product with id.
func (c *HTTPClient) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
