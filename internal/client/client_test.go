package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"admindash/internal/app"
	"admindash/internal/client"
	"admindash/internal/config"
	"admindash/internal/logging"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Env:           "test",
		JWTSecret:     "client-test-secret",
		TokenLifetime: time.Hour,
		CookieName:    config.DefaultCookieName,
		BcryptCost:    bcrypt.MinCost,
	}
	a, err := app.New(cfg, logging.NewDiscard(), app.MemoryStores(), nil)
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newAPI(t *testing.T, srv *httptest.Server) *client.HTTPClient {
	t.Helper()
	api, err := client.NewHTTPClient(srv.URL)
	require.NoError(t, err)
	return api
}

func registerAnn(t *testing.T, api *client.HTTPClient) {
	t.Helper()
	_, err := api.Register(context.Background(), client.RegisterInput{
		Name:     "Ann",
		Email:    "ann@x.io",
		Password: "secret1",
	})
	require.NoError(t, err)
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := client.NewHTTPClient("/api")
	assert.Error(t, err)
}

func TestHTTPClient_RegisterSetsCookie(t *testing.T) {
	srv := newServer(t)
	api := newAPI(t, srv)

	user, err := api.Register(context.Background(), client.RegisterInput{
		Name:     "Ann",
		Email:    "Ann@X.io",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", user.Email)
	assert.NotEmpty(t, api.SessionToken())

	me, err := api.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestHTTPClient_ErrorsCarryServerMessage(t *testing.T) {
	srv := newServer(t)
	api := newAPI(t, srv)

	_, err := api.WhoAmI(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))
	assert.Equal(t, "No authentication token found", err.Error())

	_, err = api.Login(context.Background(), "nobody@x.io", "whatever")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestHTTPClient_SessionTokenRoundTrip(t *testing.T) {
	srv := newServer(t)
	first := newAPI(t, srv)
	registerAnn(t, first)

	second := newAPI(t, srv)
	second.SetSessionToken(first.SessionToken())

	me, err := second.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", me.Email)

	second.SetSessionToken("")
	assert.Empty(t, second.SessionToken())
}

func TestHTTPClient_Products(t *testing.T) {
	srv := newServer(t)
	api := newAPI(t, srv)
	registerAnn(t, api)
	ctx := context.Background()

	created, err := api.CreateProduct(ctx, client.NewProduct{
		Name:     "Lamp",
		Price:    decimal.RequireFromString("19.90"),
		Category: "home",
		Stock:    3,
	})
	require.NoError(t, err)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("19.9")))

	got, err := api.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)

	page, err := api.ListProducts(ctx, client.ProductQuery{Category: "home"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, int64(1), page.Pagination.Total)

	require.NoError(t, api.DeleteProduct(ctx, created.ID))

	_, err = api.GetProduct(ctx, created.ID)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Product not found", apiErr.Message)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	srv := newServer(t)
	api := newAPI(t, srv)
	srv.Close()

	_, err := api.WhoAmI(context.Background())
	assert.ErrorIs(t, err, client.ErrUnavailable)
}
