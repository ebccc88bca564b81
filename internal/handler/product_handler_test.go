package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admindash/internal/repository"
)

var listAll = repository.ListOptions{Limit: repository.MaxPageSize}

func TestProducts_RequireSession(t *testing.T) {
	h := newHarness(t)

	res := h.do(h.client, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "No authentication token found", res.body["error"])

	res = h.do(h.client, http.MethodPost, "/api/products", map[string]any{"name": "Desk", "price": 10})
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestProducts_CRUD(t *testing.T) {
	h := newHarness(t)
	reg := h.do(h.client, http.MethodPost, "/auth/register", register("Ann", "ann@x.com", "secret1"))
	require.Equal(t, http.StatusCreated, reg.status)

	created := h.do(h.client, http.MethodPost, "/api/products", map[string]any{
		"name":     "Desk",
		"price":    "149.90",
		"category": "office",
		"stock":    4,
	})
	require.Equal(t, http.StatusCreated, created.status)
	product := created.data()["product"].(map[string]any)
	id := product["_id"].(string)
	assert.Equal(t, "149.9", product["price"])
	assert.Equal(t, reg.user()["_id"], product["createdBy"])
	assert.Equal(t, true, product["isActive"])

	got := h.do(h.client, http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusOK, got.status)

	updated := h.do(h.client, http.MethodPut, "/api/products/"+id, map[string]any{"stock": 9})
	require.Equal(t, http.StatusOK, updated.status)
	assert.Equal(t, float64(9), updated.data()["product"].(map[string]any)["stock"])
	assert.Equal(t, "Desk", updated.data()["product"].(map[string]any)["name"])

	list := h.do(h.client, http.MethodGet, "/api/products?category=office&limit=5", nil)
	require.Equal(t, http.StatusOK, list.status)
	assert.Len(t, list.data()["products"], 1)
	pagination := list.data()["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["total"])
	assert.Equal(t, float64(5), pagination["limit"])

	deleted := h.do(h.client, http.MethodDelete, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusOK, deleted.status)

	missing := h.do(h.client, http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, "Product not found", missing.body["error"])
}

func TestProducts_Validation(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.do(h.client, http.MethodPost, "/auth/register", register("Ann", "ann@x.com", "secret1")).status)

	tests := []struct {
		name    string
		body    map[string]any
		wantMsg string
	}{
		{"missing price", map[string]any{"name": "Desk"}, "Please provide a price"},
		{"missing name", map[string]any{"price": 1}, "Please provide a name"},
		{"negative price", map[string]any{"name": "Desk", "price": -1}, "Price cannot be negative"},
		{"negative stock", map[string]any{"name": "Desk", "price": 1, "stock": -2}, "Stock must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.do(h.client, http.MethodPost, "/api/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, res.status)
			assert.Equal(t, tt.wantMsg, res.body["error"])
		})
	}
}

func TestListings_HugePageIsEmpty(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.do(h.client, http.MethodPost, "/auth/register", register("Ann", "ann@x.com", "secret1")).status)
	require.Equal(t, http.StatusCreated, h.do(h.client, http.MethodPost, "/api/products", map[string]any{"name": "Desk", "price": "10"}).status)

	for _, path := range []string{
		"/api/users?page=9223372036854775807",
		"/api/products?page=9223372036854775807&limit=100",
	} {
		t.Run(path, func(t *testing.T) {
			res := h.do(h.client, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, res.status)

			page := res.data()["pagination"].(map[string]any)
			assert.Equal(t, float64(1), page["total"])
			for _, key := range []string{"users", "products"} {
				if items, ok := res.data()[key]; ok {
					assert.Empty(t, items)
				}
			}
		})
	}
}
