package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperr "admindash/internal/errors"
	"admindash/internal/model"
	"admindash/internal/service"
	"admindash/internal/validation"
)

// ProductHandler serves product CRUD endpoints.
type ProductHandler struct {
	svc service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// CreateProductRequest represents a product creation request.
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required" swaggertype:"number"`
	Category    string           `json:"category"`
	Stock       int              `json:"stock"`
	IsActive    *bool            `json:"isActive"`
}

// UpdateProductRequest represents a partial product update. Omitted fields
// are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" swaggertype:"number"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"isActive"`
}

// ListProducts godoc
// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size, at most 100" default(10)
// @Param search query string false "Name or description contains"
// @Param category query string false "Exact category"
// @Success 200 {object} Response{data=ProductsData}
// @Failure 401 {object} Response
// @Router /api/products [get]
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, page, err := h.svc.ListProducts(c.Request().Context(), listOptions(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, ProductsData{Products: products, Pagination: page}, "")
}

// GetProduct godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} Response{data=ProductData}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/products/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.svc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, ProductData{Product: product}, "")
}

// CreateProduct godoc
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product"
// @Success 201 {object} Response{data=ProductData}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return apperr.Validation(validation.Message(err))
	}

	var createdBy string
	if u := CurrentUser(c); u != nil {
		createdBy = u.ID
	}

	product, err := h.svc.CreateProduct(c.Request().Context(), createdBy, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, ProductData{Product: product}, "Product created successfully")
}

// UpdateProduct godoc
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body UpdateProductRequest true "Fields to change"
// @Success 200 {object} Response{data=ProductData}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	product, err := h.svc.UpdateProduct(c.Request().Context(), c.Param("id"), model.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, ProductData{Product: product}, "Product updated successfully")
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.svc.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return ok(c, http.StatusOK, nil, "Product deleted successfully")
}
