package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/api/middleware"
	"github.com/andresuchdata/joyeria/backend-go/internal/catalog"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const defaultProductPageSize = 50

type ProductService interface {
	CreateProduct(ctx context.Context, in domain.CreateProductInput, userID *string) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error)
	UpdateProduct(ctx context.Context, id string, in domain.UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UploadImage(ctx context.Context, id string, data []byte) (*domain.Product, error)
	ImportCatalog(ctx context.Context, filename string, r io.Reader, userID *string) (*catalog.Report, error)
}

// DepositQuoter offers the deposit range for reserving a product.
type DepositQuoter interface {
	QuoteDeposit(ctx context.Context, productID string) (*service.DepositQuote, error)
}

type ProductHandler struct {
	products     ProductService
	deposits     DepositQuoter
	maxUploadMem int64
}

func NewProductHandler(products ProductService, deposits DepositQuoter, maxUploadMB int) *ProductHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &ProductHandler{products: products, deposits: deposits, maxUploadMem: int64(maxUploadMB) << 20}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var in domain.CreateProductInput
	if !bindJSON(c, &in) {
		return
	}
	product, err := h.products.CreateProduct(c.Request.Context(), in, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// List supports search, category, available=true and paging.
func (h *ProductHandler) List(c *gin.Context) {
	filter := domain.ProductFilter{
		Page:          parsePage(c),
		Search:        strings.TrimSpace(c.Query("search")),
		Category:      strings.TrimSpace(c.Query("category")),
		OnlyAvailable: c.Query("available") == "true",
	}
	products, total, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	c.JSON(http.StatusOK, paged(products, total, filter.Page, defaultProductPageSize))
}

func (h *ProductHandler) Update(c *gin.Context) {
	var in domain.UpdateProductInput
	if !bindJSON(c, &in) {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.products.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage expects a multipart form with the picture in "image".
func (h *ProductHandler) UploadImage(c *gin.Context) {
	data, _, ok := h.readUpload(c, "image")
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.products.UploadImage(c.Request.Context(), id, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Import expects a CSV or XLSX catalog in the multipart field "file".
func (h *ProductHandler) Import(c *gin.Context) {
	data, filename, ok := h.readUpload(c, "file")
	if !ok {
		return
	}
	if !catalog.IsSupported(filename) {
		respondError(c, domain.NewValidationError("file", "unsupported file type %q", filepath.Ext(filename)))
		return
	}
	report, err := h.products.ImportCatalog(c.Request.Context(), filename, bytes.NewReader(data), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ProductHandler) Deposit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	quote, err := h.deposits.QuoteDeposit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *ProductHandler) readUpload(c *gin.Context, field string) ([]byte, string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadMem)
	header, err := c.FormFile(field)
	if err != nil {
		respondError(c, domain.NewValidationError(field, "is required"))
		return nil, "", false
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, domain.NewValidationError(field, "could not be read: %v", err))
		return nil, "", false
	}
	return data, header.Filename, true
}
