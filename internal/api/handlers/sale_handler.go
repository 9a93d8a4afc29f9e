package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/andresuchdata/joyeria/backend-go/internal/api/middleware"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	defaultSalePageSize = 50
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type SaleService interface {
	RecordSale(ctx context.Context, in domain.RecordSaleInput, userID *string) (*domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, int, error)
	ExportSales(ctx context.Context, filter domain.SaleFilter, w io.Writer) error
}

type SaleHandler struct {
	sales SaleService
}

func NewSaleHandler(sales SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

func (h *SaleHandler) Create(c *gin.Context) {
	var in domain.RecordSaleInput
	if !bindJSON(c, &in) {
		return
	}
	if err := checkID("product_id", in.ProductID); err != nil {
		respondError(c, err)
		return
	}
	sale, err := h.sales.RecordSale(c.Request.Context(), in, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) List(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	sales, total, err := h.sales.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if sales == nil {
		sales = []*domain.Sale{}
	}
	c.JSON(http.StatusOK, paged(sales, total, filter.Page, defaultSalePageSize))
}

// Export streams the filtered sales as an XLSX attachment.
func (h *SaleHandler) Export(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.sales.ExportSales(c.Request.Context(), filter, &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("ventas-%s.xlsx", c.DefaultQuery("from", "todas"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *SaleHandler) filter(c *gin.Context) (domain.SaleFilter, bool) {
	from, to, err := parseDateRange(c)
	if err != nil {
		respondError(c, err)
		return domain.SaleFilter{}, false
	}
	if err := checkID("product_id", c.Query("product_id")); err != nil {
		respondError(c, err)
		return domain.SaleFilter{}, false
	}
	return domain.SaleFilter{
		Page:      parsePage(c),
		ProductID: c.Query("product_id"),
		From:      from,
		To:        to,
	}, true
}
