package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/andresuchdata/joyeria/backend-go/internal/report"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
)

const exportPageSize = 500

type SaleService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	notify   *Notifier
	now      func() time.Time
}

func NewSaleService(sales repository.SaleRepository, products repository.ProductRepository, notify *Notifier) *SaleService {
	return &SaleService{sales: sales, products: products, notify: notify, now: time.Now}
}

// RecordSale sells quantity units of a product. Profit is computed from the
// product's purchase price at this moment and stored with the sale.
func (s *SaleService) RecordSale(ctx context.Context, in domain.RecordSaleInput, userID *string) (*domain.Sale, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if err := domain.RequireNonNegative("unit_price", in.UnitPrice); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckStock(product.Stock, in.Quantity); err != nil {
		return nil, err
	}

	unitPrice := in.UnitPrice.Round(2)
	total, profit := domain.SaleAmounts(in.Quantity, unitPrice, product.PurchasePrice)

	saleDate := s.now()
	if in.SaleDate != nil && !in.SaleDate.IsZero() {
		saleDate = in.SaleDate.Time
	}

	sale := &domain.Sale{
		ID:            newID(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		Category:      product.Category,
		Quantity:      in.Quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    total,
		Profit:        profit,
		Customer:      in.Customer,
		PaymentMethod: in.PaymentMethod,
		SaleDate:      saleDate,
		UserID:        userID,
	}

	// The repository re-checks stock atomically; the check above only
	// gives an early answer.
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	s.notify.Changed(ctx, events.TableSales, events.ActionInsert, sale.ID)
	s.notify.Changed(ctx, events.TableProducts, events.ActionUpdate, product.ID)
	return sale, nil
}

func (s *SaleService) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return s.sales.GetByID(ctx, id)
}

func (s *SaleService) ListSales(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, int, error) {
	return s.sales.List(ctx, filter)
}

// ExportSales writes every sale matching filter, ignoring its paging, as
// an XLSX workbook.
func (s *SaleService) ExportSales(ctx context.Context, filter domain.SaleFilter, w io.Writer) error {
	var all []*domain.Sale
	filter.Page = domain.Page{Page: 1, PageSize: exportPageSize}
	for {
		page, total, err := s.sales.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load sales for export: %w", err)
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			break
		}
		filter.Page.Page++
	}

	return report.WriteSalesXLSX(w, all)
}
