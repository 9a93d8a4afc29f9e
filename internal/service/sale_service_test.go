package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newSaleFixture() (*SaleService, *fakeProducts) {
	products := newFakeProducts(&domain.Product{
		ID:            "ring",
		Name:          "Anillo oro 14k",
		PurchasePrice: dec("219"),
		SalePrice:     dec("325"),
		Stock:         2,
		Available:     true,
	})
	svc := NewSaleService(&fakeSales{products: products}, products, NewNotifier(nil, nil))
	svc.now = fixedClock(testNow)
	return svc, products
}

func TestSaleService_RecordSale(t *testing.T) {
	svc, products := newSaleFixture()
	ctx := context.Background()

	sale, err := svc.RecordSale(ctx, domain.RecordSaleInput{ProductID: "ring", Quantity: 2, UnitPrice: dec("325")}, nil)
	require.NoError(t, err)

	assert.True(t, sale.TotalPrice.Equal(dec("650")))
	assert.True(t, sale.Profit.Equal(dec("212")))
	assert.Equal(t, testNow, sale.SaleDate)
	assert.Equal(t, 0, products.stock("ring"))

	p, err := products.GetByID(ctx, "ring")
	require.NoError(t, err)
	assert.False(t, p.Available)
}

func TestSaleService_RecordSaleRejections(t *testing.T) {
	svc, products := newSaleFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		in   domain.RecordSaleInput
		err  error
	}{
		{"zero quantity", domain.RecordSaleInput{ProductID: "ring", Quantity: 0, UnitPrice: dec("1")}, domain.ErrValidation},
		{"negative price", domain.RecordSaleInput{ProductID: "ring", Quantity: 1, UnitPrice: dec("-1")}, domain.ErrValidation},
		{"unknown product", domain.RecordSaleInput{ProductID: "gone", Quantity: 1, UnitPrice: dec("1")}, domain.ErrNotFound},
		{"more than stock", domain.RecordSaleInput{ProductID: "ring", Quantity: 3, UnitPrice: dec("1")}, domain.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordSale(ctx, tt.in, nil)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Equal(t, 2, products.stock("ring"))
}

func TestSaleService_ProfitIsSnapshotAtSaleTime(t *testing.T) {
	svc, products := newSaleFixture()
	ctx := context.Background()

	sale, err := svc.RecordSale(ctx, domain.RecordSaleInput{ProductID: "ring", Quantity: 1, UnitPrice: dec("325")}, nil)
	require.NoError(t, err)

	p, err := products.GetByID(ctx, "ring")
	require.NoError(t, err)
	p.PurchasePrice = dec("300")
	require.NoError(t, products.Update(ctx, p))

	stored, err := svc.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.Profit.Equal(dec("106")))
}

func TestSaleService_ExportSales(t *testing.T) {
	svc, _ := newSaleFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.RecordSale(ctx, domain.RecordSaleInput{ProductID: "ring", Quantity: 1, UnitPrice: dec("325")}, nil)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, svc.ExportSales(ctx, domain.SaleFilter{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 4, "header, two sales and totals")
}
