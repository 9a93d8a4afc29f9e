package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSalesXLSX(t *testing.T) {
	category := "Anillos"
	customer := "Ana"
	sales := []*domain.Sale{
		{
			ProductName: "Anillo oro",
			Category:    &category,
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(325),
			TotalPrice:  decimal.NewFromInt(650),
			Profit:      decimal.NewFromInt(212),
			Customer:    &customer,
			SaleDate:    time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			ProductName: "Collar plata",
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("99.50"),
			TotalPrice:  decimal.RequireFromString("99.50"),
			Profit:      decimal.RequireFromString("40.25"),
			SaleDate:    time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSalesXLSX(&buf, sales))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(salesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Fecha", rows[0][0])
	assert.Equal(t, "2024-03-05 14:30", rows[1][0])
	assert.Equal(t, "Anillo oro", rows[1][1])
	assert.Equal(t, "Anillos", rows[1][2])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "3", rows[3][3])

	raw, err := f.GetCellValue(salesSheet, "F4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "749.5", raw)
}

func TestWriteSalesXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSalesXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(salesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
