// Package report renders spreadsheet exports.
package report

import (
	"fmt"
	"io"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const salesSheet = "Ventas"

var salesHeader = []interface{}{
	"Fecha", "Producto", "Categoría", "Cantidad", "Precio unitario", "Total", "Ganancia", "Cliente", "Método de pago",
}

// WriteSalesXLSX writes sales as a single-sheet workbook with a totals row.
func WriteSalesXLSX(w io.Writer, sales []*domain.Sale) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), salesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(salesSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("money style: %w", err)
	}

	header := make([]interface{}, len(salesHeader))
	for i, h := range salesHeader {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	total, profit := decimal.Zero, decimal.Zero
	quantity := 0
	for i, s := range sales {
		total = total.Add(s.TotalPrice)
		profit = profit.Add(s.Profit)
		quantity += s.Quantity

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			s.SaleDate.Format("2006-01-02 15:04"),
			s.ProductName,
			deref(s.Category),
			s.Quantity,
			excelize.Cell{StyleID: money, Value: s.UnitPrice.InexactFloat64()},
			excelize.Cell{StyleID: money, Value: s.TotalPrice.InexactFloat64()},
			excelize.Cell{StyleID: money, Value: s.Profit.InexactFloat64()},
			deref(s.Customer),
			deref(s.PaymentMethod),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	cell, _ := excelize.CoordinatesToCellName(1, len(sales)+2)
	totals := []interface{}{
		excelize.Cell{StyleID: bold, Value: "Total"},
		nil,
		nil,
		excelize.Cell{StyleID: bold, Value: quantity},
		nil,
		excelize.Cell{StyleID: money, Value: total.InexactFloat64()},
		excelize.Cell{StyleID: money, Value: profit.InexactFloat64()},
	}
	if err := sw.SetRow(cell, totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
