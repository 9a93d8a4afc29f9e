// Package catalog reads product catalog spreadsheets (CSV or XLSX) into
// product rows ready for upsert.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Row is one parsed catalog line. Line is the 1-based line in the sheet,
// header included.
type Row struct {
	Line    int
	Product domain.CreateProductInput
}

// RowError reports a line that could not be imported.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report summarizes an import run.
type Report struct {
	File    string     `json:"file"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors,omitempty"`
}

func (r *Report) AddError(line int, err error) {
	r.Errors = append(r.Errors, RowError{Line: line, Message: err.Error()})
}

// Column aliases, English and Spanish, matched after lowercasing and
// trimming.
var columnAliases = map[string]string{
	"name":           "name",
	"nombre":         "name",
	"producto":       "name",
	"description":    "description",
	"descripcion":    "description",
	"descripción":    "description",
	"category":       "category",
	"categoria":      "category",
	"categoría":      "category",
	"supplier":       "supplier",
	"proveedor":      "supplier",
	"purchase_price": "purchase_price",
	"precio_compra":  "purchase_price",
	"precio compra":  "purchase_price",
	"sale_price":     "sale_price",
	"precio_venta":   "sale_price",
	"precio venta":   "sale_price",
	"stock":          "stock",
	"cantidad":       "stock",
}

var requiredColumns = []string{"name", "purchase_price", "sale_price"}

// IsSupported reports whether filename has an importable extension.
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Parse dispatches on the file extension. Rows that fail to parse are
// reported in the returned errors and skipped; a missing required column
// fails the whole file.
func Parse(filename string, r io.Reader) ([]Row, []RowError, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, nil, domain.NewValidationError("file", "unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename))
	}
	if err != nil {
		return nil, nil, err
	}
	return parseRecords(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.NewValidationError("file", "invalid csv: %v", err)
	}
	return records, nil
}

// readXLSX returns the rows of the first sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewValidationError("file", "invalid xlsx: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewValidationError("file", "xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func parseRecords(records [][]string) ([]Row, []RowError, error) {
	if len(records) == 0 {
		return nil, nil, domain.NewValidationError("file", "is empty")
	}

	colMap := make(map[string]int)
	for i, col := range records[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if canonical, ok := columnAliases[key]; ok {
			if _, seen := colMap[canonical]; !seen {
				colMap[canonical] = i
			}
		}
	}
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, nil, domain.NewValidationError("file", "missing required column: %s", col)
		}
	}

	var rows []Row
	var rowErrors []RowError
	for i, record := range records[1:] {
		line := i + 2
		if blank(record) {
			continue
		}
		product, err := parseRow(record, colMap)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Message: err.Error()})
			continue
		}
		rows = append(rows, Row{Line: line, Product: product})
	}
	return rows, rowErrors, nil
}

func parseRow(record []string, colMap map[string]int) (domain.CreateProductInput, error) {
	getValue := func(col string) string {
		if idx, ok := colMap[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}
	optional := func(col string) *string {
		if v := getValue(col); v != "" {
			return &v
		}
		return nil
	}

	in := domain.CreateProductInput{
		Name:        getValue("name"),
		Description: optional("description"),
		Category:    optional("category"),
		Supplier:    optional("supplier"),
	}
	if in.Name == "" {
		return in, domain.NewValidationError("name", "is required")
	}

	var err error
	if in.PurchasePrice, err = parseMoney(getValue("purchase_price")); err != nil {
		return in, domain.NewValidationError("purchase_price", "%v", err)
	}
	if in.SalePrice, err = parseMoney(getValue("sale_price")); err != nil {
		return in, domain.NewValidationError("sale_price", "%v", err)
	}

	if raw := getValue("stock"); raw != "" {
		// Spreadsheets often store integers as "3.0"
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 {
			return in, domain.NewValidationError("stock", "invalid quantity %q", raw)
		}
		in.Stock = int(f)
	}
	return in, nil
}

// parseMoney accepts "1250", "1,250.50" and "$325".
func parseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return d.Round(2), nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
