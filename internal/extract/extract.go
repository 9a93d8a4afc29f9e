// Package extract pulls product fields out of free text dictated or typed
// at the counter, e.g. "anillo de oro 14k, se compró en 219, se vende en
// 325, tenemos 3 piezas, proveedor Plateria Luna".
//
// Extraction is an ordered list of (pattern, field, transform) rules. For
// each field the first rule that matches wins.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	FieldName          = "name"
	FieldPurchasePrice = "purchase_price"
	FieldSalePrice     = "sale_price"
	FieldCategory      = "category"
	FieldSupplier      = "supplier"
	FieldStock         = "stock"
)

const (
	defaultName     = "Producto"
	defaultCategory = "Joyeria"
)

// Result is the set of fields found in the text. Nil pointers mean the
// field was not mentioned.
type Result struct {
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	Description    string           `json:"description"`
	PurchasePrice  *decimal.Decimal `json:"purchase_price,omitempty"`
	SalePrice      *decimal.Decimal `json:"sale_price,omitempty"`
	SuggestedPrice *decimal.Decimal `json:"suggested_price,omitempty"`
	Stock          *int             `json:"stock,omitempty"`
	Supplier       *string          `json:"supplier,omitempty"`
}

type rule struct {
	field     string
	pattern   *regexp.Regexp
	transform func(string) string
}

var rules = []rule{
	{FieldName, regexp.MustCompile(`(?i)\b(?:nombre|producto)\b:?\s*([^\n,]+)`), strings.TrimSpace},

	{FieldPurchasePrice, regexp.MustCompile(`(?i)(?:se\s+compr[óo]\s+en|compr[óo]\s+en|compramos|compré|precio\s*(?:de\s+)?compra|cost[óo]|pagamos)\s*:?\s*\$?\s*(\d+(?:[.,]\d+)*)`), nil},

	{FieldSalePrice, regexp.MustCompile(`(?i)(?:se\s+vende\s+en|vende\s+en|vend[eo]mos?\s+en|vendemos|vendo|precio\s*(?:de\s+)?venta|vender)\s*:?\s*\$?\s*(\d+(?:[.,]\d+)*)`), nil},

	{FieldCategory, regexp.MustCompile(`(?i)(?:categor[íi]a|\btipo\b|\bclase\b):?\s*([^\n,]+)`), strings.TrimSpace},

	{FieldSupplier, regexp.MustCompile(`(?i)(?:proveedor|vendedor|comprado\s+a|compramos\s+a|de\s+la\s+tienda|tienda)\s*:?\s*([^\n,]+)`), cleanSupplier},

	{FieldStock, regexp.MustCompile(`(?i)(?:stock|cantidad|unidades|piezas)\s*(?:de|:)?\s*(\d+)`), nil},
	{FieldStock, regexp.MustCompile(`(?i)(?:hay|tenemos|disponibles?|existen)\s+(\d+)`), nil},
	{FieldStock, regexp.MustCompile(`(?i)(\d+)\s*(?:unidades|piezas|productos?|en\s+stock)`), nil},
}

var (
	nameSplit        = regexp.MustCompile(`[,\n]`)
	nameTrailingJunk = regexp.MustCompile(`(?i)\s*(?:se\s+compr|compramos|compré|compró|se\s+vende|vendemos|vendo|precio).*$`)
	supplierPrice    = regexp.MustCompile(`\$\d+.*$`)
	supplierArticle  = regexp.MustCompile(`(?i)^(?:de|del|la|el|comprado|compramos|a)\s+`)
	decimalComma     = regexp.MustCompile(`^\d+,\d{1,2}$`)
)

// Extract applies the rules to text. Empty text is a validation error.
func Extract(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "is required")
	}

	found := make(map[string]string, len(rules))
	for _, r := range rules {
		if _, done := found[r.field]; done {
			continue
		}
		m := r.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := m[1]
		if r.transform != nil {
			value = r.transform(value)
		}
		if value != "" {
			found[r.field] = value
		}
	}

	res := &Result{}

	name, ok := found[FieldName]
	if !ok {
		name = strings.TrimSpace(nameSplit.Split(text, 2)[0])
	}
	res.Name = strings.TrimSpace(nameTrailingJunk.ReplaceAllString(name, ""))
	if res.Name == "" {
		res.Name = defaultName
	}

	if v, ok := found[FieldPurchasePrice]; ok {
		res.PurchasePrice = parseAmount(v)
	}
	if v, ok := found[FieldSalePrice]; ok {
		res.SalePrice = parseAmount(v)
	}
	switch {
	case res.SalePrice != nil:
		res.SuggestedPrice = res.SalePrice
	case res.PurchasePrice != nil:
		res.SuggestedPrice = res.PurchasePrice
	}

	if v, ok := found[FieldStock]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			res.Stock = &n
		}
	}
	if v, ok := found[FieldSupplier]; ok {
		res.Supplier = &v
	}

	res.Category = found[FieldCategory]
	if res.Category == "" {
		res.Category = InferCategory(res.Name)
	}
	res.Description = Describe(res.Name, res.Category)

	return res, nil
}

// parseAmount reads "1,250.50", "1250" or "219,5". A comma followed by one
// or two digits is a decimal comma, otherwise commas group thousands.
func parseAmount(raw string) *decimal.Decimal {
	if decimalComma.MatchString(raw) {
		raw = strings.Replace(raw, ",", ".", 1)
	} else {
		raw = strings.ReplaceAll(raw, ",", "")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

func cleanSupplier(raw string) string {
	s := strings.TrimSpace(supplierPrice.ReplaceAllString(raw, ""))
	return strings.TrimSpace(supplierArticle.ReplaceAllString(s, ""))
}
