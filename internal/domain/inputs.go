package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Date accepts either a calendar date ("2006-01-02") or an RFC3339
// timestamp when decoded from JSON.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: t}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return NewValidationError("date", "expected YYYY-MM-DD or RFC3339, got %q", raw)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

type CreateProductInput struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Description   *string         `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Stock         int             `json:"stock" validate:"gte=0"`
	Available     *bool           `json:"available"`
	Category      *string         `json:"category" validate:"omitempty,max=100"`
	Supplier      *string         `json:"supplier" validate:"omitempty,max=200"`
	PurchaseDate  *Date           `json:"purchase_date"`
}

type UpdateProductInput struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Stock         *int             `json:"stock" validate:"omitempty,gte=0"`
	Available     *bool            `json:"available"`
	Category      *string          `json:"category" validate:"omitempty,max=100"`
	Supplier      *string          `json:"supplier" validate:"omitempty,max=200"`
	ImageURL      *string          `json:"image_url"`
}

type RecordSaleInput struct {
	ProductID     string          `json:"product_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"gte=1"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Customer      *string         `json:"customer" validate:"omitempty,max=200"`
	PaymentMethod *string         `json:"payment_method" validate:"omitempty,max=50"`
	SaleDate      *Date           `json:"sale_date"`
}

type CreatePlanInput struct {
	SaleID           string  `json:"sale_id" validate:"required"`
	InstallmentCount int     `json:"installment_count"`
	DueDate          Date    `json:"due_date"`
	Notes            *string `json:"notes"`
}

type RegisterPaymentInput struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod *string         `json:"payment_method" validate:"omitempty,max=50"`
	Notes         *string         `json:"notes"`
}

type CreateReservationInput struct {
	ProductID     string          `json:"product_id" validate:"required"`
	CustomerName  string          `json:"customer_name" validate:"required,max=200"`
	Phone         *string         `json:"phone" validate:"omitempty,max=30"`
	Email         *string         `json:"email" validate:"omitempty,email"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	DueDate       Date            `json:"due_date"`
	Notes         *string         `json:"notes"`
}

type ExpenseInput struct {
	Concept     string          `json:"concept" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount"`
	Category    *string         `json:"category" validate:"omitempty,max=100"`
	Description *string         `json:"description"`
	ExpenseDate *Date           `json:"expense_date"`
}

type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ClientInfo identifies the caller of an auth operation.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type Page struct {
	Page     int
	PageSize int
}

func (p Page) Normalize(defaultSize int) Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > 500 {
		p.PageSize = 500
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ProductFilter struct {
	Page
	Search        string
	Category      string
	OnlyAvailable bool
}

type SaleFilter struct {
	Page
	ProductID string
	From      *time.Time
	To        *time.Time
}

type PlanFilter struct {
	Page
	Status string
}

type ReservationFilter struct {
	Status string
	Search string
}

type ExpenseFilter struct {
	Page
	Category string
	From     *time.Time
	To       *time.Time
}
