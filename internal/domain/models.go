// backend-go/internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an inventory item.
type Product struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   *string         `json:"description,omitempty" db:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price" db:"sale_price"`
	Stock         int             `json:"stock" db:"stock"`
	Available     bool            `json:"available" db:"available"`
	ImageURL      *string         `json:"image_url,omitempty" db:"image_url"`
	Category      *string         `json:"category,omitempty" db:"category"`
	Supplier      *string         `json:"supplier,omitempty" db:"supplier"`
	PurchaseDate  time.Time       `json:"purchase_date" db:"purchase_date"`
	UserID        *string         `json:"user_id,omitempty" db:"user_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Sale is a confirmed sale of one product line.
type Sale struct {
	ID            string          `json:"id" db:"id"`
	ProductID     string          `json:"product_id" db:"product_id"`
	ProductName   string          `json:"product_name,omitempty" db:"product_name"`
	Category      *string         `json:"category,omitempty" db:"category"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price" db:"total_price"`
	Profit        decimal.Decimal `json:"profit" db:"profit"`
	Customer      *string         `json:"customer,omitempty" db:"customer"`
	PaymentMethod *string         `json:"payment_method,omitempty" db:"payment_method"`
	SaleDate      time.Time       `json:"sale_date" db:"sale_date"`
	UserID        *string         `json:"user_id,omitempty" db:"user_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// PaymentPlan splits one sale into installments.
type PaymentPlan struct {
	ID                   string          `json:"id" db:"id"`
	SaleID               string          `json:"sale_id" db:"sale_id"`
	InstallmentCount     int             `json:"installment_count" db:"installment_count"`
	TotalAmount          decimal.Decimal `json:"total_amount" db:"total_amount"`
	AmountPerInstallment decimal.Decimal `json:"amount_per_installment" db:"amount_per_installment"`
	StartDate            time.Time       `json:"start_date" db:"start_date"`
	DueDate              time.Time       `json:"due_date" db:"due_date"`
	Status               PlanStatus      `json:"status" db:"status"`
	Notes                *string         `json:"notes,omitempty" db:"notes"`
	UserID               *string         `json:"user_id,omitempty" db:"user_id"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`

	Customer     *string        `json:"customer,omitempty" db:"customer"`
	ProductName  string         `json:"product_name,omitempty" db:"product_name"`
	Installments []*Installment `json:"installments,omitempty" db:"-"`
}

// Installment is one scheduled payment of a plan.
type Installment struct {
	ID             string            `json:"id" db:"id"`
	PlanID         string            `json:"plan_id" db:"plan_id"`
	SequenceNumber int               `json:"sequence_number" db:"sequence_number"`
	Amount         decimal.Decimal   `json:"amount" db:"amount"`
	AmountPaid     decimal.Decimal   `json:"amount_paid" db:"amount_paid"`
	DueDate        time.Time         `json:"due_date" db:"due_date"`
	PaidDate       *time.Time        `json:"paid_date,omitempty" db:"paid_date"`
	Status         InstallmentStatus `json:"status" db:"status"`
	PaymentMethod  *string           `json:"payment_method,omitempty" db:"payment_method"`
	Notes          *string           `json:"notes,omitempty" db:"notes"`
}

// Outstanding is the amount still owed on the installment.
func (i *Installment) Outstanding() decimal.Decimal {
	rest := i.Amount.Sub(i.AmountPaid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Reservation is a layaway of one product against a deposit.
type Reservation struct {
	ID            string            `json:"id" db:"id"`
	ProductID     string            `json:"product_id" db:"product_id"`
	ProductName   string            `json:"product_name,omitempty" db:"product_name"`
	CustomerName  string            `json:"customer_name" db:"customer_name"`
	Phone         *string           `json:"phone,omitempty" db:"phone"`
	Email         *string           `json:"email,omitempty" db:"email"`
	DepositAmount decimal.Decimal   `json:"deposit_amount" db:"deposit_amount"`
	TotalAmount   decimal.Decimal   `json:"total_amount" db:"total_amount"`
	DueDate       time.Time         `json:"due_date" db:"due_date"`
	Status        ReservationStatus `json:"status" db:"status"`
	Notes         *string           `json:"notes,omitempty" db:"notes"`
	UserID        *string           `json:"user_id,omitempty" db:"user_id"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// Remaining is what the customer still owes at handover.
func (r *Reservation) Remaining() decimal.Decimal {
	return r.TotalAmount.Sub(r.DepositAmount)
}

// Expense is an operating cost of the shop.
type Expense struct {
	ID          string          `json:"id" db:"id"`
	Concept     string          `json:"concept" db:"concept"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Category    *string         `json:"category,omitempty" db:"category"`
	Description *string         `json:"description,omitempty" db:"description"`
	ExpenseDate time.Time       `json:"expense_date" db:"expense_date"`
	UserID      *string         `json:"user_id,omitempty" db:"user_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// User is an operator account.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LoginEvent is an append-only record of an authentication attempt.
type LoginEvent struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *string   `json:"user_id,omitempty" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Success   bool      `json:"success" db:"success"`
	IP        string    `json:"ip" db:"ip"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	LoginReasonSignIn  = "sign_in"
	LoginReasonSignOut = "sign_out"
)
