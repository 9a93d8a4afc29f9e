// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	// UpsertByName inserts the product or refreshes prices and stock of an
	// existing product with the same name. It reports whether a row was created.
	UpsertByName(ctx context.Context, product *domain.Product) (bool, error)
}

type SaleRepository interface {
	// Create inserts the sale and takes quantity units out of the product's
	// stock in the same transaction. It fails with ErrInsufficientStock when
	// the stock no longer covers the quantity.
	Create(ctx context.Context, sale *domain.Sale) error
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	List(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, int, error)
}

// InstallmentMutation updates an installment and its plan in place while
// both are locked.
type InstallmentMutation func(plan *domain.PaymentPlan, installment *domain.Installment) error

type PlanRepository interface {
	// CreateWithInstallments writes the plan and all of its installments
	// atomically. A second plan for the same sale fails with ErrAlreadyExists.
	CreateWithInstallments(ctx context.Context, plan *domain.PaymentPlan, installments []*domain.Installment) error
	GetByID(ctx context.Context, id string) (*domain.PaymentPlan, error)
	List(ctx context.Context, filter domain.PlanFilter) ([]*domain.PaymentPlan, int, error)
	UpdateInstallment(ctx context.Context, installmentID string, mutate InstallmentMutation) (*domain.PaymentPlan, error)
	UpdateStatus(ctx context.Context, id string, from []domain.PlanStatus, to domain.PlanStatus) error
}

type ReservationRepository interface {
	// Create fails with ErrAlreadyExists when the product already has an
	// active reservation.
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	// UpdateStatus moves an active reservation to status. It fails with
	// ErrInvalidTransition when the row is no longer active.
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	List(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, int, error)
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type LoginRepository interface {
	Record(ctx context.Context, event *domain.LoginEvent) error
}

type StatsRepository interface {
	GetDashboard(ctx context.Context, now time.Time) (*domain.Dashboard, error)
	GetMonthlySales(ctx context.Context, filter domain.StatsFilter) ([]domain.MonthlySales, error)
	GetCategorySales(ctx context.Context, filter domain.StatsFilter) ([]domain.CategorySales, error)
	GetExpensesByCategory(ctx context.Context, filter domain.StatsFilter) ([]domain.CategoryExpense, error)
}

type AuditRepository interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

// SweepRepository persists due-date expiry. Each method returns the number
// of rows moved to expired.
type SweepRepository interface {
	ExpireInstallments(ctx context.Context, today time.Time) (int64, error)
	ExpirePlans(ctx context.Context, today time.Time) (int64, error)
	ExpireReservations(ctx context.Context, today time.Time) (int64, error)
}
