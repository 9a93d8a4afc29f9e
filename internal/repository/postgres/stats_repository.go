package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type statsRepository struct {
	db *DB
}

func NewStatsRepository(db *DB) *statsRepository {
	return &statsRepository{db: db}
}

// GetDashboard computes the landing-page counters in one round trip.
// Day and month boundaries are taken from now so the caller controls the
// clock.
func (r *statsRepository) GetDashboard(ctx context.Context, now time.Time) (*domain.Dashboard, error) {
	today := domain.StartOfDay(now)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	query := `
		SELECT
			(SELECT COUNT(*) FROM products) AS products,
			(SELECT COUNT(*) FROM products WHERE available AND stock > 0) AS available_products,
			(SELECT COALESCE(SUM(stock), 0) FROM products) AS stock_units,
			(SELECT COALESCE(SUM(stock * sale_price), 0) FROM products) AS inventory_value,
			(SELECT COUNT(*) FROM sales WHERE sale_date >= $1 AND sale_date < $4) AS sales_today,
			(SELECT COUNT(*) FROM sales WHERE sale_date >= $2 AND sale_date < $3) AS sales_month,
			(SELECT COALESCE(SUM(total_price), 0) FROM sales WHERE sale_date >= $2 AND sale_date < $3) AS revenue_month,
			(SELECT COALESCE(SUM(profit), 0) FROM sales WHERE sale_date >= $2 AND sale_date < $3) AS profit_month,
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE expense_date >= $2 AND expense_date < $3) AS expenses_month,
			(SELECT COUNT(*) FROM reservations WHERE status = 'active' AND due_date >= $1::date) AS active_reservations,
			(SELECT COUNT(*) FROM payment_plans WHERE status IN ('pending', 'in_progress')) AS open_plans,
			(SELECT COUNT(*) FROM installments
				WHERE status IN ('pending', 'partial', 'expired') AND due_date < $1::date) AS overdue_installments
	`

	var d domain.Dashboard
	if err := sqlx.GetContext(ctx, r.db, &d, query, today, monthStart, nextMonth, today.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("failed to get dashboard: %w", err)
	}
	d.GeneratedAt = now
	return &d, nil
}

func (r *statsRepository) GetMonthlySales(ctx context.Context, filter domain.StatsFilter) ([]domain.MonthlySales, error) {
	where := statsWhere("s.sale_date", filter)
	query := `
		SELECT
			to_char(date_trunc('month', s.sale_date), 'YYYY-MM') AS month,
			COALESCE(SUM(s.total_price), 0) AS sales,
			COALESCE(SUM(s.profit), 0) AS profit,
			COUNT(*) AS count
		FROM sales s` + where.sql() + `
		GROUP BY 1
		ORDER BY 1
	`

	var rows []domain.MonthlySales
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to get monthly sales: %w", err)
	}
	return rows, nil
}

func (r *statsRepository) GetCategorySales(ctx context.Context, filter domain.StatsFilter) ([]domain.CategorySales, error) {
	where := statsWhere("s.sale_date", filter)
	query := `
		SELECT
			COALESCE(NULLIF(p.category, ''), 'uncategorized') AS category,
			COALESCE(SUM(s.quantity), 0) AS quantity,
			COALESCE(SUM(s.total_price), 0) AS sales,
			COALESCE(SUM(s.profit), 0) AS profit
		FROM sales s
		JOIN products p ON p.id = s.product_id` + where.sql() + `
		GROUP BY 1
		ORDER BY sales DESC, category
	`

	var rows []domain.CategorySales
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to get category sales: %w", err)
	}
	return rows, nil
}

func (r *statsRepository) GetExpensesByCategory(ctx context.Context, filter domain.StatsFilter) ([]domain.CategoryExpense, error) {
	where := statsWhere("e.expense_date", filter)
	query := `
		SELECT
			COALESCE(NULLIF(e.category, ''), 'uncategorized') AS category,
			COALESCE(SUM(e.amount), 0) AS amount
		FROM expenses e` + where.sql() + `
		GROUP BY 1
		ORDER BY amount DESC, category
	`

	var rows []domain.CategoryExpense
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to get expenses by category: %w", err)
	}
	return rows, nil
}

func statsWhere(column string, filter domain.StatsFilter) *whereBuilder {
	where := &whereBuilder{}
	if filter.From != nil {
		where.add(column+" >= %s", *filter.From)
	}
	if filter.To != nil {
		where.add(column+" < %s", *filter.To)
	}
	return where
}
