package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

const expenseColumns = `id, concept, amount, category, description, expense_date, user_id, created_at`

type expenseRepository struct {
	db *DB
}

func NewExpenseRepository(db *DB) *expenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	query := `
		INSERT INTO expenses (id, concept, amount, category, description, expense_date, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		e.ID, e.Concept, e.Amount, e.Category, e.Description, e.ExpenseDate, e.UserID,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", mapError(err))
	}
	return nil
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	var e domain.Expense
	if err := sqlx.GetContext(ctx, r.db, &e, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get expense %s: %w", id, mapError(err))
	}
	return &e, nil
}

func (r *expenseRepository) List(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, int, error) {
	page := filter.Page.Normalize(100)

	var where whereBuilder
	if filter.Category != "" {
		where.add("category = %s", filter.Category)
	}
	if filter.From != nil {
		where.add("expense_date >= %s", *filter.From)
	}
	if filter.To != nil {
		where.add("expense_date < %s", *filter.To)
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM expenses`+where.sql(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses` + where.sql() +
		` ORDER BY expense_date DESC, created_at DESC LIMIT ` + where.next(page.PageSize) + ` OFFSET ` + where.next(page.Offset())

	var expenses []*domain.Expense
	if err := sqlx.SelectContext(ctx, r.db, &expenses, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, total, nil
}

func (r *expenseRepository) Update(ctx context.Context, e *domain.Expense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET concept = $2, amount = $3, category = $4, description = $5, expense_date = $6
		WHERE id = $1
	`, e.ID, e.Concept, e.Amount, e.Category, e.Description, e.ExpenseDate)
	if err != nil {
		return fmt.Errorf("failed to update expense %s: %w", e.ID, mapError(err))
	}
	return expectAffected(res, e.ID)
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, mapDeleteError(err))
	}
	return expectAffected(res, id)
}
