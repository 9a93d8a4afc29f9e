package postgres

import (
	"context"
	"fmt"
	"time"
)

type sweepRepository struct {
	db *DB
}

func NewSweepRepository(db *DB) *sweepRepository {
	return &sweepRepository{db: db}
}

// ExpireInstallments marks pending installments whose due date is before
// today. Installments of cancelled plans are left alone.
func (r *sweepRepository) ExpireInstallments(ctx context.Context, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE installments i SET status = 'expired'
		FROM payment_plans pp
		WHERE pp.id = i.plan_id
			AND pp.status <> 'cancelled'
			AND i.status = 'pending'
			AND i.due_date < $1::date
	`, today)
	if err != nil {
		return 0, fmt.Errorf("failed to expire installments: %w", err)
	}
	return res.RowsAffected()
}

// ExpirePlans marks open plans whose final due date is before today.
func (r *sweepRepository) ExpirePlans(ctx context.Context, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_plans SET status = 'expired'
		WHERE status IN ('pending', 'in_progress') AND due_date < $1::date
	`, today)
	if err != nil {
		return 0, fmt.Errorf("failed to expire payment plans: %w", err)
	}
	return res.RowsAffected()
}

// ExpireReservations marks active reservations whose due date is before today.
func (r *sweepRepository) ExpireReservations(ctx context.Context, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET status = 'expired'
		WHERE status = 'active' AND due_date < $1::date
	`, today)
	if err != nil {
		return 0, fmt.Errorf("failed to expire reservations: %w", err)
	}
	return res.RowsAffected()
}
