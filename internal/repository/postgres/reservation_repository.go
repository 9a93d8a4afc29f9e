package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

const reservationSelect = `
	SELECT
		r.id, r.product_id, p.name AS product_name, r.customer_name, r.phone, r.email,
		r.deposit_amount, r.total_amount, r.due_date, r.status, r.notes, r.user_id, r.created_at
	FROM reservations r
	JOIN products p ON p.id = r.product_id`

type reservationRepository struct {
	db *DB
}

func NewReservationRepository(db *DB) *reservationRepository {
	return &reservationRepository{db: db}
}

// Create relies on the reservations_one_active_per_item partial unique
// index; a concurrent second reservation fails with ErrAlreadyExists. An
// active reservation of the product that is already past due is expired
// first so it does not block the new one.
func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE reservations SET status = 'expired'
			WHERE product_id = $1 AND status = 'active' AND due_date < CURRENT_DATE
		`, res.ProductID); err != nil {
			return fmt.Errorf("failed to expire stale reservation: %w", mapError(err))
		}

		err := tx.QueryRowxContext(ctx, `
			INSERT INTO reservations (
				id, product_id, customer_name, phone, email, deposit_amount, total_amount,
				due_date, status, notes, user_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at
		`, res.ID, res.ProductID, res.CustomerName, res.Phone, res.Email, res.DepositAmount, res.TotalAmount,
			res.DueDate, res.Status, res.Notes, res.UserID,
		).Scan(&res.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert reservation: %w", mapError(err))
		}
		return nil
	})
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := sqlx.GetContext(ctx, r.db, &res, reservationSelect+` WHERE r.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get reservation %s: %w", id, mapError(err))
	}
	return &res, nil
}

func (r *reservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	var where whereBuilder
	if filter.Status != "" {
		where.add("r.status = %s", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where.add("(r.customer_name ILIKE %s OR p.name ILIKE %[1]s)", "%"+s+"%")
	}

	var reservations []*domain.Reservation
	query := reservationSelect + where.sql() + ` ORDER BY r.created_at DESC, r.id`
	if err := sqlx.SelectContext(ctx, r.db, &reservations, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = $2 WHERE id = $1 AND status = 'active'`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update reservation %s: %w", id, mapError(err))
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("failed to check reservation: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	return domain.ErrInvalidTransition
}
