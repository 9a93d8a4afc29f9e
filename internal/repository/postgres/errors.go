package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	sqlStateUniqueViolation = "23505"
	sqlStateCheckViolation  = "23514"
	sqlStateFKViolation     = "23503"
	sqlStateInvalidText     = "22P02"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// mapError translates driver errors into domain errors, keeping the
// original error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}

	switch code, constraint := sqlState(err); code {
	case sqlStateUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, constraintMessage(constraint))
	case sqlStateCheckViolation:
		return &domain.ValidationError{Field: constraint, Message: "violates check constraint"}
	case sqlStateFKViolation:
		return fmt.Errorf("%w: referenced row missing (%s)", domain.ErrNotFound, constraint)
	case sqlStateInvalidText:
		// A malformed uuid can never name an existing row.
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}

// mapDeleteError is mapError for deletes, where a foreign key violation
// means other rows still point at the one being removed.
func mapDeleteError(err error) error {
	if code, constraint := sqlState(err); code == sqlStateFKViolation {
		return fmt.Errorf("%w: %s", domain.ErrInUse, constraintMessage(constraint))
	}
	return mapError(err)
}

var constraintMessages = map[string]string{
	"payment_plans_sale_id_key":        "sale already has a payment plan",
	"reservations_one_active_per_item": "product already has an active reservation",
	"reservations_product_id_fkey":     "product has reservations",
	"sales_product_id_fkey":            "product has sales",
	"users_email_key":                  "email already registered",
}

func constraintMessage(constraint string) string {
	if msg, ok := constraintMessages[constraint]; ok {
		return msg
	}
	return constraint
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// expectAffected turns a zero-row write into ErrNotFound.
func expectAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}
