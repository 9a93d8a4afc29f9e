package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

const planSelect = `
	SELECT
		pp.id, pp.sale_id, pp.installment_count, pp.total_amount, pp.amount_per_installment,
		pp.start_date, pp.due_date, pp.status, pp.notes, pp.user_id, pp.created_at,
		s.customer, p.name AS product_name
	FROM payment_plans pp
	JOIN sales s ON s.id = pp.sale_id
	JOIN products p ON p.id = s.product_id`

const installmentColumns = `
	id, plan_id, sequence_number, amount, amount_paid, due_date, paid_date,
	status, payment_method, notes`

type planRepository struct {
	db *DB
}

func NewPlanRepository(db *DB) *planRepository {
	return &planRepository{db: db}
}

func (r *planRepository) CreateWithInstallments(ctx context.Context, plan *domain.PaymentPlan, installments []*domain.Installment) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Plan row; UNIQUE(sale_id) rejects a second plan for the sale
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO payment_plans (
				id, sale_id, installment_count, total_amount, amount_per_installment,
				start_date, due_date, status, notes, user_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at
		`, plan.ID, plan.SaleID, plan.InstallmentCount, plan.TotalAmount, plan.AmountPerInstallment,
			plan.StartDate, plan.DueDate, plan.Status, plan.Notes, plan.UserID,
		).Scan(&plan.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert payment plan: %w", mapError(err))
		}

		// 2. Installment rows
		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO installments (
				id, plan_id, sequence_number, amount, amount_paid, due_date, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, inst := range installments {
			inst.PlanID = plan.ID
			if _, err := stmt.ExecContext(ctx,
				inst.ID, inst.PlanID, inst.SequenceNumber, inst.Amount, inst.AmountPaid, inst.DueDate, inst.Status,
			); err != nil {
				return fmt.Errorf("failed to insert installment %d: %w", inst.SequenceNumber, mapError(err))
			}
		}

		plan.Installments = installments
		return nil
	})
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*domain.PaymentPlan, error) {
	var plan domain.PaymentPlan
	if err := sqlx.GetContext(ctx, r.db, &plan, planSelect+` WHERE pp.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get payment plan %s: %w", id, mapError(err))
	}

	installments, err := r.installmentsFor(ctx, r.db, []string{plan.ID})
	if err != nil {
		return nil, err
	}
	plan.Installments = installments[plan.ID]
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context, filter domain.PlanFilter) ([]*domain.PaymentPlan, int, error) {
	page := filter.Page.Normalize(50)

	var where whereBuilder
	if filter.Status != "" {
		where.add("pp.status = %s", filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM payment_plans pp` + where.sql()
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count payment plans: %w", err)
	}

	query := planSelect + where.sql() +
		` ORDER BY pp.created_at DESC, pp.id LIMIT ` + where.next(page.PageSize) + ` OFFSET ` + where.next(page.Offset())

	var plans []*domain.PaymentPlan
	if err := sqlx.SelectContext(ctx, r.db, &plans, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list payment plans: %w", err)
	}
	if len(plans) == 0 {
		return plans, total, nil
	}

	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	byPlan, err := r.installmentsFor(ctx, r.db, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range plans {
		p.Installments = byPlan[p.ID]
	}
	return plans, total, nil
}

func (r *planRepository) installmentsFor(ctx context.Context, q sqlx.QueryerContext, planIDs []string) (map[string][]*domain.Installment, error) {
	query, args, err := sqlx.In(`SELECT `+installmentColumns+` FROM installments WHERE plan_id IN (?) ORDER BY plan_id, sequence_number`, planIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build installments query: %w", err)
	}

	var rows []*domain.Installment
	if err := sqlx.SelectContext(ctx, q, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}

	byPlan := make(map[string][]*domain.Installment, len(planIDs))
	for _, inst := range rows {
		byPlan[inst.PlanID] = append(byPlan[inst.PlanID], inst)
	}
	return byPlan, nil
}

func (r *planRepository) UpdateInstallment(ctx context.Context, installmentID string, mutate repository.InstallmentMutation) (*domain.PaymentPlan, error) {
	var plan domain.PaymentPlan
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var planID string
		if err := tx.GetContext(ctx, &planID, `SELECT plan_id FROM installments WHERE id = $1`, installmentID); err != nil {
			return fmt.Errorf("failed to get installment %s: %w", installmentID, mapError(err))
		}

		// Lock the plan first so concurrent payments on the same plan serialize
		if err := tx.GetContext(ctx, &plan, planSelect+` WHERE pp.id = $1 FOR UPDATE OF pp`, planID); err != nil {
			return fmt.Errorf("failed to lock payment plan %s: %w", planID, mapError(err))
		}

		var installments []*domain.Installment
		if err := tx.SelectContext(ctx, &installments,
			`SELECT `+installmentColumns+` FROM installments WHERE plan_id = $1 ORDER BY sequence_number FOR UPDATE`, planID); err != nil {
			return fmt.Errorf("failed to lock installments: %w", err)
		}
		plan.Installments = installments

		var target *domain.Installment
		for _, inst := range installments {
			if inst.ID == installmentID {
				target = inst
				break
			}
		}
		if target == nil {
			return fmt.Errorf("%w: installment %s", domain.ErrNotFound, installmentID)
		}

		if err := mutate(&plan, target); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE installments SET
				amount_paid = $2, status = $3, paid_date = $4, payment_method = $5, notes = $6
			WHERE id = $1
		`, target.ID, target.AmountPaid, target.Status, target.PaidDate, target.PaymentMethod, target.Notes); err != nil {
			return fmt.Errorf("failed to update installment: %w", mapError(err))
		}

		if _, err := tx.ExecContext(ctx, `UPDATE payment_plans SET status = $2 WHERE id = $1`, plan.ID, plan.Status); err != nil {
			return fmt.Errorf("failed to update payment plan status: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) UpdateStatus(ctx context.Context, id string, from []domain.PlanStatus, to domain.PlanStatus) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	query, args, err := sqlx.In(`UPDATE payment_plans SET status = ? WHERE id = ? AND status IN (?)`, to, id, allowed)
	if err != nil {
		return fmt.Errorf("failed to build status update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update payment plan %s: %w", id, mapError(err))
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS (SELECT 1 FROM payment_plans WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("failed to check payment plan: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: payment plan %s", domain.ErrNotFound, id)
	}
	return domain.ErrInvalidTransition
}
