package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

// auditUnion synthesizes the audit trail from the entity tables. Each
// branch yields the same columns as domain.AuditEntry.
const auditUnion = `
	SELECT 'product' AS entity_type, p.id::text AS entity_id, 'created' AS action,
		p.name AS description, p.sale_price AS amount, p.user_id::text AS user_id, p.created_at AS occurred_at
	FROM products p
	UNION ALL
	SELECT 'sale', s.id::text, 'created',
		CONCAT(s.quantity, ' x ', pr.name), s.total_price, s.user_id::text, s.created_at
	FROM sales s JOIN products pr ON pr.id = s.product_id
	UNION ALL
	SELECT 'expense', e.id::text, 'created', e.concept, e.amount, e.user_id::text, e.created_at
	FROM expenses e
	UNION ALL
	SELECT 'reservation', r.id::text, r.status,
		CONCAT(r.customer_name, ' - ', pr.name), r.deposit_amount, r.user_id::text, r.created_at
	FROM reservations r JOIN products pr ON pr.id = r.product_id
	UNION ALL
	SELECT 'payment_plan', pp.id::text, pp.status,
		CONCAT(pp.installment_count, ' installments'), pp.total_amount, pp.user_id::text, pp.created_at
	FROM payment_plans pp
	UNION ALL
	SELECT 'login', l.id::text, l.reason,
		CASE WHEN l.success THEN 'success' ELSE 'failure' END, NULL::numeric, l.user_id::text, l.created_at
	FROM login_events l`

const defaultAuditLimit = 200

type auditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *auditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultAuditLimit
	}

	var where whereBuilder
	where.addIn("a.entity_type", filter.EntityTypes)
	if filter.From != nil {
		where.add("a.occurred_at >= %s", *filter.From)
	}
	if filter.To != nil {
		where.add("a.occurred_at < %s", *filter.To)
	}

	query := `
		SELECT a.entity_type, a.entity_id, a.action, a.description, a.amount,
			a.user_id, u.email AS user_email, a.occurred_at
		FROM (` + auditUnion + `) a
		LEFT JOIN users u ON u.id::text = a.user_id` + where.sql() + `
		ORDER BY a.occurred_at DESC, a.entity_id
		LIMIT ` + where.next(limit)

	var entries []domain.AuditEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
