package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

const saleSelect = `
	SELECT
		s.id, s.product_id, p.name AS product_name, p.category,
		s.quantity, s.unit_price, s.total_price, s.profit,
		s.customer, s.payment_method, s.sale_date, s.user_id, s.created_at
	FROM sales s
	JOIN products p ON p.id = s.product_id`

type saleRepository struct {
	db *DB
}

func NewSaleRepository(db *DB) *saleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Take the units out of stock, only if enough remain
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2,
				available = (stock - $2) > 0,
				updated_at = NOW()
			WHERE id = $1 AND stock >= $2
		`, sale.ProductID, sale.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", mapError(err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists bool
			if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, sale.ProductID); err != nil {
				return fmt.Errorf("failed to check product: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: product %s", domain.ErrNotFound, sale.ProductID)
			}
			return domain.ErrInsufficientStock
		}

		// 2. Record the sale
		query := `
			INSERT INTO sales (
				id, product_id, quantity, unit_price, total_price, profit,
				customer, payment_method, sale_date, user_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at
		`
		err = tx.QueryRowxContext(ctx, query,
			sale.ID, sale.ProductID, sale.Quantity, sale.UnitPrice, sale.TotalPrice, sale.Profit,
			sale.Customer, sale.PaymentMethod, sale.SaleDate, sale.UserID,
		).Scan(&sale.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert sale: %w", mapError(err))
		}
		return nil
	})
}

func (r *saleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	if err := sqlx.GetContext(ctx, r.db, &sale, saleSelect+` WHERE s.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get sale %s: %w", id, mapError(err))
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, int, error) {
	page := filter.Page.Normalize(100)

	var where whereBuilder
	if filter.ProductID != "" {
		where.add("s.product_id = %s", filter.ProductID)
	}
	if filter.From != nil {
		where.add("s.sale_date >= %s", *filter.From)
	}
	if filter.To != nil {
		where.add("s.sale_date < %s", *filter.To)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM sales s` + where.sql()
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	query := saleSelect + where.sql() +
		` ORDER BY s.sale_date DESC, s.id LIMIT ` + where.next(page.PageSize) + ` OFFSET ` + where.next(page.Offset())

	var sales []*domain.Sale
	if err := sqlx.SelectContext(ctx, r.db, &sales, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, total, nil
}
