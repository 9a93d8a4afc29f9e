package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

const productColumns = `
	id, name, description, purchase_price, sale_price, stock, available,
	image_url, category, supplier, purchase_date, user_id, created_at, updated_at`

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (
			id, name, description, purchase_price, sale_price, stock, available,
			image_url, category, supplier, purchase_date, user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Description, p.PurchasePrice, p.SalePrice, p.Stock, p.Available,
		p.ImageURL, p.Category, p.Supplier, p.PurchaseDate, p.UserID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", mapError(err))
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &p, query, id); err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, mapError(err))
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error) {
	page := filter.Page.Normalize(50)

	var where whereBuilder
	if s := strings.TrimSpace(filter.Search); s != "" {
		where.add("(name ILIKE %s OR category ILIKE %[1]s OR supplier ILIKE %[1]s)", "%"+s+"%")
	}
	if filter.Category != "" {
		where.add("category = %s", filter.Category)
	}
	if filter.OnlyAvailable {
		where.clauses = append(where.clauses, "available AND stock > 0")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM products` + where.sql()
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where.sql() +
		` ORDER BY created_at DESC, id LIMIT ` + where.next(page.PageSize) + ` OFFSET ` + where.next(page.Offset())

	var products []*domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products SET
			name = $2, description = $3, purchase_price = $4, sale_price = $5,
			stock = $6, available = $7, image_url = $8, category = $9, supplier = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Description, p.PurchasePrice, p.SalePrice,
		p.Stock, p.Available, p.ImageURL, p.Category, p.Supplier,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ID, mapError(err))
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, mapDeleteError(err))
	}
	return expectAffected(res, id)
}

func (r *productRepository) UpsertByName(ctx context.Context, p *domain.Product) (bool, error) {
	var created bool
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var existingID string
		err := tx.GetContext(ctx, &existingID,
			`SELECT id FROM products WHERE lower(name) = lower($1) ORDER BY created_at LIMIT 1 FOR UPDATE`, p.Name)
		if err != nil {
			if mapped := mapError(err); !isNotFound(mapped) {
				return fmt.Errorf("failed to look up product %q: %w", p.Name, mapped)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO products (
					id, name, description, purchase_price, sale_price, stock, available,
					category, supplier, purchase_date, user_id
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			`, p.ID, p.Name, p.Description, p.PurchasePrice, p.SalePrice, p.Stock, p.Stock > 0,
				p.Category, p.Supplier, p.PurchaseDate, p.UserID)
			if err != nil {
				return fmt.Errorf("failed to insert product %q: %w", p.Name, mapError(err))
			}
			created = true
			return nil
		}

		p.ID = existingID
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET
				purchase_price = $2, sale_price = $3, stock = $4, available = $4 > 0,
				category = COALESCE($5, category), supplier = COALESCE($6, supplier),
				updated_at = NOW()
			WHERE id = $1
		`, existingID, p.PurchasePrice, p.SalePrice, p.Stock, p.Category, p.Supplier)
		if err != nil {
			return fmt.Errorf("failed to refresh product %q: %w", p.Name, mapError(err))
		}
		return nil
	})
	return created, err
}
