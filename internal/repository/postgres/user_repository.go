package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, u.ID, strings.ToLower(u.Email), u.Name, u.Role, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", mapError(err))
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u,
		`SELECT id, email, name, role, password_hash, created_at FROM users WHERE email = $1`,
		strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", mapError(err))
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u,
		`SELECT id, email, name, role, password_hash, created_at FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, mapError(err))
	}
	return &u, nil
}

type loginRepository struct {
	db *DB
}

func NewLoginRepository(db *DB) *loginRepository {
	return &loginRepository{db: db}
}

func (r *loginRepository) Record(ctx context.Context, e *domain.LoginEvent) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO login_events (user_id, email, success, ip, user_agent, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, e.UserID, e.Email, e.Success, e.IP, e.UserAgent, e.Reason).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record login event: %w", mapError(err))
	}
	return nil
}
