// Package repository provides persistence for user accounts.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventcraft_backend/platform/apperr"
)

const userNotFoundMessage = "User not found"

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// User represents an account row.
type User struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	Name             string
	Type             string
	StripeCustomerID *string
	LastLogin        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateParams contains parameters for inserting a user.
type CreateParams struct {
	Email        string
	PasswordHash string
	Name         string
	Type         string
}

// Repository defines persistence operations for accounts.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	GetByStripeCustomerID(ctx context.Context, customerID string) (User, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new account repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const userColumns = `id, email, password_hash, name, type, stripe_customer_id, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Type,
		&u.StripeCustomerID, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// Create inserts a new account. A duplicate email maps to a conflict error.
func (r *Repo) Create(ctx context.Context, params CreateParams) (User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, type)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, params.Email, params.PasswordHash, params.Name, params.Type))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, apperr.Conflict("Email already registered")
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetByID retrieves an account by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound(userNotFoundMessage)
		}
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves an account by email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound(userNotFoundMessage)
		}
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdateLastLogin stamps the account's last successful signin.
func (r *Repo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(userNotFoundMessage)
	}
	return nil
}

// SetStripeCustomerID stores the Stripe customer reference on the account.
func (r *Repo) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	query := `UPDATE users SET stripe_customer_id = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, customerID)
	if err != nil {
		return fmt.Errorf("set stripe customer id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(userNotFoundMessage)
	}
	return nil
}

// GetByStripeCustomerID resolves an account from a Stripe customer reference.
func (r *Repo) GetByStripeCustomerID(ctx context.Context, customerID string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound(userNotFoundMessage)
		}
		return User{}, fmt.Errorf("get user by stripe customer id: %w", err)
	}
	return u, nil
}
