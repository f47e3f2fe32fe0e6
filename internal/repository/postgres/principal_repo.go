// internal/repository/postgres/principal_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"polisure-service/internal/domain/auth"
	xerrors "polisure-service/internal/pkg/errors"
)

type PrincipalRepository struct {
	db *pgxpool.Pool
}

func NewPrincipalRepository(db *pgxpool.Pool) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// FindByEmail retrieves a principal by email, case-insensitively.
func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (*auth.Principal, error) {
	query := `
		SELECT id, email, full_name, password_hash, class, role, status,
		       last_login, created_at, updated_at
		FROM principals
		WHERE LOWER(email) = LOWER($1)
	`

	var p auth.Principal
	err := r.db.QueryRow(ctx, query, email).Scan(
		&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.Class, &p.Role, &p.Status,
		&p.LastLogin, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}

	return &p, nil
}

// FindByID retrieves a principal by primary key.
func (r *PrincipalRepository) FindByID(ctx context.Context, id int64) (*auth.Principal, error) {
	query := `
		SELECT id, email, full_name, password_hash, class, role, status,
		       last_login, created_at, updated_at
		FROM principals
		WHERE id = $1
	`

	var p auth.Principal
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.Class, &p.Role, &p.Status,
		&p.LastLogin, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}

	return &p, nil
}

// ExistsByEmail reports whether any principal uses the email.
func (r *PrincipalRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM principals WHERE LOWER(email) = LOWER($1))`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check principal email: %w", err)
	}
	return exists, nil
}

// Create inserts a principal and fills in its generated fields.
func (r *PrincipalRepository) Create(ctx context.Context, p *auth.Principal) error {
	query := `
		INSERT INTO principals (email, full_name, password_hash, class, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.Email, p.FullName, p.PasswordHash, p.Class, p.Role, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create principal: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps a successful authentication.
func (r *PrincipalRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE principals SET last_login = NOW(), updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// Delete removes a principal record.
func (r *PrincipalRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM principals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete principal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
