// internal/repository/postgres/policy_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"polisure-service/internal/domain/policy"
	xerrors "polisure-service/internal/pkg/errors"
)

type PolicyRepository struct {
	db *pgxpool.Pool
}

func NewPolicyRepository(db *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// FindByNumber retrieves a policy record by its policy number.
func (r *PolicyRepository) FindByNumber(ctx context.Context, number string) (*policy.Policy, error) {
	query := `
		SELECT id, policy_number, access_code_hash,
		       holder_first, holder_last, holder_email, holder_dob,
		       postcode, vehicle_reg, status, issued_at, expires_at
		FROM policies
		WHERE UPPER(policy_number) = UPPER($1)
	`

	var p policy.Policy
	err := r.db.QueryRow(ctx, query, number).Scan(
		&p.ID, &p.PolicyNumber, &p.AccessCodeHash,
		&p.HolderFirst, &p.HolderLast, &p.HolderEmail, &p.HolderDOB,
		&p.Postcode, &p.VehicleReg, &p.Status, &p.IssuedAt, &p.ExpiresAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find policy: %w", err)
	}

	return &p, nil
}
