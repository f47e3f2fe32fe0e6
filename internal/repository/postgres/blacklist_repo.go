// internal/repository/postgres/blacklist_repo.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"polisure-service/internal/domain/blacklist"
	xerrors "polisure-service/internal/pkg/errors"
)

// BlacklistRepository persists blacklist entries in a single flat table;
// the category column says which of the nullable rule columns apply.
type BlacklistRepository struct {
	db *pgxpool.Pool
}

func NewBlacklistRepository(db *pgxpool.Pool) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

const blacklistColumns = `
	id, category, reason, created_by, created_at,
	first_name, last_name, email, date_of_birth, operator,
	address, postcode, asset_tag
`

// List returns every stored entry.
func (r *BlacklistRepository) List(ctx context.Context) ([]blacklist.Entry, error) {
	query := `SELECT ` + blacklistColumns + ` FROM blacklist_entries ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklist entries: %w", err)
	}
	defer rows.Close()

	var entries []blacklist.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan blacklist entries: %w", err)
	}

	return entries, nil
}

// GetByID retrieves a single entry.
func (r *BlacklistRepository) GetByID(ctx context.Context, id string) (*blacklist.Entry, error) {
	query := `SELECT ` + blacklistColumns + ` FROM blacklist_entries WHERE id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get blacklist entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get blacklist entry: %w", err)
		}
		return nil, xerrors.ErrNotFound
	}
	return scanEntry(rows)
}

// Create inserts an entry with its rule columns flattened by category.
func (r *BlacklistRepository) Create(ctx context.Context, e *blacklist.Entry) error {
	query := `
		INSERT INTO blacklist_entries (
			id, category, reason, created_by,
			first_name, last_name, email, date_of_birth, operator,
			address, postcode, asset_tag
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	args := flattenEntry(e)
	err := r.db.QueryRow(ctx, query,
		e.ID, e.Category, e.Reason, e.CreatedBy,
		args.firstName, args.lastName, args.email, args.dateOfBirth, args.operator,
		args.address, args.postcode, args.assetTag,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert blacklist entry: %w", err)
	}
	return nil
}

// Update replaces the rule columns of an existing entry.
func (r *BlacklistRepository) Update(ctx context.Context, e *blacklist.Entry) error {
	query := `
		UPDATE blacklist_entries SET
			category = $2, reason = $3,
			first_name = $4, last_name = $5, email = $6, date_of_birth = $7, operator = $8,
			address = $9, postcode = $10, asset_tag = $11
		WHERE id = $1
	`

	args := flattenEntry(e)
	tag, err := r.db.Exec(ctx, query,
		e.ID, e.Category, e.Reason,
		args.firstName, args.lastName, args.email, args.dateOfBirth, args.operator,
		args.address, args.postcode, args.assetTag,
	)
	if err != nil {
		return fmt.Errorf("failed to update blacklist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Delete removes an entry.
func (r *BlacklistRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blacklist_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blacklist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

type flatRule struct {
	firstName, lastName, email, dateOfBirth, operator sql.NullString
	address, postcode, assetTag                       sql.NullString
}

func flattenEntry(e *blacklist.Entry) flatRule {
	var f flatRule
	switch e.Category {
	case blacklist.CategoryIdentity:
		if e.Identity != nil {
			f.firstName = nullable(e.Identity.FirstName)
			f.lastName = nullable(e.Identity.LastName)
			f.email = nullable(e.Identity.Email)
			f.dateOfBirth = nullable(e.Identity.DateOfBirth)
			f.operator = nullable(string(e.Identity.Operator))
		}
	case blacklist.CategoryNetwork:
		if e.Network != nil {
			f.address = nullable(e.Network.Address)
		}
	case blacklist.CategoryLocation:
		if e.Location != nil {
			f.postcode = nullable(e.Location.Postcode)
		}
	case blacklist.CategoryAsset:
		if e.Asset != nil {
			f.assetTag = nullable(e.Asset.AssetTag)
		}
	}
	return f
}

func scanEntry(rows pgx.Rows) (*blacklist.Entry, error) {
	var e blacklist.Entry
	var f flatRule

	err := rows.Scan(
		&e.ID, &e.Category, &e.Reason, &e.CreatedBy, &e.CreatedAt,
		&f.firstName, &f.lastName, &f.email, &f.dateOfBirth, &f.operator,
		&f.address, &f.postcode, &f.assetTag,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan blacklist entry: %w", err)
	}

	switch e.Category {
	case blacklist.CategoryIdentity:
		e.Identity = &blacklist.IdentityRule{
			FirstName:   f.firstName.String,
			LastName:    f.lastName.String,
			Email:       f.email.String,
			DateOfBirth: f.dateOfBirth.String,
			Operator:    blacklist.Operator(f.operator.String),
		}
	case blacklist.CategoryNetwork:
		e.Network = &blacklist.NetworkRule{Address: f.address.String}
	case blacklist.CategoryLocation:
		e.Location = &blacklist.LocationRule{Postcode: f.postcode.String}
	case blacklist.CategoryAsset:
		e.Asset = &blacklist.AssetRule{AssetTag: f.assetTag.String}
	}

	return &e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
