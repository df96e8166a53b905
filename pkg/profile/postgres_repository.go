package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileRepository implements ProfileRepository using PostgreSQL
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository
func NewPostgresProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{
		pool: pool,
	}
}

// GetProfile retrieves the profile for an account
func (r *PostgresProfileRepository) GetProfile(ctx context.Context, accountID uuid.UUID) (Profile, error) {
	query := `
		SELECT
			account_id, roles, firstname, lastname, email, phone, address,
			id_document_path, profile_completed, criteria_completed, radius_km,
			created_at, last_modified_at, deleted_at
		FROM profiles
		WHERE account_id = $1
		  AND deleted_at IS NULL
	`

	var p Profile
	var rolesJSON []byte
	var criteriaCompleted sql.NullBool
	var deletedAt sql.NullTime

	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&p.AccountID,
		&rolesJSON,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.IDDocumentPath,
		&p.ProfileCompleted,
		&criteriaCompleted,
		&p.RadiusKm,
		&p.CreatedAt,
		&p.LastModifiedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	if len(rolesJSON) > 0 {
		if err := json.Unmarshal(rolesJSON, &p.Roles); err != nil {
			return Profile{}, fmt.Errorf("failed to unmarshal roles: %w", err)
		}
	}
	if p.Roles == nil {
		p.Roles = []string{}
	}
	if criteriaCompleted.Valid {
		p.CriteriaCompleted = &criteriaCompleted.Bool
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}

	return p, nil
}

// UpsertProfile creates or replaces the profile for an account
func (r *PostgresProfileRepository) UpsertProfile(ctx context.Context, p Profile) (Profile, error) {
	if p.AccountID == uuid.Nil {
		return Profile{}, fmt.Errorf("account id is required")
	}

	rolesJSON, err := json.Marshal(p.Roles)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to marshal roles: %w", err)
	}

	var criteriaCompleted sql.NullBool
	if p.CriteriaCompleted != nil {
		criteriaCompleted = sql.NullBool{Bool: *p.CriteriaCompleted, Valid: true}
	}

	// The account-service creation time feeds the resolver's account-age
	// check, so it must survive the write; NOW() is only a default for
	// records that never carried one
	var createdAt sql.NullTime
	if !p.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: p.CreatedAt.UTC(), Valid: true}
	}

	query := `
		INSERT INTO profiles (
			account_id, roles, firstname, lastname, email, phone, address,
			id_document_path, profile_completed, criteria_completed, radius_km,
			created_at, last_modified_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()), NOW()
		)
		ON CONFLICT (account_id) DO UPDATE SET
			roles = EXCLUDED.roles,
			firstname = EXCLUDED.firstname,
			lastname = EXCLUDED.lastname,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			id_document_path = EXCLUDED.id_document_path,
			profile_completed = EXCLUDED.profile_completed,
			criteria_completed = EXCLUDED.criteria_completed,
			radius_km = EXCLUDED.radius_km,
			last_modified_at = NOW(),
			deleted_at = NULL
		RETURNING created_at, last_modified_at
	`

	err = r.pool.QueryRow(ctx, query,
		p.AccountID,
		rolesJSON,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.Address,
		p.IDDocumentPath,
		p.ProfileCompleted,
		criteriaCompleted,
		p.RadiusKm,
		createdAt,
	).Scan(&p.CreatedAt, &p.LastModifiedAt)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return p, nil
}

// DeleteProfile soft-deletes the profile for an account
func (r *PostgresProfileRepository) DeleteProfile(ctx context.Context, accountID uuid.UUID) error {
	query := `
		UPDATE profiles
		SET deleted_at = NOW(),
		    last_modified_at = NOW()
		WHERE account_id = $1
		  AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}
