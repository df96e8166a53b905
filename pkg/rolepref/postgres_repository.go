package rolepref

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL role preference repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Get retrieves the persisted role for an account
func (r *PostgresRepository) Get(ctx context.Context, accountID uuid.UUID) (role.Role, error) {
	query := `
		SELECT last_role
		FROM role_preferences
		WHERE account_id = $1
	`

	var tag string
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&tag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPreferenceNotFound
		}
		return "", fmt.Errorf("failed to get role preference: %w", err)
	}

	chosen, ok := role.ParseRole(tag)
	if !ok {
		// A row written by a newer schema; treat as absent rather than failing
		return "", ErrPreferenceNotFound
	}

	return chosen, nil
}

// Set durably records the last-chosen role for an account
func (r *PostgresRepository) Set(ctx context.Context, accountID uuid.UUID, chosen role.Role) error {
	if !chosen.Valid() {
		return fmt.Errorf("unrecognized role: %s", chosen)
	}

	query := `
		INSERT INTO role_preferences (account_id, last_role, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			last_role = EXCLUDED.last_role,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, accountID, string(chosen))
	if err != nil {
		return fmt.Errorf("failed to set role preference: %w", err)
	}

	return nil
}

// Delete removes the persisted role for an account
func (r *PostgresRepository) Delete(ctx context.Context, accountID uuid.UUID) error {
	query := `
		DELETE FROM role_preferences
		WHERE account_id = $1
	`

	_, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete role preference: %w", err)
	}

	return nil
}

// PurgeExcept removes every persisted role except the given account's
func (r *PostgresRepository) PurgeExcept(ctx context.Context, accountID uuid.UUID) error {
	query := `
		DELETE FROM role_preferences
		WHERE account_id != $1
	`

	_, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("failed to purge role preferences: %w", err)
	}

	return nil
}
