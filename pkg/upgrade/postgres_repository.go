package upgrade

import (
	"context"
	"database/sql"
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

// NewPostgresRepository creates a new PostgreSQL upgrade request repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Create stores a new request. The partial unique index on pending rows
// enforces the one-pending-request-per-account-and-role rule.
func (r *PostgresRepository) Create(ctx context.Context, req Request) (Request, error) {
	query := `
		INSERT INTO role_upgrade_requests (
			id, account_id, requested_role, reason, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.AccountID,
		string(req.RequestedRole),
		req.Reason,
		string(req.Status),
		req.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Request{}, ErrDuplicatePending
		}
		return Request{}, fmt.Errorf("failed to create upgrade request: %w", err)
	}

	return req, nil
}

// Get retrieves a request by ID
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Request, error) {
	query := `
		SELECT id, account_id, requested_role, reason, status,
		       created_at, decided_at, decided_by
		FROM role_upgrade_requests
		WHERE id = $1
	`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// FindPending retrieves the pending request for an account and role, if any
func (r *PostgresRepository) FindPending(ctx context.Context, accountID uuid.UUID, requested role.Role) (Request, error) {
	query := `
		SELECT id, account_id, requested_role, reason, status,
		       created_at, decided_at, decided_by
		FROM role_upgrade_requests
		WHERE account_id = $1
		  AND requested_role = $2
		  AND status = 'pending'
	`

	return r.scanOne(r.pool.QueryRow(ctx, query, accountID, string(requested)))
}

// ListByAccount retrieves all requests for an account, newest first
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Request, error) {
	query := `
		SELECT id, account_id, requested_role, reason, status,
		       created_at, decided_at, decided_by
		FROM role_upgrade_requests
		WHERE account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgrade requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating upgrade requests: %w", rows.Err())
	}

	return requests, nil
}

// Update replaces a stored request
func (r *PostgresRepository) Update(ctx context.Context, req Request) (Request, error) {
	query := `
		UPDATE role_upgrade_requests
		SET status = $2,
		    decided_at = $3,
		    decided_by = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, req.ID, string(req.Status), req.DecidedAt, req.DecidedBy)
	if err != nil {
		return Request{}, fmt.Errorf("failed to update upgrade request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return Request{}, ErrRequestNotFound
	}

	return req, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanOne(row rowScanner) (Request, error) {
	var req Request
	var requestedRole, status string
	var decidedAt sql.NullTime
	var decidedBy sql.NullString

	err := row.Scan(
		&req.ID,
		&req.AccountID,
		&requestedRole,
		&req.Reason,
		&status,
		&req.CreatedAt,
		&decidedAt,
		&decidedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, fmt.Errorf("failed to scan upgrade request: %w", err)
	}

	req.RequestedRole = role.Role(requestedRole)
	req.Status = Status(status)
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}
	if decidedBy.Valid {
		req.DecidedBy = decidedBy.String
	}

	return req, nil
}

// isUniqueViolation reports whether the error is a Postgres unique_violation
func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
