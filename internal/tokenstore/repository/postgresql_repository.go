// Package repository implements token persistence for the reference store on
// PostgreSQL and MySQL. All methods are transaction-aware via database.GetTx.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/allisson/qrgate/internal/database"
	apperrors "github.com/allisson/qrgate/internal/errors"
	"github.com/allisson/qrgate/internal/tokenstore/domain"
)

const pgUniqueViolation = "23505"

// PostgreSQLTokenRepository implements token persistence for PostgreSQL databases.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// ListValid returns the values of all unconsumed tokens, oldest first.
func (p *PostgreSQLTokenRepository) ListValid(ctx context.Context) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT value FROM tokens WHERE consumed_at IS NULL ORDER BY created_at ASC, value ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tokens")
	}
	defer func() { _ = rows.Close() }()

	return scanValues(rows)
}

// Create inserts a new token.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *domain.StoredToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tokens (value, created_at, consumed_at) VALUES ($1, $2, $3)`

	_, err := querier.ExecContext(ctx, query, token.Value, token.CreatedAt, token.ConsumedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return domain.ErrTokenAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// Get retrieves a token by value.
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, value string) (*domain.StoredToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT value, created_at, consumed_at FROM tokens WHERE value = $1`

	var token domain.StoredToken
	var consumedAt sql.NullTime
	err := querier.QueryRowContext(ctx, query, value).Scan(&token.Value, &token.CreatedAt, &consumedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	if consumedAt.Valid {
		token.ConsumedAt = &consumedAt.Time
	}
	return &token, nil
}

// Consume marks the token consumed only if it is still valid. The conditional
// update makes check-and-invalidate atomic; it reports whether a row changed.
func (p *PostgreSQLTokenRepository) Consume(ctx context.Context, value string, at time.Time) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tokens SET consumed_at = $1 WHERE value = $2 AND consumed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, at, value)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to consume token")
	}
	return rowsChanged(result)
}

func scanValues(rows *sql.Rows) ([]string, error) {
	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan token")
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tokens")
	}
	return values, nil
}

func rowsChanged(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected > 0, nil
}
