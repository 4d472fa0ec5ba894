package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/qrgate/internal/database"
	apperrors "github.com/allisson/qrgate/internal/errors"
	"github.com/allisson/qrgate/internal/tokenstore/domain"
)

const mysqlDuplicateEntry = 1062

// MySQLTokenRepository implements token persistence for MySQL databases.
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQL token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// ListValid returns the values of all unconsumed tokens, oldest first.
func (m *MySQLTokenRepository) ListValid(ctx context.Context) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT value FROM tokens WHERE consumed_at IS NULL ORDER BY created_at ASC, value ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tokens")
	}
	defer func() { _ = rows.Close() }()

	return scanValues(rows)
}

// Create inserts a new token.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *domain.StoredToken) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO tokens (value, created_at, consumed_at) VALUES (?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, token.Value, token.CreatedAt, token.ConsumedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrTokenAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// Get retrieves a token by value.
func (m *MySQLTokenRepository) Get(ctx context.Context, value string) (*domain.StoredToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT value, created_at, consumed_at FROM tokens WHERE value = ?`

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

// Consume marks the token consumed only if it is still valid and reports
// whether a row changed.
func (m *MySQLTokenRepository) Consume(ctx context.Context, value string, at time.Time) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE tokens SET consumed_at = ? WHERE value = ? AND consumed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, at, value)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to consume token")
	}
	return rowsChanged(result)
}
