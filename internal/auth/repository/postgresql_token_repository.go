package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/database"
	apperrors "github.com/allisson/permguard/internal/errors"
)

// PostgreSQLTokenRepository implements Token persistence for PostgreSQL.
// Ticket claims are stored as a JSON document.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL Token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

func marshalClaims(claims []authDomain.Claim) (string, error) {
	if claims == nil {
		claims = []authDomain.Claim{}
	}
	data, err := json.Marshal(claims)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal token claims")
	}
	return string(data), nil
}

func unmarshalClaims(data string) ([]authDomain.Claim, error) {
	var claims []authDomain.Claim
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token claims")
	}
	return claims, nil
}

// Create inserts a new Token.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	claims, err := marshalClaims(token.Claims)
	if err != nil {
		return err
	}

	query := `INSERT INTO tokens (id, token_hash, user_id, claims, expires_at, revoked_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TokenHash,
		token.UserID,
		claims,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// Update stores the token's expiry and revocation time.
func (p *PostgreSQLTokenRepository) Update(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tokens SET expires_at = $1, revoked_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, token.ExpiresAt, token.RevokedAt, token.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update token")
	}
	return requireAffected(result, authDomain.ErrTokenNotFound)
}

// GetByTokenHash retrieves a Token by the SHA-256 hash of its plain value.
// Returns ErrTokenNotFound if no token matches.
func (p *PostgreSQLTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, token_hash, user_id, claims, expires_at, revoked_at, created_at
			  FROM tokens WHERE token_hash = $1`

	var token authDomain.Token
	var claims string

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TokenHash,
		&token.UserID,
		&claims,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}

	if token.Claims, err = unmarshalClaims(claims); err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteExpired removes tokens that expired before the given time and returns how many were removed.
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}
