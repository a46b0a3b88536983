package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/database"
	apperrors "github.com/allisson/permguard/internal/errors"
)

// postgresClaimTable stores claims owned by a user or a role. The table has
// the columns (<owner>, claim_type, claim_value, created_at).
type postgresClaimTable struct {
	db          *sql.DB
	table       string
	ownerColumn string
}

func (t postgresClaimTable) add(ctx context.Context, ownerID uuid.UUID, claim authDomain.Claim) error {
	querier := database.GetTx(ctx, t.db)

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, claim_type, claim_value, created_at) VALUES ($1, $2, $3, $4)`,
		t.table, t.ownerColumn,
	)

	_, err := querier.ExecContext(ctx, query, ownerID, claim.Type, claim.Value, time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrClaimAlreadyExists
		}
		return apperrors.Wrapf(err, "failed to insert into %s", t.table)
	}
	return nil
}

// remove deletes the claim stored with exactly this type and value.
func (t postgresClaimTable) remove(ctx context.Context, ownerID uuid.UUID, claim authDomain.Claim) error {
	querier := database.GetTx(ctx, t.db)

	query := fmt.Sprintf(
		`DELETE FROM %s WHERE %s = $1 AND claim_type = $2 AND claim_value = $3`,
		t.table, t.ownerColumn,
	)

	result, err := querier.ExecContext(ctx, query, ownerID, claim.Type, claim.Value)
	if err != nil {
		return apperrors.Wrapf(err, "failed to delete from %s", t.table)
	}
	return requireAffected(result, authDomain.ErrClaimNotFound)
}

func (t postgresClaimTable) list(ctx context.Context, ownerID uuid.UUID) ([]authDomain.Claim, error) {
	querier := database.GetTx(ctx, t.db)

	query := fmt.Sprintf(
		`SELECT claim_type, claim_value FROM %s WHERE %s = $1 ORDER BY created_at, claim_type, claim_value`,
		t.table, t.ownerColumn,
	)

	rows, err := querier.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to list %s", t.table)
	}
	return scanClaims(rows)
}

func scanClaims(rows *sql.Rows) ([]authDomain.Claim, error) {
	defer func() { _ = rows.Close() }()

	claims := make([]authDomain.Claim, 0)
	for rows.Next() {
		var claim authDomain.Claim
		if err := rows.Scan(&claim.Type, &claim.Value); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan claim")
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate claims")
	}
	return claims, nil
}

// PostgreSQLUserClaimRepository persists claims attached directly to users.
type PostgreSQLUserClaimRepository struct {
	claims postgresClaimTable
}

// NewPostgreSQLUserClaimRepository creates a new PostgreSQL user claim repository.
func NewPostgreSQLUserClaimRepository(db *sql.DB) *PostgreSQLUserClaimRepository {
	return &PostgreSQLUserClaimRepository{
		claims: postgresClaimTable{db: db, table: "user_claims", ownerColumn: "user_id"},
	}
}

// Add attaches a claim to a user. Returns ErrClaimAlreadyExists for a duplicate.
func (r *PostgreSQLUserClaimRepository) Add(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error {
	return r.claims.add(ctx, userID, claim)
}

// Remove detaches a claim from a user. Returns ErrClaimNotFound if it is not attached.
func (r *PostgreSQLUserClaimRepository) Remove(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error {
	return r.claims.remove(ctx, userID, claim)
}

// ListByUserID returns the user's claims in insertion order.
func (r *PostgreSQLUserClaimRepository) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
) ([]authDomain.Claim, error) {
	return r.claims.list(ctx, userID)
}

// PostgreSQLRoleClaimRepository persists claims attached to roles.
type PostgreSQLRoleClaimRepository struct {
	claims postgresClaimTable
}

// NewPostgreSQLRoleClaimRepository creates a new PostgreSQL role claim repository.
func NewPostgreSQLRoleClaimRepository(db *sql.DB) *PostgreSQLRoleClaimRepository {
	return &PostgreSQLRoleClaimRepository{
		claims: postgresClaimTable{db: db, table: "role_claims", ownerColumn: "role_id"},
	}
}

// Add attaches a claim to a role. Returns ErrClaimAlreadyExists for a duplicate.
func (r *PostgreSQLRoleClaimRepository) Add(ctx context.Context, roleID uuid.UUID, claim authDomain.Claim) error {
	return r.claims.add(ctx, roleID, claim)
}

// Remove detaches a claim from a role. Returns ErrClaimNotFound if it is not attached.
func (r *PostgreSQLRoleClaimRepository) Remove(ctx context.Context, roleID uuid.UUID, claim authDomain.Claim) error {
	return r.claims.remove(ctx, roleID, claim)
}

// ListByRoleID returns the role's claims in insertion order.
func (r *PostgreSQLRoleClaimRepository) ListByRoleID(
	ctx context.Context,
	roleID uuid.UUID,
) ([]authDomain.Claim, error) {
	return r.claims.list(ctx, roleID)
}
