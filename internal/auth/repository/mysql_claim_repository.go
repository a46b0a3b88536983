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

// mysqlClaimTable is the MySQL counterpart of postgresClaimTable. Owner ids
// are BINARY(16).
type mysqlClaimTable struct {
	db          *sql.DB
	table       string
	ownerColumn string
}

func (t mysqlClaimTable) add(ctx context.Context, ownerID uuid.UUID, claim authDomain.Claim) error {
	querier := database.GetTx(ctx, t.db)

	owner, err := ownerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrapf(err, "failed to marshal %s", t.ownerColumn)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, claim_type, claim_value, created_at) VALUES (?, ?, ?, ?)`,
		t.table, t.ownerColumn,
	)

	_, err = querier.ExecContext(ctx, query, owner, claim.Type, claim.Value, time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrClaimAlreadyExists
		}
		return apperrors.Wrapf(err, "failed to insert into %s", t.table)
	}
	return nil
}

func (t mysqlClaimTable) remove(ctx context.Context, ownerID uuid.UUID, claim authDomain.Claim) error {
	querier := database.GetTx(ctx, t.db)

	owner, err := ownerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrapf(err, "failed to marshal %s", t.ownerColumn)
	}

	query := fmt.Sprintf(
		`DELETE FROM %s WHERE %s = ? AND claim_type = ? AND claim_value = ?`,
		t.table, t.ownerColumn,
	)

	result, err := querier.ExecContext(ctx, query, owner, claim.Type, claim.Value)
	if err != nil {
		return apperrors.Wrapf(err, "failed to delete from %s", t.table)
	}
	return requireAffected(result, authDomain.ErrClaimNotFound)
}

func (t mysqlClaimTable) list(ctx context.Context, ownerID uuid.UUID) ([]authDomain.Claim, error) {
	querier := database.GetTx(ctx, t.db)

	owner, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to marshal %s", t.ownerColumn)
	}

	query := fmt.Sprintf(
		`SELECT claim_type, claim_value FROM %s WHERE %s = ? ORDER BY created_at, claim_type, claim_value`,
		t.table, t.ownerColumn,
	)

	rows, err := querier.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to list %s", t.table)
	}
	return scanClaims(rows)
}

// MySQLUserClaimRepository persists claims attached directly to users.
type MySQLUserClaimRepository struct {
	claims mysqlClaimTable
}

// NewMySQLUserClaimRepository creates a new MySQL user claim repository.
func NewMySQLUserClaimRepository(db *sql.DB) *MySQLUserClaimRepository {
	return &MySQLUserClaimRepository{
		claims: mysqlClaimTable{db: db, table: "user_claims", ownerColumn: "user_id"},
	}
}

// Add attaches a claim to a user.
func (r *MySQLUserClaimRepository) Add(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error {
	return r.claims.add(ctx, userID, claim)
}

// Remove detaches a claim from a user.
func (r *MySQLUserClaimRepository) Remove(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error {
	return r.claims.remove(ctx, userID, claim)
}

// ListByUserID returns the user's claims in insertion order.
func (r *MySQLUserClaimRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	return r.claims.list(ctx, userID)
}

// MySQLRoleClaimRepository persists claims attached to roles.
type MySQLRoleClaimRepository struct {
	claims mysqlClaimTable
}

// NewMySQLRoleClaimRepository creates a new MySQL role claim repository.
func NewMySQLRoleClaimRepository(db *sql.DB) *MySQLRoleClaimRepository {
	return &MySQLRoleClaimRepository{
		claims: mysqlClaimTable{db: db, table: "role_claims", ownerColumn: "role_id"},
	}
}

// Add attaches a claim to a role.
func (r *MySQLRoleClaimRepository) Add(ctx context.Context, roleID uuid.UUID, claim authDomain.Claim) error {
	return r.claims.add(ctx, roleID, claim)
}

// Remove detaches a claim from a role.
func (r *MySQLRoleClaimRepository) Remove(ctx context.Context, roleID uuid.UUID, claim authDomain.Claim) error {
	return r.claims.remove(ctx, roleID, claim)
}

// ListByRoleID returns the role's claims in insertion order.
func (r *MySQLRoleClaimRepository) ListByRoleID(ctx context.Context, roleID uuid.UUID) ([]authDomain.Claim, error) {
	return r.claims.list(ctx, roleID)
}
