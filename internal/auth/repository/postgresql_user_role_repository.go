package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/database"
	apperrors "github.com/allisson/permguard/internal/errors"
)

// PostgreSQLUserRoleRepository persists role assignments for PostgreSQL.
type PostgreSQLUserRoleRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRoleRepository creates a new PostgreSQL user role repository.
func NewPostgreSQLUserRoleRepository(db *sql.DB) *PostgreSQLUserRoleRepository {
	return &PostgreSQLUserRoleRepository{db: db}
}

// Assign gives the role to the user. Returns ErrRoleAlreadyAssigned if the user already holds it.
func (p *PostgreSQLUserRoleRepository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO user_roles (user_id, role_id, created_at) VALUES ($1, $2, $3)`

	if _, err := querier.ExecContext(ctx, query, userID, roleID, time.Now().UTC()); err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrRoleAlreadyAssigned
		}
		return apperrors.Wrap(err, "failed to assign role")
	}
	return nil
}

// Remove takes the role away from the user. Returns ErrRoleNotAssigned if the user doesn't hold it.
func (p *PostgreSQLUserRoleRepository) Remove(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return apperrors.Wrap(err, "failed to remove role")
	}
	return requireAffected(result, authDomain.ErrRoleNotAssigned)
}

// ListRoleNamesByUserID returns the names of the user's roles ordered by name.
func (p *PostgreSQLUserRoleRepository) ListRoleNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT r.name FROM user_roles ur
			  JOIN roles r ON r.id = ur.role_id
			  WHERE ur.user_id = $1
			  ORDER BY r.name`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user roles")
	}
	return scanNames(rows)
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate role names")
	}
	return names, nil
}
