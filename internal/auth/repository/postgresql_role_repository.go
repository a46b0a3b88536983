// Package repository implements persistence for roles, role and user claims,
// role assignments and authentication tokens on PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/database"
	apperrors "github.com/allisson/permguard/internal/errors"
)

// PostgreSQLRoleRepository implements Role persistence for PostgreSQL.
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// NewPostgreSQLRoleRepository creates a new PostgreSQL Role repository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}

// Create inserts a new role. Returns ErrRoleAlreadyExists when the name is taken.
func (p *PostgreSQLRoleRepository) Create(ctx context.Context, role *authDomain.Role) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO roles (id, name, created_at) VALUES ($1, $2, $3)`

	if _, err := querier.ExecContext(ctx, query, role.ID, role.Name, role.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrRoleAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// GetByID retrieves a role by ID. Returns ErrRoleNotFound if it doesn't exist.
func (p *PostgreSQLRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Role, error) {
	return p.getOne(ctx, `SELECT id, name, created_at FROM roles WHERE id = $1`, id)
}

// GetByName retrieves a role by its exact name. Returns ErrRoleNotFound if it doesn't exist.
func (p *PostgreSQLRoleRepository) GetByName(ctx context.Context, name string) (*authDomain.Role, error) {
	return p.getOne(ctx, `SELECT id, name, created_at FROM roles WHERE name = $1`, name)
}

func (p *PostgreSQLRoleRepository) getOne(ctx context.Context, query string, arg any) (*authDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	var role authDomain.Role
	if err := querier.QueryRowContext(ctx, query, arg).Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}
	return &role, nil
}

// List returns roles ordered by name.
func (p *PostgreSQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*authDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, created_at FROM roles ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer func() { _ = rows.Close() }()

	roles := make([]*authDomain.Role, 0)
	for rows.Next() {
		var role authDomain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate roles")
	}
	return roles, nil
}

// Delete removes a role. Role claims and assignments are removed by cascade.
func (p *PostgreSQLRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}
	return requireAffected(result, authDomain.ErrRoleNotFound)
}

// requireAffected returns notFound when result affected no rows.
func requireAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
