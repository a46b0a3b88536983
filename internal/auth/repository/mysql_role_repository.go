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

// MySQLRoleRepository implements Role persistence for MySQL using BINARY(16) UUIDs.
type MySQLRoleRepository struct {
	db *sql.DB
}

// NewMySQLRoleRepository creates a new MySQL Role repository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}

// Create inserts a new role. Returns ErrRoleAlreadyExists when the name is taken.
func (m *MySQLRoleRepository) Create(ctx context.Context, role *authDomain.Role) error {
	querier := database.GetTx(ctx, m.db)

	id, err := role.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	query := `INSERT INTO roles (id, name, created_at) VALUES (?, ?, ?)`

	if _, err := querier.ExecContext(ctx, query, id, role.Name, role.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrRoleAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// GetByID retrieves a role by ID. Returns ErrRoleNotFound if it doesn't exist.
func (m *MySQLRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Role, error) {
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal role id")
	}
	return m.getOne(ctx, `SELECT id, name, created_at FROM roles WHERE id = ?`, idBytes)
}

// GetByName retrieves a role by its exact name. Returns ErrRoleNotFound if it doesn't exist.
// The name column uses a binary collation so the lookup is case-sensitive.
func (m *MySQLRoleRepository) GetByName(ctx context.Context, name string) (*authDomain.Role, error) {
	return m.getOne(ctx, `SELECT id, name, created_at FROM roles WHERE name = ?`, name)
}

func (m *MySQLRoleRepository) getOne(ctx context.Context, query string, arg any) (*authDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	var role authDomain.Role
	var idBytes []byte
	if err := querier.QueryRowContext(ctx, query, arg).Scan(&idBytes, &role.Name, &role.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}
	if err := role.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role id")
	}
	return &role, nil
}

// List returns roles ordered by name.
func (m *MySQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*authDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, created_at FROM roles ORDER BY name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer func() { _ = rows.Close() }()

	roles := make([]*authDomain.Role, 0)
	for rows.Next() {
		var role authDomain.Role
		var idBytes []byte
		if err := rows.Scan(&idBytes, &role.Name, &role.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		if err := role.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal role id")
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate roles")
	}
	return roles, nil
}

// Delete removes a role. Role claims and assignments are removed by cascade.
func (m *MySQLRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}
	return requireAffected(result, authDomain.ErrRoleNotFound)
}
