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

// MySQLUserRoleRepository persists role assignments for MySQL.
type MySQLUserRoleRepository struct {
	db *sql.DB
}

// NewMySQLUserRoleRepository creates a new MySQL user role repository.
func NewMySQLUserRoleRepository(db *sql.DB) *MySQLUserRoleRepository {
	return &MySQLUserRoleRepository{db: db}
}

func marshalPair(userID, roleID uuid.UUID) ([]byte, []byte, error) {
	user, err := userID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	role, err := roleID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal role id")
	}
	return user, role, nil
}

// Assign gives the role to the user. Returns ErrRoleAlreadyAssigned if the user already holds it.
func (m *MySQLUserRoleRepository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	user, role, err := marshalPair(userID, roleID)
	if err != nil {
		return err
	}

	query := `INSERT INTO user_roles (user_id, role_id, created_at) VALUES (?, ?, ?)`

	if _, err := querier.ExecContext(ctx, query, user, role, time.Now().UTC()); err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrRoleAlreadyAssigned
		}
		return apperrors.Wrap(err, "failed to assign role")
	}
	return nil
}

// Remove takes the role away from the user. Returns ErrRoleNotAssigned if the user doesn't hold it.
func (m *MySQLUserRoleRepository) Remove(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	user, role, err := marshalPair(userID, roleID)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`, user, role)
	if err != nil {
		return apperrors.Wrap(err, "failed to remove role")
	}
	return requireAffected(result, authDomain.ErrRoleNotAssigned)
}

// ListRoleNamesByUserID returns the names of the user's roles ordered by name.
func (m *MySQLUserRoleRepository) ListRoleNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	user, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT r.name FROM user_roles ur
			  JOIN roles r ON r.id = ur.role_id
			  WHERE ur.user_id = ?
			  ORDER BY r.name`

	rows, err := querier.QueryContext(ctx, query, user)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user roles")
	}
	return scanNames(rows)
}
