package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdministratorRoleName is the role created by the seed-admin command.
const AdministratorRoleName = "Administrator"

// Role is a named group of claims that can be assigned to users.
type Role struct {
	ID        uuid.UUID // Unique identifier (UUIDv7)
	Name      string    // Unique, case-sensitive
	CreatedAt time.Time
}
