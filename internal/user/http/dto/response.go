package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse represents the API response for a user.
// Password hashes and security stamps are never exposed.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
