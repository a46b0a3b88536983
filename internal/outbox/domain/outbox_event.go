// Package domain defines the outbox event entity and the security event types
// written to it.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Security event types. Each is written in the same transaction as the change it records.
const (
	EventUserRegistered       = "user.registered"
	EventUserPasswordChanged  = "user.password_changed"
	EventSecurityStampRotated = "user.security_stamp_rotated"
	EventUserRoleAssigned     = "user.role_assigned"
	EventUserRoleRemoved      = "user.role_removed"
	EventUserClaimAdded       = "user.claim_added"
	EventUserClaimRemoved     = "user.claim_removed"
	EventRoleCreated          = "role.created"
	EventRoleDeleted          = "role.deleted"
	EventRoleClaimAdded       = "role.claim_added"
	EventRoleClaimRemoved     = "role.claim_removed"
)

// OutboxEvent represents an event in the transactional outbox pattern
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOutboxEvent creates a pending event with payload encoded as JSON.
func NewOutboxEvent(eventType string, payload any) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(data),
		Status:    OutboxEventStatusPending,
	}, nil
}
