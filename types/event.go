package types

import "time"

// UserEventType names a user lifecycle transition.
type UserEventType string

const (
	UserCreated UserEventType = "user.created"
	UserUpdated UserEventType = "user.updated"
	UserDeleted UserEventType = "user.deleted"
)

// UserEvent is published to the message queue after a user is created,
// updated, or deleted.
type UserEvent struct {
	// ID uniquely identifies the event for consumer-side deduplication.
	ID string `json:"id"`

	Type   UserEventType `json:"type"`
	UserID int           `json:"user_id"`

	// User is the account state after the change. It is nil for deletions.
	User *User `json:"user,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
