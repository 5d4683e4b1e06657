package entities

import "time"

// Notification is one row per recipient per logical event. EventID groups
// the rows fanned out from a single transition.
type Notification struct {
	ID          uint64    `json:"id"`
	EventID     string    `json:"event_id"`
	RecipientID uint64    `json:"recipient_id"`
	ActorID     uint64    `json:"actor_id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    uint64    `json:"entity_id"`
	EntityName  string    `json:"entity_name"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	ActorName string `json:"actor_name,omitempty" db:"-"`
}
