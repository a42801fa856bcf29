package entities

import (
	"time"

	"github.com/google/uuid"
)

// AgendaEventType represents the kind of change made to an agenda entry
type AgendaEventType string

const (
	AgendaEventTypeCreated   AgendaEventType = "created"
	AgendaEventTypeUpdated   AgendaEventType = "updated"
	AgendaEventTypeCancelled AgendaEventType = "cancelled"
	AgendaEventTypeDeleted   AgendaEventType = "deleted"
)

// AgendaEvent announces a change to an agenda entry. EntryCreatedAt is the
// creation time of the changed entry, which is the field analytics windows
// are filtered on.
type AgendaEvent struct {
	ID             string          `json:"id"`
	EntryID        string          `json:"entry_id"`
	EventType      AgendaEventType `json:"event_type"`
	EntryCreatedAt time.Time       `json:"entry_created_at"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewAgendaEvent creates a new agenda change event
func NewAgendaEvent(entryID string, eventType AgendaEventType, entryCreatedAt time.Time) *AgendaEvent {
	return &AgendaEvent{
		ID:             uuid.New().String(),
		EntryID:        entryID,
		EventType:      eventType,
		EntryCreatedAt: entryCreatedAt,
		Timestamp:      time.Now(),
	}
}
