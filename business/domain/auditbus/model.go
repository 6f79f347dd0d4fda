package auditbus

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a recorded audit trail entry.
type Event struct {
	ID          uuid.UUID
	ActorID     uuid.UUID
	WorkgroupID *uuid.UUID
	Action      string
	Entity      string
	Payload     map[string]any
	CreatedAt   time.Time
}

// NewEvent contains the information needed to record an event.
type NewEvent struct {
	ActorID     uuid.UUID
	WorkgroupID *uuid.UUID
	Action      string
	Entity      string
	Payload     map[string]any
}

func newEvent(ne NewEvent) Event {
	return Event{
		ID:          uuid.New(),
		ActorID:     ne.ActorID,
		WorkgroupID: ne.WorkgroupID,
		Action:      ne.Action,
		Entity:      ne.Entity,
		Payload:     ne.Payload,
		CreatedAt:   time.Now(),
	}
}
