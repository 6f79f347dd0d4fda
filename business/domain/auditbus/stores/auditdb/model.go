package auditdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/auditbus"
)

type eventDB struct {
	ID          uuid.UUID     `db:"id"`
	ActorID     uuid.UUID     `db:"actor_id"`
	WorkgroupID uuid.NullUUID `db:"workgroup_id"`
	Action      string        `db:"action"`
	Entity      string        `db:"entity"`
	Payload     []byte        `db:"payload"`
	CreatedAt   time.Time     `db:"created_at"`
}

func toDBEvent(bus auditbus.Event) (eventDB, error) {
	payload, err := json.Marshal(bus.Payload)
	if err != nil {
		return eventDB{}, fmt.Errorf("marshal payload: %w", err)
	}

	db := eventDB{
		ID:        bus.ID,
		ActorID:   bus.ActorID,
		Action:    bus.Action,
		Entity:    bus.Entity,
		Payload:   payload,
		CreatedAt: bus.CreatedAt.UTC(),
	}

	if bus.WorkgroupID != nil {
		db.WorkgroupID = uuid.NullUUID{UUID: *bus.WorkgroupID, Valid: true}
	}

	return db, nil
}

func toBusEvent(db eventDB) (auditbus.Event, error) {
	var payload map[string]any
	if len(db.Payload) > 0 {
		if err := json.Unmarshal(db.Payload, &payload); err != nil {
			return auditbus.Event{}, fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	bus := auditbus.Event{
		ID:        db.ID,
		ActorID:   db.ActorID,
		Action:    db.Action,
		Entity:    db.Entity,
		Payload:   payload,
		CreatedAt: db.CreatedAt.In(time.Local),
	}

	if db.WorkgroupID.Valid {
		workgroupID := db.WorkgroupID.UUID
		bus.WorkgroupID = &workgroupID
	}

	return bus, nil
}

func toBusEvents(dbEvts []eventDB) ([]auditbus.Event, error) {
	bus := make([]auditbus.Event, len(dbEvts))

	for i, dbEvt := range dbEvts {
		var err error
		bus[i], err = toBusEvent(dbEvt)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
