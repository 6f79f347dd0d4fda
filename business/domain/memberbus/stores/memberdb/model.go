package memberdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/types/memberstatus"
	"github.com/printdesk/printdesk/business/types/role"
)

type membershipDB struct {
	UserID      uuid.UUID     `db:"user_id"`
	WorkgroupID uuid.UUID     `db:"workgroup_id"`
	Role        string        `db:"role"`
	Status      string        `db:"status"`
	IsDefault   bool          `db:"is_default"`
	InvitedBy   uuid.NullUUID `db:"invited_by"`
	JoinedAt    time.Time     `db:"joined_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func toDBMembership(bus memberbus.Membership) membershipDB {
	db := membershipDB{
		UserID:      bus.UserID,
		WorkgroupID: bus.WorkgroupID,
		Role:        bus.Role.String(),
		Status:      bus.Status.String(),
		IsDefault:   bus.IsDefault,
		JoinedAt:    bus.JoinedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}

	if bus.InvitedBy != nil {
		db.InvitedBy = uuid.NullUUID{UUID: *bus.InvitedBy, Valid: true}
	}

	return db
}

func toBusMembership(db membershipDB) (memberbus.Membership, error) {
	r, err := role.Parse(db.Role)
	if err != nil {
		return memberbus.Membership{}, fmt.Errorf("parse role: %w", err)
	}

	status, err := memberstatus.Parse(db.Status)
	if err != nil {
		return memberbus.Membership{}, fmt.Errorf("parse status: %w", err)
	}

	bus := memberbus.Membership{
		UserID:      db.UserID,
		WorkgroupID: db.WorkgroupID,
		Role:        r,
		Status:      status,
		IsDefault:   db.IsDefault,
		JoinedAt:    db.JoinedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}

	if db.InvitedBy.Valid {
		invitedBy := db.InvitedBy.UUID
		bus.InvitedBy = &invitedBy
	}

	return bus, nil
}

func toBusMemberships(dbMs []membershipDB) ([]memberbus.Membership, error) {
	bus := make([]memberbus.Membership, len(dbMs))

	for i, dbM := range dbMs {
		var err error
		bus[i], err = toBusMembership(dbM)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
