package memberapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/types/memberstatus"
	"github.com/printdesk/printdesk/business/types/role"
)

// Membership represents a user's membership in a workgroup.
type Membership struct {
	UserID      string `json:"userId"`
	WorkgroupID string `json:"workgroupId"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	IsDefault   bool   `json:"isDefault"`
	InvitedBy   string `json:"invitedBy,omitempty"`
	DateJoined  string `json:"dateJoined"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (m Membership) Encode() ([]byte, string, error) {
	data, err := json.Marshal(m)
	return data, "application/json", err
}

// Memberships is the encodable list of memberships.
type Memberships []Membership

// Encode implements the web.Encoder interface.
func (ms Memberships) Encode() ([]byte, string, error) {
	data, err := json.Marshal(ms)
	return data, "application/json", err
}

func toAppMembership(bus memberbus.Membership) Membership {
	app := Membership{
		UserID:      bus.UserID.String(),
		WorkgroupID: bus.WorkgroupID.String(),
		Role:        bus.Role.String(),
		Status:      bus.Status.String(),
		IsDefault:   bus.IsDefault,
		DateJoined:  bus.JoinedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}

	if bus.InvitedBy != nil {
		app.InvitedBy = bus.InvitedBy.String()
	}

	return app
}

func toAppMemberships(ms []memberbus.Membership) Memberships {
	app := make(Memberships, len(ms))
	for i, m := range ms {
		app[i] = toAppMembership(m)
	}
	return app
}

// =============================================================================

// NewMembership defines the data needed to add a user to a workgroup.
type NewMembership struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	Role      string `json:"role" validate:"required"`
	Status    string `json:"status"`
	IsDefault bool   `json:"isDefault"`
}

// Decode implements the web.Decoder interface.
func (app *NewMembership) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewMembership) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewMembership(app NewMembership, workgroupID uuid.UUID, invitedBy uuid.UUID) (memberbus.NewMembership, error) {
	userID, err := uuid.Parse(app.UserID)
	if err != nil {
		return memberbus.NewMembership{}, fmt.Errorf("parse user id: %w", err)
	}

	rle, err := role.Parse(app.Role)
	if err != nil {
		return memberbus.NewMembership{}, fmt.Errorf("parse role: %w", err)
	}

	status := memberstatus.Invited
	if app.Status != "" {
		status, err = memberstatus.Parse(app.Status)
		if err != nil {
			return memberbus.NewMembership{}, fmt.Errorf("parse status: %w", err)
		}
	}

	bus := memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: workgroupID,
		Role:        rle,
		Status:      status,
		IsDefault:   app.IsDefault,
		InvitedBy:   &invitedBy,
	}

	return bus, nil
}

// =============================================================================

// UpdateMembership defines the data needed to update a membership.
type UpdateMembership struct {
	Role      *string `json:"role"`
	Status    *string `json:"status"`
	IsDefault *bool   `json:"isDefault"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateMembership) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateMembership) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateMembership(app UpdateMembership) (memberbus.UpdateMembership, error) {
	var rle *role.Role
	if app.Role != nil {
		r, err := role.Parse(*app.Role)
		if err != nil {
			return memberbus.UpdateMembership{}, fmt.Errorf("parse role: %w", err)
		}
		rle = &r
	}

	var status *memberstatus.Status
	if app.Status != nil {
		st, err := memberstatus.Parse(*app.Status)
		if err != nil {
			return memberbus.UpdateMembership{}, fmt.Errorf("parse status: %w", err)
		}
		status = &st
	}

	bus := memberbus.UpdateMembership{
		Role:      rle,
		Status:    status,
		IsDefault: app.IsDefault,
	}

	return bus, nil
}
