package workgroupapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/tenantkind"
	"github.com/printdesk/printdesk/business/types/tenantstatus"
)

// Workgroup represents information about an individual workgroup.
type Workgroup struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Kind            string         `json:"kind"`
	Status          string         `json:"status"`
	IsPublicDefault bool           `json:"isPublicDefault"`
	Settings        map[string]any `json:"settings,omitempty"`
	DateCreated     string         `json:"dateCreated"`
	DateUpdated     string         `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (w Workgroup) Encode() ([]byte, string, error) {
	data, err := json.Marshal(w)
	return data, "application/json", err
}

func toAppWorkgroup(bus workgroupbus.Workgroup) Workgroup {
	return Workgroup{
		ID:              bus.ID.String(),
		Name:            bus.Name.String(),
		Slug:            bus.Slug.String(),
		Kind:            bus.Kind.String(),
		Status:          bus.Status.String(),
		IsPublicDefault: bus.IsPublicDefault,
		Settings:        bus.Settings,
		DateCreated:     bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:     bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppWorkgroups(wgs []workgroupbus.Workgroup) []Workgroup {
	app := make([]Workgroup, len(wgs))
	for i, wg := range wgs {
		app[i] = toAppWorkgroup(wg)
	}
	return app
}

// =============================================================================

// NewWorkgroup defines the data needed to add a new workgroup.
type NewWorkgroup struct {
	Name            string         `json:"name" validate:"required"`
	Slug            string         `json:"slug" validate:"required"`
	Kind            string         `json:"kind" validate:"required"`
	IsPublicDefault bool           `json:"isPublicDefault"`
	Settings        map[string]any `json:"settings"`
}

// Decode implements the web.Decoder interface.
func (app *NewWorkgroup) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewWorkgroup) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewWorkgroup(app NewWorkgroup) (workgroupbus.NewWorkgroup, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return workgroupbus.NewWorkgroup{}, fmt.Errorf("parse name: %w", err)
	}

	slg, err := slug.Parse(app.Slug)
	if err != nil {
		return workgroupbus.NewWorkgroup{}, fmt.Errorf("parse slug: %w", err)
	}

	kind, err := tenantkind.Parse(app.Kind)
	if err != nil {
		return workgroupbus.NewWorkgroup{}, fmt.Errorf("parse kind: %w", err)
	}

	bus := workgroupbus.NewWorkgroup{
		Name:            nme,
		Slug:            slg,
		Kind:            kind,
		IsPublicDefault: app.IsPublicDefault,
		Settings:        app.Settings,
	}

	return bus, nil
}

// =============================================================================

// UpdateWorkgroup defines the data needed to update a workgroup.
type UpdateWorkgroup struct {
	Name     *string        `json:"name"`
	Slug     *string        `json:"slug"`
	Status   *string        `json:"status"`
	Settings map[string]any `json:"settings"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateWorkgroup) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateWorkgroup) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateWorkgroup(app UpdateWorkgroup) (workgroupbus.UpdateWorkgroup, error) {
	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return workgroupbus.UpdateWorkgroup{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var slg *slug.Slug
	if app.Slug != nil {
		s, err := slug.Parse(*app.Slug)
		if err != nil {
			return workgroupbus.UpdateWorkgroup{}, fmt.Errorf("parse slug: %w", err)
		}
		slg = &s
	}

	var status *tenantstatus.Status
	if app.Status != nil {
		st, err := tenantstatus.Parse(*app.Status)
		if err != nil {
			return workgroupbus.UpdateWorkgroup{}, fmt.Errorf("parse status: %w", err)
		}
		status = &st
	}

	bus := workgroupbus.UpdateWorkgroup{
		Name:     nme,
		Slug:     slg,
		Status:   status,
		Settings: app.Settings,
	}

	return bus, nil
}

// =============================================================================

// SwitchContext defines the data needed to change the active workgroup.
type SwitchContext struct {
	WorkgroupID string `json:"workgroup_id" validate:"required,uuid"`
}

// Decode implements the web.Decoder interface.
func (app *SwitchContext) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app SwitchContext) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// =============================================================================

// AuditEvent represents a recorded event returned to clients.
type AuditEvent struct {
	ID          string         `json:"id"`
	ActorID     string         `json:"actorId"`
	WorkgroupID string         `json:"workgroupId,omitempty"`
	Action      string         `json:"action"`
	Entity      string         `json:"entity"`
	Payload     map[string]any `json:"payload,omitempty"`
	DateCreated string         `json:"dateCreated"`
}

// AuditEvents is the encodable list of events.
type AuditEvents []AuditEvent

// Encode implements the web.Encoder interface.
func (evts AuditEvents) Encode() ([]byte, string, error) {
	data, err := json.Marshal(evts)
	return data, "application/json", err
}

func toAppAuditEvents(evts []auditbus.Event) AuditEvents {
	app := make(AuditEvents, len(evts))

	for i, evt := range evts {
		app[i] = AuditEvent{
			ID:          evt.ID.String(),
			ActorID:     evt.ActorID.String(),
			Action:      evt.Action,
			Entity:      evt.Entity,
			Payload:     evt.Payload,
			DateCreated: evt.CreatedAt.Format(time.RFC3339),
		}

		if evt.WorkgroupID != nil {
			app[i].WorkgroupID = evt.WorkgroupID.String()
		}
	}

	return app
}
