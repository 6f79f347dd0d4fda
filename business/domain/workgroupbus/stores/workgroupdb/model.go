package workgroupdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/tenantkind"
	"github.com/printdesk/printdesk/business/types/tenantstatus"
)

type workgroupDB struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	Slug            string    `db:"slug"`
	Kind            string    `db:"kind"`
	Status          string    `db:"status"`
	IsPublicDefault bool      `db:"is_public_default"`
	Settings        []byte    `db:"settings"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func toDBWorkgroup(bus workgroupbus.Workgroup) (workgroupDB, error) {
	settings, err := json.Marshal(bus.Settings)
	if err != nil {
		return workgroupDB{}, fmt.Errorf("marshal settings: %w", err)
	}

	db := workgroupDB{
		ID:              bus.ID,
		Name:            bus.Name.String(),
		Slug:            bus.Slug.String(),
		Kind:            bus.Kind.String(),
		Status:          bus.Status.String(),
		IsPublicDefault: bus.IsPublicDefault,
		Settings:        settings,
		CreatedAt:       bus.CreatedAt.UTC(),
		UpdatedAt:       bus.UpdatedAt.UTC(),
	}

	return db, nil
}

func toBusWorkgroup(db workgroupDB) (workgroupbus.Workgroup, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return workgroupbus.Workgroup{}, fmt.Errorf("parse name: %w", err)
	}

	slg, err := slug.Parse(db.Slug)
	if err != nil {
		return workgroupbus.Workgroup{}, fmt.Errorf("parse slug: %w", err)
	}

	kind, err := tenantkind.Parse(db.Kind)
	if err != nil {
		return workgroupbus.Workgroup{}, fmt.Errorf("parse kind: %w", err)
	}

	status, err := tenantstatus.Parse(db.Status)
	if err != nil {
		return workgroupbus.Workgroup{}, fmt.Errorf("parse status: %w", err)
	}

	var settings map[string]any
	if len(db.Settings) > 0 {
		if err := json.Unmarshal(db.Settings, &settings); err != nil {
			return workgroupbus.Workgroup{}, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	bus := workgroupbus.Workgroup{
		ID:              db.ID,
		Name:            nme,
		Slug:            slg,
		Kind:            kind,
		Status:          status,
		IsPublicDefault: db.IsPublicDefault,
		Settings:        settings,
		CreatedAt:       db.CreatedAt.In(time.Local),
		UpdatedAt:       db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusWorkgroups(dbWgs []workgroupDB) ([]workgroupbus.Workgroup, error) {
	bus := make([]workgroupbus.Workgroup, len(dbWgs))

	for i, dbWg := range dbWgs {
		var err error
		bus[i], err = toBusWorkgroup(dbWg)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
