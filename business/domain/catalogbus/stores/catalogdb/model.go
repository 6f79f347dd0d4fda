package catalogdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/catalogbus"
	"github.com/printdesk/printdesk/business/types/catalogstatus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/visibility"
)

type categoryDB struct {
	ID          uuid.UUID     `db:"id"`
	WorkgroupID uuid.UUID     `db:"workgroup_id"`
	ParentID    uuid.NullUUID `db:"parent_id"`
	Name        string        `db:"name"`
	Slug        string        `db:"slug"`
	Locale      string        `db:"locale"`
	TreePath    string        `db:"tree_path"`
	Status      string        `db:"status"`
	Visibility  string        `db:"visibility"`
	SortOrder   int           `db:"sort_order"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func toDBCategory(bus catalogbus.Category) categoryDB {
	db := categoryDB{
		ID:          bus.ID,
		WorkgroupID: bus.WorkgroupID,
		Name:        bus.Name.String(),
		Slug:        bus.Slug.String(),
		Locale:      bus.Locale,
		TreePath:    bus.TreePath,
		Status:      bus.Status.String(),
		Visibility:  bus.Visibility.String(),
		SortOrder:   bus.SortOrder,
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}

	if bus.ParentID != nil {
		db.ParentID = uuid.NullUUID{UUID: *bus.ParentID, Valid: true}
	}

	return db
}

func toBusCategory(db categoryDB) (catalogbus.Category, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return catalogbus.Category{}, fmt.Errorf("parse name: %w", err)
	}

	slg, err := slug.Parse(db.Slug)
	if err != nil {
		return catalogbus.Category{}, fmt.Errorf("parse slug: %w", err)
	}

	status, err := catalogstatus.Parse(db.Status)
	if err != nil {
		return catalogbus.Category{}, fmt.Errorf("parse status: %w", err)
	}

	vis, err := visibility.Parse(db.Visibility)
	if err != nil {
		return catalogbus.Category{}, fmt.Errorf("parse visibility: %w", err)
	}

	bus := catalogbus.Category{
		ID:          db.ID,
		WorkgroupID: db.WorkgroupID,
		Name:        nme,
		Slug:        slg,
		Locale:      db.Locale,
		TreePath:    db.TreePath,
		Status:      status,
		Visibility:  vis,
		SortOrder:   db.SortOrder,
		CreatedAt:   db.CreatedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}

	if db.ParentID.Valid {
		parentID := db.ParentID.UUID
		bus.ParentID = &parentID
	}

	return bus, nil
}

func toBusCategories(dbCats []categoryDB) ([]catalogbus.Category, error) {
	bus := make([]catalogbus.Category, len(dbCats))

	for i, dbCat := range dbCats {
		var err error
		bus[i], err = toBusCategory(dbCat)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
