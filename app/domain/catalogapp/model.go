package catalogapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/business/domain/catalogbus"
	"github.com/printdesk/printdesk/business/types/catalogstatus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/visibility"
)

// Category represents a node in the category tree.
type Category struct {
	ID          string `json:"id"`
	WorkgroupID string `json:"workgroupId"`
	ParentID    string `json:"parentId,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Locale      string `json:"locale"`
	TreePath    string `json:"treePath"`
	Status      string `json:"status"`
	Visibility  string `json:"visibility"`
	SortOrder   int    `json:"sortOrder"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (c Category) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

// Categories is the encodable list of categories.
type Categories []Category

// Encode implements the web.Encoder interface.
func (cs Categories) Encode() ([]byte, string, error) {
	data, err := json.Marshal(cs)
	return data, "application/json", err
}

func toAppCategory(bus catalogbus.Category) Category {
	app := Category{
		ID:          bus.ID.String(),
		WorkgroupID: bus.WorkgroupID.String(),
		Name:        bus.Name.String(),
		Slug:        bus.Slug.String(),
		Locale:      bus.Locale,
		TreePath:    bus.TreePath,
		Status:      bus.Status.String(),
		Visibility:  bus.Visibility.String(),
		SortOrder:   bus.SortOrder,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}

	if bus.ParentID != nil {
		app.ParentID = bus.ParentID.String()
	}

	return app
}

func toAppCategories(cats []catalogbus.Category) Categories {
	app := make(Categories, len(cats))
	for i, cat := range cats {
		app[i] = toAppCategory(cat)
	}
	return app
}

// =============================================================================

// NewCategory defines the data needed to add a new category.
type NewCategory struct {
	ParentID   *string `json:"parent_id"`
	Name       string  `json:"name" validate:"required"`
	Locale     string  `json:"locale" validate:"required"`
	Status     string  `json:"status"`
	Visibility string  `json:"visibility"`
	SortOrder  int     `json:"sortOrder"`
}

// Decode implements the web.Decoder interface.
func (app *NewCategory) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewCategory) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewCategory(app NewCategory, workgroupID uuid.UUID) (catalogbus.NewCategory, error) {
	var parentID *uuid.UUID
	if app.ParentID != nil {
		id, err := uuid.Parse(*app.ParentID)
		if err != nil {
			return catalogbus.NewCategory{}, fmt.Errorf("parse parent id: %w", err)
		}
		parentID = &id
	}

	nme, err := name.Parse(app.Name)
	if err != nil {
		return catalogbus.NewCategory{}, fmt.Errorf("parse name: %w", err)
	}

	status := catalogstatus.Draft
	if app.Status != "" {
		status, err = catalogstatus.Parse(app.Status)
		if err != nil {
			return catalogbus.NewCategory{}, fmt.Errorf("parse status: %w", err)
		}
	}

	vis := visibility.Public
	if app.Visibility != "" {
		vis, err = visibility.Parse(app.Visibility)
		if err != nil {
			return catalogbus.NewCategory{}, fmt.Errorf("parse visibility: %w", err)
		}
	}

	bus := catalogbus.NewCategory{
		WorkgroupID: workgroupID,
		ParentID:    parentID,
		Name:        nme,
		Locale:      app.Locale,
		Status:      status,
		Visibility:  vis,
		SortOrder:   app.SortOrder,
	}

	return bus, nil
}

// =============================================================================

// UpdateCategory defines the data needed to update a category in place.
type UpdateCategory struct {
	Name       *string `json:"name"`
	Status     *string `json:"status"`
	Visibility *string `json:"visibility"`
	SortOrder  *int    `json:"sortOrder"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateCategory) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateCategory) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateCategory(app UpdateCategory) (catalogbus.UpdateCategory, error) {
	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return catalogbus.UpdateCategory{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var status *catalogstatus.Status
	if app.Status != nil {
		st, err := catalogstatus.Parse(*app.Status)
		if err != nil {
			return catalogbus.UpdateCategory{}, fmt.Errorf("parse status: %w", err)
		}
		status = &st
	}

	var vis *visibility.Visibility
	if app.Visibility != nil {
		v, err := visibility.Parse(*app.Visibility)
		if err != nil {
			return catalogbus.UpdateCategory{}, fmt.Errorf("parse visibility: %w", err)
		}
		vis = &v
	}

	bus := catalogbus.UpdateCategory{
		Name:       nme,
		Status:     status,
		Visibility: vis,
		SortOrder:  app.SortOrder,
	}

	return bus, nil
}

// =============================================================================

// MoveCategory defines the data needed to re-parent a category. A nil
// ParentID moves the category to the root of the tree.
type MoveCategory struct {
	ParentID *string `json:"parent_id"`
}

// Decode implements the web.Decoder interface.
func (app *MoveCategory) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app MoveCategory) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}
