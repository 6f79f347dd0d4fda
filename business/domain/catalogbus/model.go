package catalogbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/types/catalogstatus"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/visibility"
)

// Category represents a node in a workgroup's product category tree.
// TreePath holds the IDs of every ancestor from the root down, joined
// with "/". A root category has an empty TreePath.
type Category struct {
	ID          uuid.UUID
	WorkgroupID uuid.UUID
	ParentID    *uuid.UUID
	Name        name.Name
	Slug        slug.Slug
	Locale      string
	TreePath    string
	Status      catalogstatus.Status
	Visibility  visibility.Visibility
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCategory contains information needed to create a new category.
type NewCategory struct {
	WorkgroupID uuid.UUID
	ParentID    *uuid.UUID
	Name        name.Name
	Locale      string
	Status      catalogstatus.Status
	Visibility  visibility.Visibility
	SortOrder   int
}

// UpdateCategory contains information needed to update a category.
// Re-parenting is a separate operation, see Move.
type UpdateCategory struct {
	Name       *name.Name
	Status     *catalogstatus.Status
	Visibility *visibility.Visibility
	SortOrder  *int
}
