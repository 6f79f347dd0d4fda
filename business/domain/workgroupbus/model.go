package workgroupbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/printdesk/printdesk/business/types/tenantkind"
	"github.com/printdesk/printdesk/business/types/tenantstatus"
)

// Workgroup represents a print shop workspace that scopes catalog data
// and memberships.
type Workgroup struct {
	ID              uuid.UUID
	Name            name.Name
	Slug            slug.Slug
	Kind            tenantkind.Kind
	Status          tenantstatus.Status
	IsPublicDefault bool
	Settings        map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewWorkgroup contains information needed to create a new workgroup.
type NewWorkgroup struct {
	Name            name.Name
	Slug            slug.Slug
	Kind            tenantkind.Kind
	IsPublicDefault bool
	Settings        map[string]any
}

// UpdateWorkgroup contains information needed to update a workgroup.
// Fields left nil are not changed.
type UpdateWorkgroup struct {
	Name     *name.Name
	Slug     *slug.Slug
	Status   *tenantstatus.Status
	Settings map[string]any
}
