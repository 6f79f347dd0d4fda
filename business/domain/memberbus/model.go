package memberbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/types/memberstatus"
	"github.com/printdesk/printdesk/business/types/role"
)

// Membership links a user to a workgroup. The role applies only inside the
// linked workgroup; the same user may hold different roles elsewhere.
type Membership struct {
	UserID      uuid.UUID
	WorkgroupID uuid.UUID
	Role        role.Role
	Status      memberstatus.Status
	IsDefault   bool
	InvitedBy   *uuid.UUID
	JoinedAt    time.Time
	UpdatedAt   time.Time
}

// NewMembership contains information needed to create a new membership.
type NewMembership struct {
	UserID      uuid.UUID
	WorkgroupID uuid.UUID
	Role        role.Role
	Status      memberstatus.Status
	IsDefault   bool
	InvitedBy   *uuid.UUID
}

// UpdateMembership contains information needed to update a membership.
type UpdateMembership struct {
	Role      *role.Role
	Status    *memberstatus.Status
	IsDefault *bool
}
