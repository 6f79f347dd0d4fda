package authzbus

import (
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
	"github.com/printdesk/printdesk/business/types/role"
)

// Check describes a single permission question: may the caller perform
// Action on Resource inside Workgroup. TargetRole carries the role of
// the membership being acted on for membership operations.
type Check struct {
	Resource   resource.Resource
	Action     actions.Action
	Workgroup  *workgroupbus.Workgroup
	TargetRole *role.Role
}
