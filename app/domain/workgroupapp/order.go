package workgroupapp

import (
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
)

var orderByFields = map[string]string{
	"workgroup_id": workgroupbus.OrderByID,
	"name":         workgroupbus.OrderByName,
	"slug":         workgroupbus.OrderBySlug,
	"created_date": workgroupbus.OrderByCreatedAt,
}
