package workgroupdb

import (
	"fmt"

	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/order"
)

var orderByFields = map[string]string{
	workgroupbus.OrderByID:        "id",
	workgroupbus.OrderByName:      "name",
	workgroupbus.OrderBySlug:      "slug",
	workgroupbus.OrderByCreatedAt: "created_at",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
