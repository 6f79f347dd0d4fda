package policycache

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/foundation/logger"
)

const casbinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type policy struct {
	role     role.Role
	resource resource.Resource
	action   actions.Action
}

// defaultPolicies is the role permission matrix. Inheritance below
// keeps the rows minimal: a rule granted to a role applies to every
// role that inherits it.
var defaultPolicies = []policy{
	{role.Member, resource.Workgroup, actions.View},
	{role.Member, resource.Category, actions.View},
	{role.Designer, resource.Category, actions.Create},
	{role.Designer, resource.Category, actions.Update},
	{role.Designer, resource.Category, actions.Delete},
	{role.Manager, resource.Workgroup, actions.Update},
	{role.Manager, resource.Workgroup, actions.ViewAny},
	{role.Manager, resource.Membership, actions.View},
	{role.Manager, resource.Membership, actions.ViewAny},
	{role.Admin, resource.Membership, actions.Create},
	{role.Admin, resource.Membership, actions.Update},
	{role.Admin, resource.Membership, actions.Delete},
	{role.Admin, resource.Membership, actions.ManageMembers},
	{role.Admin, resource.User, actions.ViewAny},
}

// defaultInheritance lists parent/child pairs: the first role inherits
// every permission of the second.
var defaultInheritance = [][2]role.Role{
	{role.Designer, role.Member},
	{role.Marketing, role.Member},
	{role.Manager, role.Designer},
	{role.Manager, role.Marketing},
	{role.Admin, role.Manager},
}

type memoryCache struct {
	log      *logger.Logger
	enforcer *casbin.Enforcer
}

func newMemoryCache(log *logger.Logger) (*memoryCache, error) {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	return &memoryCache{
		log:      log,
		enforcer: e,
	}, nil
}

func (c *memoryCache) load(policies []policy, inheritance [][2]role.Role) error {
	for _, p := range policies {
		if _, err := c.enforcer.AddPolicy(subject(p.role), p.resource.String(), p.action.String()); err != nil {
			return fmt.Errorf("add policy: %w", err)
		}
	}

	for _, pair := range inheritance {
		if _, err := c.enforcer.AddGroupingPolicy(subject(pair[0]), subject(pair[1])); err != nil {
			return fmt.Errorf("add grouping policy: %w", err)
		}
	}

	return nil
}

func (c *memoryCache) check(ctx context.Context, r role.Role, res resource.Resource, act actions.Action) (bool, error) {
	ok, err := c.enforcer.Enforce(subject(r), res.String(), act.String())
	if err != nil {
		return false, fmt.Errorf("enforce: %w", err)
	}

	return ok, nil
}

func subject(r role.Role) string {
	return "ROLE:" + r.String()
}
