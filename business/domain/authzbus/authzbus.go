// Package authzbus provides business access to permission checks. Role
// based rules live in a policy store while the cross cutting rules that
// cannot be expressed per role are enforced here.
package authzbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/printdesk/printdesk/foundation/otel"
	"github.com/viccon/sturdyc"
)

// ErrForbidden is returned when the caller lacks permission for the
// requested operation.
var ErrForbidden = errors.New("operation forbidden")

// PolicyStore declares the behavior this package needs to answer role
// based permission questions.
type PolicyStore interface {
	Allowed(ctx context.Context, r role.Role, res resource.Resource, act actions.Action) (bool, error)
}

// Core manages the set of APIs for permission checks.
type Core struct {
	log        *logger.Logger
	members    *memberbus.Core
	policies   PolicyStore
	superAdmin *sturdyc.Client[bool]
}

// NewCore constructs an authorization core for api access.
func NewCore(log *logger.Logger, members *memberbus.Core, policies PolicyStore) *Core {
	const (
		capacity        = 10_000
		numShards       = 10
		ttl             = 30 * time.Second
		evictionPercent = 10
	)

	return &Core{
		log:        log,
		members:    members,
		policies:   policies,
		superAdmin: sturdyc.New[bool](capacity, numShards, ttl, evictionPercent),
	}
}

// Authorize answers whether the user may perform the operation the
// check describes. It returns nil when allowed and ErrForbidden when
// denied. The public default workgroup can never be deleted, not even
// by a super admin, so that rule runs before the bypass.
func (c *Core) Authorize(ctx context.Context, userID uuid.UUID, chk Check) error {
	ctx, span := otel.AddSpan(ctx, "business.authzbus.authorize")
	defer span.End()

	if chk.Resource.Equal(resource.Workgroup) && chk.Action.Equal(actions.Delete) {
		if chk.Workgroup == nil || chk.Workgroup.IsPublicDefault {
			return fmt.Errorf("workgroup delete: %w", ErrForbidden)
		}
	}

	// The public default workgroup and its catalog are visible to
	// everyone, membership or not. Anonymous requests resolve there.
	if chk.Workgroup != nil && chk.Workgroup.IsPublicDefault && chk.Action.Equal(actions.View) {
		if chk.Resource.Equal(resource.Workgroup) || chk.Resource.Equal(resource.Category) {
			return nil
		}
	}

	isSuper, err := c.isSuperAdmin(ctx, userID)
	if err != nil {
		return fmt.Errorf("super admin lookup: %w", err)
	}

	if isSuper {
		return nil
	}

	if chk.Resource.Equal(resource.Workgroup) {
		if chk.Action.Equal(actions.Create) || chk.Action.Equal(actions.Delete) {
			return fmt.Errorf("workgroup %s: %w", chk.Action, ErrForbidden)
		}
	}

	if chk.TargetRole != nil && chk.TargetRole.Equal(role.Admin) && chk.Action.Equal(actions.Delete) {
		return fmt.Errorf("admin membership delete: %w", ErrForbidden)
	}

	if chk.Workgroup == nil {
		return ErrForbidden
	}

	m, err := c.members.QueryActive(ctx, userID, chk.Workgroup.ID)
	if err != nil {
		if errors.Is(err, memberbus.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("membership lookup: %w", err)
	}

	allowed, err := c.policies.Allowed(ctx, m.Role, chk.Resource, chk.Action)
	if err != nil {
		return fmt.Errorf("policy check: %w", err)
	}

	if !allowed {
		return ErrForbidden
	}

	return nil
}

// Invalidate drops the cached super admin answer for the user. Called
// after membership changes so a revoked super admin loses the bypass
// within the request that revoked it.
func (c *Core) Invalidate(userID uuid.UUID) {
	c.superAdmin.Delete(userID.String())
}

func (c *Core) isSuperAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return c.superAdmin.GetOrFetch(ctx, userID.String(), func(ctx context.Context) (bool, error) {
		return c.members.HasRoleAnywhere(ctx, userID, role.SuperAdmin)
	})
}
