// Package memberbus provides business access to workgroup membership
// records. A membership links one user to one workgroup with a role that is
// valid only inside that workgroup.
package memberbus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/memberstatus"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/printdesk/printdesk/foundation/otel"
)

var (
	ErrNotFound = errors.New("membership not found")
)

// Storer defines the behavior required by the memberbus to interact with
// the database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)

	Upsert(ctx context.Context, m Membership) error
	Update(ctx context.Context, m Membership) error
	Delete(ctx context.Context, m Membership) error
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	SetUserDefault(ctx context.Context, userID uuid.UUID, workgroupID *uuid.UUID) error

	QueryByKey(ctx context.Context, userID uuid.UUID, workgroupID uuid.UUID) (Membership, error)
	QueryByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
	QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]Membership, error)
	ExistsRoleAnywhere(ctx context.Context, userID uuid.UUID, r role.Role) (bool, error)
}

// Core manages the set of APIs for membership access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a core for membership api access.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// NewWithTx constructs a new Core value replacing the Storer value with a
// Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, storer), nil
}

// Apply adds a membership for the (user, workgroup) pair. If the pair
// already has a membership the call collapses to an update of that row, a
// second row is never created.
func (c *Core) Apply(ctx context.Context, nm NewMembership) (Membership, error) {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.apply")
	defer span.End()

	now := time.Now()

	m := Membership{
		UserID:      nm.UserID,
		WorkgroupID: nm.WorkgroupID,
		Role:        nm.Role,
		Status:      nm.Status,
		IsDefault:   nm.IsDefault,
		InvitedBy:   nm.InvitedBy,
		JoinedAt:    now,
		UpdatedAt:   now,
	}

	// A user holds at most one default membership. Demote any existing
	// default before this one takes the flag.
	if m.IsDefault {
		if err := c.storer.ClearDefault(ctx, m.UserID); err != nil {
			return Membership{}, fmt.Errorf("clearDefault: %w", err)
		}
	}

	if err := c.storer.Upsert(ctx, m); err != nil {
		return Membership{}, fmt.Errorf("upsert: %w", err)
	}

	if m.IsDefault {
		if err := c.storer.SetUserDefault(ctx, m.UserID, &m.WorkgroupID); err != nil {
			return Membership{}, fmt.Errorf("setUserDefault: %w", err)
		}
	}

	return m, nil
}

// Update modifies data about a membership.
func (c *Core) Update(ctx context.Context, m Membership, um UpdateMembership) (Membership, error) {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.update")
	defer span.End()

	if um.Role != nil {
		m.Role = *um.Role
	}

	if um.Status != nil {
		m.Status = *um.Status
	}

	wasDefault := m.IsDefault

	if um.IsDefault != nil {
		if *um.IsDefault && !m.IsDefault {
			if err := c.storer.ClearDefault(ctx, m.UserID); err != nil {
				return Membership{}, fmt.Errorf("clearDefault: %w", err)
			}
		}
		m.IsDefault = *um.IsDefault
	}

	m.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, m); err != nil {
		return Membership{}, fmt.Errorf("update: %w", err)
	}

	// The user row carries a denormalized copy of the default workgroup.
	// Keep it in step with the membership flags.
	if m.IsDefault != wasDefault {
		target := &m.WorkgroupID
		if !m.IsDefault {
			target = nil
		}
		if err := c.storer.SetUserDefault(ctx, m.UserID, target); err != nil {
			return Membership{}, fmt.Errorf("setUserDefault: %w", err)
		}
	}

	return m, nil
}

// Remove deletes the specified membership.
func (c *Core) Remove(ctx context.Context, m Membership) error {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.remove")
	defer span.End()

	if err := c.storer.Delete(ctx, m); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if m.IsDefault {
		if err := c.storer.SetUserDefault(ctx, m.UserID, nil); err != nil {
			return fmt.Errorf("setUserDefault: %w", err)
		}
	}

	return nil
}

// QueryByKey finds the membership for the (user, workgroup) pair regardless
// of status.
func (c *Core) QueryByKey(ctx context.Context, userID uuid.UUID, workgroupID uuid.UUID) (Membership, error) {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.queryByKey")
	defer span.End()

	m, err := c.storer.QueryByKey(ctx, userID, workgroupID)
	if err != nil {
		return Membership{}, fmt.Errorf("query: user[%s] workgroup[%s]: %w", userID, workgroupID, err)
	}

	return m, nil
}

// QueryActive finds the membership for the (user, workgroup) pair, treating
// anything but an active membership as not found. Authorization and context
// resolution only ever see active memberships.
func (c *Core) QueryActive(ctx context.Context, userID uuid.UUID, workgroupID uuid.UUID) (Membership, error) {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.queryActive")
	defer span.End()

	m, err := c.storer.QueryByKey(ctx, userID, workgroupID)
	if err != nil {
		return Membership{}, fmt.Errorf("query: user[%s] workgroup[%s]: %w", userID, workgroupID, err)
	}

	if !m.Status.Equal(memberstatus.Active) {
		return Membership{}, ErrNotFound
	}

	return m, nil
}

// QueryByUser returns all memberships held by the user.
func (c *Core) QueryByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.queryByUser")
	defer span.End()

	ms, err := c.storer.QueryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query: user[%s]: %w", userID, err)
	}

	return ms, nil
}

// QueryByWorkgroup returns all memberships inside the workgroup.
func (c *Core) QueryByWorkgroup(ctx context.Context, workgroupID uuid.UUID) ([]Membership, error) {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.queryByWorkgroup")
	defer span.End()

	ms, err := c.storer.QueryByWorkgroup(ctx, workgroupID)
	if err != nil {
		return nil, fmt.Errorf("query: workgroup[%s]: %w", workgroupID, err)
	}

	return ms, nil
}

// Default returns the user's active default membership. When data corruption
// leaves more than one membership flagged default, the most recently joined
// one wins deterministically.
func (c *Core) Default(ctx context.Context, userID uuid.UUID) (Membership, error) {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.default")
	defer span.End()

	ms, err := c.storer.QueryByUser(ctx, userID)
	if err != nil {
		return Membership{}, fmt.Errorf("query: user[%s]: %w", userID, err)
	}

	var defaults []Membership
	for _, m := range ms {
		if m.IsDefault && m.Status.Equal(memberstatus.Active) {
			defaults = append(defaults, m)
		}
	}

	if len(defaults) == 0 {
		return Membership{}, ErrNotFound
	}

	sort.Slice(defaults, func(i, j int) bool {
		if !defaults[i].JoinedAt.Equal(defaults[j].JoinedAt) {
			return defaults[i].JoinedAt.After(defaults[j].JoinedAt)
		}
		return defaults[i].WorkgroupID.String() < defaults[j].WorkgroupID.String()
	})

	return defaults[0], nil
}

// HasRoleAnywhere reports whether the user holds an active membership with
// the given role in any workgroup. Used for the global super admin bypass,
// which is deliberately evaluated without workgroup scoping.
func (c *Core) HasRoleAnywhere(ctx context.Context, userID uuid.UUID, r role.Role) (bool, error) {
	ctx, span := otel.AddSpan(ctx, "business.memberbus.hasRoleAnywhere")
	defer span.End()

	found, err := c.storer.ExistsRoleAnywhere(ctx, userID, r)
	if err != nil {
		return false, fmt.Errorf("existsRoleAnywhere: user[%s] role[%s]: %w", userID, r, err)
	}

	return found, nil
}
