// Package workgroupbus provides business access to workgroup data and
// implements the rules for resolving which workgroup a request acts on.
package workgroupbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/sdk/order"
	"github.com/printdesk/printdesk/business/sdk/page"
	"github.com/printdesk/printdesk/business/sdk/session"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/tenantstatus"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/printdesk/printdesk/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound        = errors.New("workgroup not found")
	ErrAccessDenied    = errors.New("workgroup access denied")
	ErrUniqueSlug      = errors.New("slug is not unique")
	ErrNoPublicDefault = errors.New("no public default workgroup configured")
	ErrPublicDefault   = errors.New("public default workgroup cannot be deleted")
)

// Storer interface declares the behavior this package needs to persist
// and retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, wg Workgroup) error
	Update(ctx context.Context, wg Workgroup) error
	Delete(ctx context.Context, wg Workgroup) error
	Query(ctx context.Context, orderBy order.By, pg page.Page) ([]Workgroup, error)
	Count(ctx context.Context) (int, error)
	QueryByID(ctx context.Context, workgroupID uuid.UUID) (Workgroup, error)
	QueryBySlug(ctx context.Context, slug string) (Workgroup, error)
	QueryPublicDefault(ctx context.Context) (Workgroup, error)
}

// Core manages the set of APIs for workgroup access.
type Core struct {
	log                  *logger.Logger
	storer               Storer
	members              *memberbus.Core
	audit                *auditbus.Core
	membershipResolution bool
}

// NewCore constructs a workgroup core for api access. When
// membershipResolution is false every request resolves to the public
// default workgroup regardless of session or membership state.
func NewCore(log *logger.Logger, members *memberbus.Core, audit *auditbus.Core, storer Storer, membershipResolution bool) *Core {
	return &Core{
		log:                  log,
		storer:               storer,
		members:              members,
		audit:                audit,
		membershipResolution: membershipResolution,
	}
}

// NewWithTx constructs a new core value that will use the
// specified transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	members, err := c.members.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	audit, err := c.audit.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	core := Core{
		log:                  c.log,
		storer:               storer,
		members:              members,
		audit:                audit,
		membershipResolution: c.membershipResolution,
	}

	return &core, nil
}

// Create adds a new workgroup to the system.
func (c *Core) Create(ctx context.Context, nw NewWorkgroup) (Workgroup, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.create")
	defer span.End()

	now := time.Now()

	wg := Workgroup{
		ID:              uuid.New(),
		Name:            nw.Name,
		Slug:            nw.Slug,
		Kind:            nw.Kind,
		Status:          tenantstatus.Active,
		IsPublicDefault: nw.IsPublicDefault,
		Settings:        nw.Settings,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.storer.Create(ctx, wg); err != nil {
		var dup sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dup) {
			return Workgroup{}, fmt.Errorf("create: %w", ErrUniqueSlug)
		}
		return Workgroup{}, fmt.Errorf("create: %w", err)
	}

	return wg, nil
}

// Update modifies information about a workgroup.
func (c *Core) Update(ctx context.Context, wg Workgroup, uw UpdateWorkgroup) (Workgroup, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.update")
	defer span.End()

	if uw.Name != nil {
		wg.Name = *uw.Name
	}

	if uw.Slug != nil {
		wg.Slug = *uw.Slug
	}

	if uw.Status != nil {
		wg.Status = *uw.Status
	}

	if uw.Settings != nil {
		wg.Settings = uw.Settings
	}

	wg.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, wg); err != nil {
		var dup sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dup) {
			return Workgroup{}, fmt.Errorf("update: %w", ErrUniqueSlug)
		}
		return Workgroup{}, fmt.Errorf("update: %w", err)
	}

	return wg, nil
}

// Delete removes the specified workgroup. The public default workgroup
// can never be removed because anonymous resolution depends on it.
func (c *Core) Delete(ctx context.Context, wg Workgroup) error {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.delete")
	defer span.End()

	if wg.IsPublicDefault {
		return ErrPublicDefault
	}

	if err := c.storer.Delete(ctx, wg); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing workgroups.
func (c *Core) Query(ctx context.Context, orderBy order.By, pg page.Page) ([]Workgroup, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.query")
	defer span.End()

	wgs, err := c.storer.Query(ctx, orderBy, pg)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return wgs, nil
}

// Count returns the total number of workgroups.
func (c *Core) Count(ctx context.Context) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.count")
	defer span.End()

	return c.storer.Count(ctx)
}

// QueryByID finds the workgroup by the specified ID.
func (c *Core) QueryByID(ctx context.Context, workgroupID uuid.UUID) (Workgroup, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.querybyid")
	defer span.End()

	wg, err := c.storer.QueryByID(ctx, workgroupID)
	if err != nil {
		return Workgroup{}, fmt.Errorf("query: workgroupID[%s]: %w", workgroupID, err)
	}

	return wg, nil
}

// QueryBySlug finds the workgroup by the specified slug.
func (c *Core) QueryBySlug(ctx context.Context, slug string) (Workgroup, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.querybyslug")
	defer span.End()

	wg, err := c.storer.QueryBySlug(ctx, slug)
	if err != nil {
		return Workgroup{}, fmt.Errorf("query: slug[%s]: %w", slug, err)
	}

	return wg, nil
}

// QueryPublicDefault returns the workgroup flagged as the public
// default. ErrNoPublicDefault is returned when none is configured.
func (c *Core) QueryPublicDefault(ctx context.Context) (Workgroup, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.querypublicdefault")
	defer span.End()

	wg, err := c.storer.QueryPublicDefault(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Workgroup{}, ErrNoPublicDefault
		}
		return Workgroup{}, fmt.Errorf("query: %w", err)
	}

	return wg, nil
}

// ResolveContext determines the workgroup a request should act on. The
// session choice wins when the user can still access it, then the
// user's default membership, then the public default workgroup. The
// resolved choice is written back to the session so later requests
// stay on the same workgroup.
func (c *Core) ResolveContext(ctx context.Context, userID uuid.UUID, sess session.Store, sessionID string) (Workgroup, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.resolvecontext")
	defer span.End()

	if !c.membershipResolution {
		return c.QueryPublicDefault(ctx)
	}

	if wg, ok := c.resolveFromSession(ctx, userID, sess, sessionID); ok {
		return wg, nil
	}

	wg, err := c.resolveFromMembership(ctx, userID)
	if err != nil {
		if !errors.Is(err, memberbus.ErrNotFound) {
			return Workgroup{}, fmt.Errorf("resolve membership: %w", err)
		}

		wg, err = c.QueryPublicDefault(ctx)
		if err != nil {
			return Workgroup{}, err
		}
	}

	c.rememberChoice(ctx, sess, sessionID, wg.ID)

	return wg, nil
}

// SwitchContext changes the workgroup the session acts on. The target
// must be an active workgroup the user belongs to, or the public
// default workgroup.
func (c *Core) SwitchContext(ctx context.Context, userID uuid.UUID, workgroupID uuid.UUID, sess session.Store, sessionID string) (Workgroup, error) {
	ctx, span := otel.AddSpan(ctx, "business.workgroupbus.switchcontext")
	defer span.End()

	wg, err := c.QueryByID(ctx, workgroupID)
	if err != nil {
		return Workgroup{}, err
	}

	if !wg.Status.Equal(tenantstatus.Active) {
		return Workgroup{}, ErrAccessDenied
	}

	if !c.accessible(ctx, userID, wg) {
		return Workgroup{}, ErrAccessDenied
	}

	payload := map[string]any{
		"workgroup_id": wg.ID.String(),
		"slug":         wg.Slug.String(),
	}

	if sessionID != "" {
		if fromID, err := sess.ActiveWorkgroup(ctx, sessionID); err == nil {
			payload["from_workgroup_id"] = fromID.String()
		}
	}

	c.rememberChoice(ctx, sess, sessionID, wg.ID)

	c.audit.Record(ctx, auditbus.NewEvent{
		ActorID:     userID,
		WorkgroupID: &wg.ID,
		Action:      "context.switch",
		Entity:      "workgroup",
		Payload:     payload,
	})

	return wg, nil
}

// resolveFromSession returns the session's stored choice when the user
// can still access it. A stale or inaccessible choice is ignored, not
// an error.
func (c *Core) resolveFromSession(ctx context.Context, userID uuid.UUID, sess session.Store, sessionID string) (Workgroup, bool) {
	if sessionID == "" {
		return Workgroup{}, false
	}

	workgroupID, err := sess.ActiveWorkgroup(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNoValue) {
			c.log.Error(ctx, "resolve: session read", "err", err)
		}
		return Workgroup{}, false
	}

	wg, err := c.storer.QueryByID(ctx, workgroupID)
	if err != nil {
		return Workgroup{}, false
	}

	if !wg.Status.Equal(tenantstatus.Active) || !c.accessible(ctx, userID, wg) {
		return Workgroup{}, false
	}

	return wg, true
}

// resolveFromMembership picks the user's default membership and returns
// its workgroup when that workgroup is still active.
func (c *Core) resolveFromMembership(ctx context.Context, userID uuid.UUID) (Workgroup, error) {
	if userID == uuid.Nil {
		return Workgroup{}, memberbus.ErrNotFound
	}

	m, err := c.members.Default(ctx, userID)
	if err != nil {
		return Workgroup{}, err
	}

	wg, err := c.storer.QueryByID(ctx, m.WorkgroupID)
	if err != nil {
		return Workgroup{}, memberbus.ErrNotFound
	}

	if !wg.Status.Equal(tenantstatus.Active) {
		return Workgroup{}, memberbus.ErrNotFound
	}

	return wg, nil
}

func (c *Core) accessible(ctx context.Context, userID uuid.UUID, wg Workgroup) bool {
	if wg.IsPublicDefault {
		return true
	}

	if userID == uuid.Nil {
		return false
	}

	if _, err := c.members.QueryActive(ctx, userID, wg.ID); err != nil {
		return false
	}

	return true
}

func (c *Core) rememberChoice(ctx context.Context, sess session.Store, sessionID string, workgroupID uuid.UUID) {
	if sessionID == "" {
		return
	}

	if err := sess.SetActiveWorkgroup(ctx, sessionID, workgroupID); err != nil {
		c.log.Error(ctx, "resolve: session write", "err", err)
	}
}
