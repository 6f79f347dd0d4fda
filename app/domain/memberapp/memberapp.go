// Package memberapp maintains the app layer api for workgroup membership
// management. Every operation is scoped to the workgroup the request
// resolved to.
package memberapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/app/sdk/mid"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/domain/authzbus"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/sdk/web"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
)

type app struct {
	memberBus *memberbus.Core
	auditBus  *auditbus.Core
	authzBus  *authzbus.Core
}

func newApp(memberBus *memberbus.Core, auditBus *auditbus.Core, authzBus *authzbus.Core) *app {
	return &app{
		memberBus: memberBus,
		auditBus:  auditBus,
		authzBus:  authzBus,
	}
}

// executeUnderTransaction constructs a new app value within a
// transaction when one exists in the context.
func (a *app) executeUnderTransaction(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return a, nil
	}

	memberBus, err := a.memberBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	auditBus, err := a.auditBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return newApp(memberBus, auditBus, a.authzBus), nil
}

// authorizeTarget runs the permission check carrying the role of the
// membership being acted on. The engine refuses admin removals for
// callers who are not super admins.
func (a *app) authorizeTarget(ctx context.Context, m memberbus.Membership, act actions.Action) *errs.Error {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	wg, err := mid.GetWorkgroup(ctx)
	if err != nil {
		return errs.New(errs.FailedPrecondition, err)
	}

	chk := authzbus.Check{
		Resource:   resource.Membership,
		Action:     act,
		Workgroup:  &wg,
		TargetRole: &m.Role,
	}

	if err := a.authzBus.Authorize(ctx, userID, chk); err != nil {
		if errors.Is(err, authzbus.ErrForbidden) {
			return errs.New(errs.PermissionDenied, err)
		}
		return errs.New(errs.Internal, err)
	}

	return nil
}

// query returns the memberships of the current workgroup.
func (a *app) query(ctx context.Context, _ *http.Request) web.Encoder {
	wg, err := mid.GetWorkgroup(ctx)
	if err != nil {
		return errs.New(errs.FailedPrecondition, err)
	}

	ms, err := a.memberBus.QueryByWorkgroup(ctx, wg.ID)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: workgroupID[%s]: %s", wg.ID, err)
	}

	return toAppMemberships(ms)
}

// apply adds a user to the current workgroup. Applying for a user who
// already holds a membership updates that membership in place.
func (a *app) apply(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app NewMembership
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	wg, err := mid.GetWorkgroup(ctx)
	if err != nil {
		return errs.New(errs.FailedPrecondition, err)
	}

	callerID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	nm, err := toBusNewMembership(app, wg.ID, callerID)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	m, err := a.memberBus.Apply(ctx, nm)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "apply: userID[%s] workgroupID[%s]: %s", nm.UserID, wg.ID, err)
	}

	a.authzBus.Invalidate(m.UserID)

	a.auditBus.Record(ctx, auditbus.NewEvent{
		ActorID:     callerID,
		WorkgroupID: &wg.ID,
		Action:      "member.apply",
		Entity:      "membership",
		Payload: map[string]any{
			"user_id": m.UserID.String(),
			"role":    m.Role.String(),
			"status":  m.Status.String(),
		},
	})

	return toAppMembership(m)
}

// update modifies the membership of the user named in the path.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app UpdateMembership
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	m, appErr := a.membershipFromPath(ctx, r)
	if appErr != nil {
		return appErr
	}

	if appErr := a.authorizeTarget(ctx, m, actions.Update); appErr != nil {
		return appErr
	}

	um, err := toBusUpdateMembership(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updM, err := a.memberBus.Update(ctx, m, um)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "update: userID[%s] workgroupID[%s]: %s", m.UserID, m.WorkgroupID, err)
	}

	a.authzBus.Invalidate(updM.UserID)

	callerID, _ := mid.GetUserID(ctx)
	a.auditBus.Record(ctx, auditbus.NewEvent{
		ActorID:     callerID,
		WorkgroupID: &m.WorkgroupID,
		Action:      "member.update",
		Entity:      "membership",
		Payload: map[string]any{
			"user_id": updM.UserID.String(),
			"role":    updM.Role.String(),
			"status":  updM.Status.String(),
		},
	})

	return toAppMembership(updM)
}

// remove deletes the membership of the user named in the path.
func (a *app) remove(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	m, appErr := a.membershipFromPath(ctx, r)
	if appErr != nil {
		return appErr
	}

	if appErr := a.authorizeTarget(ctx, m, actions.Delete); appErr != nil {
		return appErr
	}

	if err := a.memberBus.Remove(ctx, m); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "remove: userID[%s] workgroupID[%s]: %s", m.UserID, m.WorkgroupID, err)
	}

	a.authzBus.Invalidate(m.UserID)

	callerID, _ := mid.GetUserID(ctx)
	a.auditBus.Record(ctx, auditbus.NewEvent{
		ActorID:     callerID,
		WorkgroupID: &m.WorkgroupID,
		Action:      "member.remove",
		Entity:      "membership",
		Payload: map[string]any{
			"user_id": m.UserID.String(),
		},
	})

	return nil
}

func (a *app) membershipFromPath(ctx context.Context, r *http.Request) (memberbus.Membership, *errs.Error) {
	userID, err := uuid.Parse(web.Param(r, "user_id"))
	if err != nil {
		return memberbus.Membership{}, errs.New(errs.InvalidArgument, errors.New("invalid user id"))
	}

	wg, err := mid.GetWorkgroup(ctx)
	if err != nil {
		return memberbus.Membership{}, errs.New(errs.FailedPrecondition, err)
	}

	m, err := a.memberBus.QueryByKey(ctx, userID, wg.ID)
	if err != nil {
		if errors.Is(err, memberbus.ErrNotFound) {
			return memberbus.Membership{}, errs.New(errs.NotFound, err)
		}
		return memberbus.Membership{}, errs.Errorf(errs.Internal, "querybykey: userID[%s] workgroupID[%s]: %s", userID, wg.ID, err)
	}

	return m, nil
}
