// Package workgroupapp maintains the app layer api for the workgroup
// domain, including the current context endpoints.
package workgroupapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/app/sdk/mid"
	"github.com/printdesk/printdesk/app/sdk/query"
	"github.com/printdesk/printdesk/business/domain/auditbus"
	"github.com/printdesk/printdesk/business/domain/authzbus"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/order"
	"github.com/printdesk/printdesk/business/sdk/page"
	"github.com/printdesk/printdesk/business/sdk/session"
	"github.com/printdesk/printdesk/business/sdk/web"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
)

type app struct {
	workgroupBus *workgroupbus.Core
	auditBus     *auditbus.Core
	authzBus     *authzbus.Core
	sess         session.Store
}

func newApp(workgroupBus *workgroupbus.Core, auditBus *auditbus.Core, authzBus *authzbus.Core, sess session.Store) *app {
	return &app{
		workgroupBus: workgroupBus,
		auditBus:     auditBus,
		authzBus:     authzBus,
		sess:         sess,
	}
}

// executeUnderTransaction constructs a new app value within a
// transaction when one exists in the context.
func (a *app) executeUnderTransaction(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return a, nil
	}

	workgroupBus, err := a.workgroupBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	auditBus, err := a.auditBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return newApp(workgroupBus, auditBus, a.authzBus, a.sess), nil
}

// authorizeOn runs the permission check against the workgroup named in
// the path rather than the one the request resolved to.
func (a *app) authorizeOn(ctx context.Context, wg workgroupbus.Workgroup, act actions.Action) *errs.Error {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	chk := authzbus.Check{
		Resource:  resource.Workgroup,
		Action:    act,
		Workgroup: &wg,
	}

	if err := a.authzBus.Authorize(ctx, userID, chk); err != nil {
		if errors.Is(err, authzbus.ErrForbidden) {
			return errs.New(errs.PermissionDenied, err)
		}
		return errs.New(errs.Internal, err)
	}

	return nil
}

// create adds a new workgroup to the system.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app NewWorkgroup
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nw, err := toBusNewWorkgroup(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	wg, err := a.workgroupBus.Create(ctx, nw)
	if err != nil {
		if errors.Is(err, workgroupbus.ErrUniqueSlug) {
			return errs.New(errs.Aborted, workgroupbus.ErrUniqueSlug)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: wg[%+v]: %s", app, err)
	}

	return toAppWorkgroup(wg)
}

// update modifies a workgroup identified in the path.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app UpdateWorkgroup
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	wg, appErr := a.workgroupFromPath(ctx, r)
	if appErr != nil {
		return appErr
	}

	if appErr := a.authorizeOn(ctx, wg, actions.Update); appErr != nil {
		return appErr
	}

	uw, err := toBusUpdateWorkgroup(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updWg, err := a.workgroupBus.Update(ctx, wg, uw)
	if err != nil {
		if errors.Is(err, workgroupbus.ErrUniqueSlug) {
			return errs.New(errs.Aborted, workgroupbus.ErrUniqueSlug)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: workgroupID[%s]: %s", wg.ID, err)
	}

	return toAppWorkgroup(updWg)
}

// delete removes a workgroup identified in the path.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	wg, appErr := a.workgroupFromPath(ctx, r)
	if appErr != nil {
		return appErr
	}

	if appErr := a.authorizeOn(ctx, wg, actions.Delete); appErr != nil {
		return appErr
	}

	if err := a.workgroupBus.Delete(ctx, wg); err != nil {
		if errors.Is(err, workgroupbus.ErrPublicDefault) {
			return errs.New(errs.PermissionDenied, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "delete: workgroupID[%s]: %s", wg.ID, err)
	}

	return nil
}

// query returns a list of workgroups with paging.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	values := r.URL.Query()

	page, err := page.Parse(values.Get("page"), values.Get("rows"))
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	orderBy, err := order.Parse(orderByFields, values.Get("orderBy"), workgroupbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	wgs, err := a.workgroupBus.Query(ctx, orderBy, page)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.workgroupBus.Count(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppWorkgroups(wgs), total, page)
}

// current returns the workgroup the request resolved to.
func (a *app) current(ctx context.Context, _ *http.Request) web.Encoder {
	wg, err := mid.GetWorkgroup(ctx)
	if err != nil {
		return errs.New(errs.FailedPrecondition, err)
	}

	return toAppWorkgroup(wg)
}

// switchContext changes the caller's active workgroup.
func (a *app) switchContext(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app SwitchContext
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	workgroupID, err := uuid.Parse(app.WorkgroupID)
	if err != nil {
		return errs.NewFieldErrors("workgroup_id", err)
	}

	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	claims := mid.GetClaims(ctx)

	wg, err := a.workgroupBus.SwitchContext(ctx, userID, workgroupID, a.sess, claims.SessionID())
	if err != nil {
		switch {
		case errors.Is(err, workgroupbus.ErrNotFound):
			return errs.New(errs.NotFound, err)
		case errors.Is(err, workgroupbus.ErrAccessDenied):
			return errs.New(errs.PermissionDenied, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "switch: workgroupID[%s]: %s", workgroupID, err)
	}

	return toAppWorkgroup(wg)
}

// audit returns the audit events recorded against the workgroup in the path.
func (a *app) audit(ctx context.Context, r *http.Request) web.Encoder {
	wg, appErr := a.workgroupFromPath(ctx, r)
	if appErr != nil {
		return appErr
	}

	evts, err := a.auditBus.QueryByWorkgroup(ctx, wg.ID)
	if err != nil {
		return errs.Errorf(errs.Internal, "query audit: %s", err)
	}

	return toAppAuditEvents(evts)
}

func (a *app) workgroupFromPath(ctx context.Context, r *http.Request) (workgroupbus.Workgroup, *errs.Error) {
	id := web.Param(r, "workgroup_id")

	workgroupID, err := uuid.Parse(id)
	if err != nil {
		return workgroupbus.Workgroup{}, errs.NewFieldErrors("workgroup_id", err)
	}

	wg, err := a.workgroupBus.QueryByID(ctx, workgroupID)
	if err != nil {
		if errors.Is(err, workgroupbus.ErrNotFound) {
			return workgroupbus.Workgroup{}, errs.New(errs.NotFound, err)
		}
		return workgroupbus.Workgroup{}, errs.Errorf(errs.InternalOnlyLog, "query: workgroupID[%s]: %s", workgroupID, err)
	}

	return wg, nil
}
