// Package catalogapp maintains the app layer api for the product category
// tree. Every operation is scoped to the workgroup the request resolved to.
package catalogapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/app/sdk/mid"
	"github.com/printdesk/printdesk/business/domain/catalogbus"
	"github.com/printdesk/printdesk/business/sdk/web"
)

type app struct {
	catalogBus *catalogbus.Core
}

func newApp(catalogBus *catalogbus.Core) *app {
	return &app{
		catalogBus: catalogBus,
	}
}

// executeUnderTransaction constructs a new app value within a
// transaction when one exists in the context.
func (a *app) executeUnderTransaction(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return a, nil
	}

	catalogBus, err := a.catalogBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return newApp(catalogBus), nil
}

// query returns the full category tree of the current workgroup ordered
// by path.
func (a *app) query(ctx context.Context, _ *http.Request) web.Encoder {
	wg, err := mid.GetWorkgroup(ctx)
	if err != nil {
		return errs.New(errs.FailedPrecondition, err)
	}

	cats, err := a.catalogBus.QueryByWorkgroup(ctx, wg.ID)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: workgroupID[%s]: %s", wg.ID, err)
	}

	return toAppCategories(cats)
}

// create adds a new category to the current workgroup's tree.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app NewCategory
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	wg, err := mid.GetWorkgroup(ctx)
	if err != nil {
		return errs.New(errs.FailedPrecondition, err)
	}

	nc, err := toBusNewCategory(app, wg.ID)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	cat, err := a.catalogBus.Create(ctx, nc)
	if err != nil {
		if errors.Is(err, catalogbus.ErrSlugExhausted) {
			return errs.New(errs.Aborted, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: cat[%+v]: %s", app, err)
	}

	return toAppCategory(cat)
}

// update modifies a category in place. Moving a category to a different
// parent is a separate endpoint.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app UpdateCategory
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	cat, appErr := a.categoryFromPath(ctx, r)
	if appErr != nil {
		return appErr
	}

	uc, err := toBusUpdateCategory(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updCat, err := a.catalogBus.Update(ctx, cat, uc)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "update: categoryID[%s]: %s", cat.ID, err)
	}

	return toAppCategory(updCat)
}

// move re-parents a category, rewriting the paths of its whole subtree.
func (a *app) move(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app MoveCategory
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	cat, appErr := a.categoryFromPath(ctx, r)
	if appErr != nil {
		return appErr
	}

	var parentID *uuid.UUID
	if app.ParentID != nil {
		id, err := uuid.Parse(*app.ParentID)
		if err != nil {
			return errs.NewFieldErrors("parent_id", err)
		}
		parentID = &id
	}

	movedCat, err := a.catalogBus.Move(ctx, cat, parentID)
	if err != nil {
		if errors.Is(err, catalogbus.ErrCyclicHierarchy) {
			return errs.New(errs.FailedPrecondition, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "move: categoryID[%s]: %s", cat.ID, err)
	}

	return toAppCategory(movedCat)
}

// delete removes a category together with all of its descendants.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	cat, appErr := a.categoryFromPath(ctx, r)
	if appErr != nil {
		return appErr
	}

	if err := a.catalogBus.Delete(ctx, cat); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: categoryID[%s]: %s", cat.ID, err)
	}

	return nil
}

func (a *app) categoryFromPath(ctx context.Context, r *http.Request) (catalogbus.Category, *errs.Error) {
	categoryID, err := uuid.Parse(web.Param(r, "category_id"))
	if err != nil {
		return catalogbus.Category{}, errs.New(errs.InvalidArgument, errors.New("invalid category id"))
	}

	wg, err := mid.GetWorkgroup(ctx)
	if err != nil {
		return catalogbus.Category{}, errs.New(errs.FailedPrecondition, err)
	}

	cat, err := a.catalogBus.QueryByID(ctx, wg.ID, categoryID)
	if err != nil {
		if errors.Is(err, catalogbus.ErrNotFound) {
			return catalogbus.Category{}, errs.New(errs.NotFound, err)
		}
		return catalogbus.Category{}, errs.Errorf(errs.Internal, "querybyid: categoryID[%s]: %s", categoryID, err)
	}

	return cat, nil
}
