package mid

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/business/domain/authzbus"
	"github.com/printdesk/printdesk/business/sdk/web"
	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
)

var ErrInvalidID = errors.New("ID is not in its proper form")

// Authorize validates the authenticated user may perform the action on
// the resource inside the request's resolved workgroup.
func Authorize(authz *authzbus.Core, res resource.Resource, act actions.Action) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			userID, err := GetUserID(ctx)
			if err != nil {
				return errs.New(errs.Unauthenticated, err)
			}

			wg, err := GetWorkgroup(ctx)
			if err != nil {
				return errs.New(errs.FailedPrecondition, err)
			}

			chk := authzbus.Check{
				Resource:  res,
				Action:    act,
				Workgroup: &wg,
			}

			if err := authz.Authorize(ctx, userID, chk); err != nil {
				if errors.Is(err, authzbus.ErrForbidden) {
					return errs.New(errs.PermissionDenied, err)
				}
				return errs.New(errs.Internal, err)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
