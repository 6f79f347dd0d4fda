package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/app/sdk/metrics"
	"github.com/printdesk/printdesk/business/domain/workgroupbus"
	"github.com/printdesk/printdesk/business/sdk/session"
	"github.com/printdesk/printdesk/business/sdk/tenantctx"
	"github.com/printdesk/printdesk/business/sdk/web"
	"github.com/printdesk/printdesk/foundation/logger"
)

// sessionCookie names the cookie anonymous visitors carry so their
// workgroup choice survives across requests.
const sessionCookie = "sid"

// ResolveWorkgroup determines the workgroup the request acts on and
// stores it in a fresh tenant context holder. Authenticated requests
// use the token id as the session key, anonymous ones fall back to the
// session cookie.
func ResolveWorkgroup(log *logger.Logger, workgroupBus *workgroupbus.Core, sess session.Store) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			userID := GetSubjectID(ctx)
			sessionID := resolveSessionID(ctx, r)

			wg, err := workgroupBus.ResolveContext(ctx, userID, sess, sessionID)
			if err != nil {
				metrics.AddResolution(ctx, "failed")

				if errors.Is(err, workgroupbus.ErrNoPublicDefault) {
					return errs.New(errs.FailedPrecondition, err)
				}
				return errs.New(errs.Internal, err)
			}

			metrics.AddResolution(ctx, "resolved")

			tc := tenantctx.New()
			tc.Set(&wg)

			ctx = setTenantContext(ctx, tc)

			log.Info(ctx, "workgroup resolved", "workgroup_id", wg.ID, "slug", wg.Slug)

			return next(ctx, r)
		}

		return h
	}

	return m
}

func resolveSessionID(ctx context.Context, r *http.Request) string {
	if claims := GetClaims(ctx); claims.ID != "" {
		return claims.SessionID()
	}

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}
