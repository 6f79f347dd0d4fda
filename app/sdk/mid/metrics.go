package mid

import (
	"context"
	"net/http"

	"github.com/printdesk/printdesk/app/sdk/metrics"
	"github.com/printdesk/printdesk/business/sdk/web"
)

// Metrics updates program counters.
func Metrics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			ctx = metrics.Set(ctx)

			resp := next(ctx, r)

			metrics.AddRequests(ctx)

			return resp
		}

		return h
	}

	return m
}
