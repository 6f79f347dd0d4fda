package mid

import (
	"context"
	"net/http"

	"github.com/printdesk/printdesk/business/sdk/web"
	"github.com/printdesk/printdesk/foundation/otel"
	"go.opentelemetry.io/otel/trace"
)

func Otel(tracer trace.Tracer) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			ctx = otel.InjectTracing(ctx, tracer)

			return next(ctx, r)
		}

		return h
	}

	return m
}
