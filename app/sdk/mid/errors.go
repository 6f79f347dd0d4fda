package mid

import (
	"context"
	"net/http"

	"github.com/printdesk/printdesk/app/sdk/errs"
	"github.com/printdesk/printdesk/app/sdk/metrics"
	"github.com/printdesk/printdesk/business/sdk/web"
	"github.com/printdesk/printdesk/foundation/logger"
)

// Errors handles errors coming out of the call chain. The errors are
// logged here and the proper error response is returned to the caller.
func Errors(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			err := checkIsError(resp)
			if err == nil {
				return resp
			}

			metrics.AddErrors(ctx)

			var appErr *errs.Error
			if !errs.IsError(err) {
				appErr = errs.Errorf(errs.Internal, "Internal Server Error")
			} else {
				appErr = errs.GetError(err)
			}

			log.Error(ctx, "handled error during request",
				"err", err,
				"source_err_file", appErr.FileName,
				"source_err_func", appErr.FuncName)

			if appErr.Code == errs.InternalOnlyLog {
				appErr = errs.Errorf(errs.Internal, "Internal Server Error")
			}

			return appErr
		}

		return h
	}

	return m
}
