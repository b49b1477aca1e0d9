package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/nolemma/business/web/errs"
	"github.com/ardanlabs/nolemma/foundation/web"
	"go.uber.org/zap"
)

// Errors translates a Handler's returned error into an HTTP response: a
// Trusted error responds with its wrapped status code and message, and
// anything else responds 500 without leaking the underlying error to the
// client.
func Errors(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if err := handler(ctx, w, r); err != nil {
				v, verr := web.GetValues(ctx)
				if verr != nil {
					return verr
				}

				log.Errorw("handler error", "traceid", v.TraceID, "ERROR", err)

				if trusted := errs.GetTrusted(err); trusted != nil {
					return web.Respond(ctx, w, errs.Response{Error: trusted.Error()}, trusted.Status)
				}

				if web.IsShutdown(err) {
					return err
				}

				return web.Respond(ctx, w, errs.Response{Error: "internal server error"}, http.StatusInternalServerError)
			}

			return nil
		}

		return h
	}

	return m
}
