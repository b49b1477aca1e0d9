// Package mid holds the cross-cutting middleware every Nolemma HTTP route
// is wrapped in: request logging, trusted-error translation, panic
// recovery, request counting, and CORS.
package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/nolemma/foundation/web"
	"go.uber.org/zap"
)

// Logger writes a structured line for every request, before and after
// the handler runs, tagging both with the request's trace id.
func Logger(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v, err := web.GetValues(ctx)
			if err != nil {
				return err
			}

			log.Infow("request started", "traceid", v.TraceID, "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr)

			err = handler(ctx, w, r)

			v, verr := web.GetValues(ctx)
			if verr != nil {
				return err
			}

			log.Infow("request completed", "traceid", v.TraceID, "method", r.Method, "path", r.URL.Path,
				"statuscode", v.StatusCode, "since", time.Since(v.Now))

			return err
		}

		return h
	}

	return m
}
