package mid

import (
	"context"
	"expvar"
	"net/http"

	"github.com/ardanlabs/nolemma/foundation/web"
)

// m holds the package's expvar counters, published under /debug/vars.
var m = struct {
	req   *expvar.Int
	errs  *expvar.Int
	panic *expvar.Int
}{
	req:   expvar.NewInt("submit_requests"),
	errs:  expvar.NewInt("submit_errors"),
	panic: expvar.NewInt("handler_panics"),
}

// Metrics counts requests and errors observed by every route, published
// for the debug server's /debug/vars endpoint.
func Metrics() web.Middleware {
	mw := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)

			m.req.Add(1)
			if err != nil {
				m.errs.Add(1)
			}

			return err
		}

		return h
	}

	return mw
}
