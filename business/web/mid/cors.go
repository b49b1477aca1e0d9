package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/nolemma/foundation/web"
)

// Cors sets the response headers needed for Cross-Origin Resource
// Sharing, so a browser-based driver or dashboard can call the
// submission and websocket endpoints from another origin.
func Cors(origin string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
