// Package handlers assembles the sequencer's HTTP surface: the
// submission/verification API and the debug/health mux.
package handlers

import (
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/ardanlabs/nolemma/app/services/nolemma-sequencer/handlers/debug/checkgrp"
	v1 "github.com/ardanlabs/nolemma/app/services/nolemma-sequencer/handlers/v1"
	"github.com/ardanlabs/nolemma/business/web/mid"
	"github.com/ardanlabs/nolemma/foundation/events"
	"github.com/ardanlabs/nolemma/foundation/nolemma/sequencer"
	"github.com/ardanlabs/nolemma/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig contains the systems required to build the API mux.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Engine   *sequencer.Engine
	Evts     *events.Events
}

// APIMux constructs the http.Handler serving the submission/verification
// API: every route behind request logging, trusted-error translation,
// request metrics, CORS, and panic recovery.
func APIMux(cfg MuxConfig) http.Handler {
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Cors("*"),
		mid.Panics(),
	)

	v1.Routes(app, v1.Config{
		Log:    cfg.Log,
		Engine: cfg.Engine,
		Evts:   cfg.Evts,
	})

	return app
}

// DebugStandardLibraryMux registers the standard library's pprof and
// expvar endpoints on a mux of their own, bypassing DefaultServeMux so a
// dependency can't sneak a handler onto it without our knowledge.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux adds the sequencer's health check endpoints to the standard
// debug mux.
func DebugMux(build string, log *zap.SugaredLogger) http.Handler {
	mux := DebugStandardLibraryMux()

	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
