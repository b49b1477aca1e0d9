// Package v1 binds version 1 of the sequencer's HTTP API.
package v1

import (
	"net/http"

	"github.com/ardanlabs/nolemma/app/services/nolemma-sequencer/handlers/v1/submitgrp"
	"github.com/ardanlabs/nolemma/foundation/events"
	"github.com/ardanlabs/nolemma/foundation/nolemma/sequencer"
	"github.com/ardanlabs/nolemma/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains the systems every v1 route needs access to.
type Config struct {
	Log    *zap.SugaredLogger
	Engine *sequencer.Engine
	Evts   *events.Events
}

// Routes binds all v1 routes.
func Routes(app *web.App, cfg Config) {
	sub := submitgrp.Handlers{
		Log:    cfg.Log,
		Engine: cfg.Engine,
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/tx/submit", sub.SubmitTx)
	app.Handle(http.MethodGet, version, "/chain/head", sub.Head)
	app.Handle(http.MethodGet, version, "/chain/block/:number", sub.GetBlock)
	app.Handle(http.MethodGet, version, "/chain/events", sub.Events)
}
