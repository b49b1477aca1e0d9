// Package submitgrp implements the submission and verification interface
// external drivers use: posting signed transactions, and polling the
// chain head, a specific block, or a live websocket feed of sealed
// blocks.
package submitgrp

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/nolemma/business/web/errs"
	"github.com/ardanlabs/nolemma/foundation/events"
	"github.com/ardanlabs/nolemma/foundation/nolemma/sequencer"
	"github.com/ardanlabs/nolemma/foundation/nolemma/txn"
	"github.com/ardanlabs/nolemma/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the submission/verification endpoint group.
type Handlers struct {
	Log    *zap.SugaredLogger
	Engine *sequencer.Engine
	Evts   *events.Events
	WS     websocket.Upgrader
}

type submitRequest struct {
	Tx string `json:"tx" validate:"required"`
}

type submitResponse struct {
	Status string `json:"status"`
	Hash   string `json:"hash"`
}

// SubmitTx decodes the hex-encoded canonical transaction from the request
// body and hands it to the sequencer's mempool.
func (h Handlers) SubmitTx(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	raw, err := hex.DecodeString(trim0x(req.Tx))
	if err != nil {
		return errs.NewTrusted(sequencer.ErrMalformedEncoding, http.StatusBadRequest)
	}

	tx, err := txn.Decode(raw)
	if err != nil {
		return errs.NewTrusted(sequencer.ErrMalformedEncoding, http.StatusBadRequest)
	}

	if err := h.Engine.Submit(tx); err != nil {
		return errs.NewTrusted(err, statusFor(err))
	}

	hash, err := tx.Hash()
	if err != nil {
		return errs.NewTrusted(sequencer.ErrMalformedEncoding, http.StatusBadRequest)
	}

	h.Log.Infow("submit", "traceid", v.TraceID, "hash", hash)

	return web.Respond(ctx, w, submitResponse{Status: "accepted", Hash: hash.Hex()}, http.StatusOK)
}

type headResponse struct {
	Header string `json:"header"`
}

// Head returns the canonical encoding of the most recently sealed
// header, or 204 if no block has been sealed yet.
func (h Handlers) Head(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sh, ok := h.Engine.Head()
	if !ok {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	enc, err := sh.Encode()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, headResponse{Header: hex.EncodeToString(enc)}, http.StatusOK)
}

type blockResponse struct {
	Block string `json:"block"`
}

// GetBlock returns the canonical encoding of the sealed block at the
// requested number, or 404 if it hasn't been sealed yet.
func (h Handlers) GetBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return errs.NewTrusted(errors.New("number must be a non-negative integer"), http.StatusBadRequest)
	}

	block, ok := h.Engine.GetBlock(number)
	if !ok {
		return web.Respond(ctx, w, nil, http.StatusNotFound)
	}

	enc, err := block.Encode()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, blockResponse{Block: hex.EncodeToString(enc)}, http.StatusOK)
}

// Events upgrades the connection to a websocket and streams every sealed
// block (and other engine log lines) pushed through Evts, hex-encoded,
// one per text frame.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	conn, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return nil
			}

			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sequencer.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, sequencer.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, sequencer.ErrMalformedEncoding):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
