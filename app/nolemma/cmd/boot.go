package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ardanlabs/nolemma/app/services/nolemma-sequencer/handlers"
	"github.com/ardanlabs/nolemma/foundation/events"
	"github.com/ardanlabs/nolemma/foundation/nolemma/keystore"
	"github.com/ardanlabs/nolemma/foundation/nolemma/sequencer"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"go.uber.org/zap"
)

// sequencerProcess is a fully wired sequencer: its engine, the worker
// sealing blocks on a timer, the pub-sub events feed its websocket route
// reads from, and the API mux serve and demo both listen with.
type sequencerProcess struct {
	Engine *sequencer.Engine
	Worker *sequencer.Worker
	Evts   *events.Events
	APIMux http.Handler
}

// bootSequencer wires a sequencer engine, its sealing worker, and its API
// mux, the same construction serve and demo both boot from. shutdown is
// passed through to the mux so a handler-level shutdown request surfaces
// to the caller's own signal handling.
func bootSequencer(log *zap.SugaredLogger, shutdown chan os.Signal, keyFile, keySeed string, sealPeriod time.Duration, treeDepth uint) (*sequencerProcess, error) {
	kp, err := loadKeypair(keyFile, keySeed)
	if err != nil {
		return nil, fmt.Errorf("loading sequencer key: %w", err)
	}
	log.Infow("startup", "status", "sequencer identity loaded", "address", kp.Address)

	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s)
		evts.Send(s)
	}

	engine := sequencer.New(sequencer.Config{
		Keypair:    kp,
		SealPeriod: sealPeriod,
		TreeDepth:  treeDepth,
		EvHandler:  ev,
	})

	worker := sequencer.Run(engine)

	go func() {
		for block := range worker.Blocks {
			enc, err := block.Encode()
			if err != nil {
				ev("sequencer: broadcast: WARNING: unable to encode sealed block: %s", err)
				continue
			}
			evts.Send(fmt.Sprintf("%x", enc))
		}
	}()

	apiMux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Engine:   engine,
		Evts:     evts,
	})

	return &sequencerProcess{Engine: engine, Worker: worker, Evts: evts, APIMux: apiMux}, nil
}

// loadKeypair prefers a key file if one is configured, falls back to a
// hex seed, and otherwise generates a fresh identity for this run.
func loadKeypair(keyFile, keySeed string) (signature.Keypair, error) {
	if keyFile != "" {
		if _, err := os.Stat(keyFile); err == nil {
			return keystore.LoadFile(keyFile)
		}

		kp, err := keystore.Load(keySeed)
		if err != nil {
			return signature.Keypair{}, err
		}

		if err := keystore.SaveFile(keyFile, kp); err != nil {
			return signature.Keypair{}, err
		}

		return kp, nil
	}

	return keystore.Load(keySeed)
}
