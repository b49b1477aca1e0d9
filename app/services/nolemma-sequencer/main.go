// This program runs the Nolemma sequencer: it accepts signed
// transactions over HTTP, seals them into blocks on a fixed cadence, and
// exposes the sealed chain for independent verification.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/nolemma/app/services/nolemma-sequencer/handlers"
	"github.com/ardanlabs/nolemma/foundation/events"
	"github.com/ardanlabs/nolemma/foundation/logger"
	"github.com/ardanlabs/nolemma/foundation/nolemma/keystore"
	"github.com/ardanlabs/nolemma/foundation/nolemma/sequencer"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"go.uber.org/zap"
)

// build is the git version of this program, set via build flags.
var build = "develop"

func main() {
	log, err := logger.New("SEQUENCER")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
		}
		Sequencer struct {
			SealPeriod time.Duration `conf:"default:1s"`
			TreeDepth  uint          `conf:"default:32"`
			KeySeed    string        `conf:"default:,noprint"`
			KeyFile    string        `conf:"default:"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "nolemma sequencer",
		},
	}

	const prefix = "SEQUENCER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Sequencer Identity

	kp, err := loadKeypair(cfg.Sequencer.KeyFile, cfg.Sequencer.KeySeed)
	if err != nil {
		return fmt.Errorf("loading sequencer key: %w", err)
	}
	log.Infow("startup", "status", "sequencer identity loaded", "address", kp.Address)

	// =========================================================================
	// Sequencer Engine

	// The sequencer engine accepts a function of this signature so it can
	// log without importing the logger directly. Raw messages are also
	// pushed to any websocket client connected through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	engine := sequencer.New(sequencer.Config{
		Keypair:    kp,
		SealPeriod: cfg.Sequencer.SealPeriod,
		TreeDepth:  cfg.Sequencer.TreeDepth,
		EvHandler:  ev,
	})

	worker := sequencer.Run(engine)
	defer worker.Shutdown()

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

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log)
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing v1 API support")

	apiMux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Engine:   engine,
		Evts:     evts,
	})

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case err := <-worker.Fatal:
		return fmt.Errorf("sequencer fatal: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		log.Infow("shutdown", "status", "shutdown websocket channels")
		evts.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		log.Infow("shutdown", "status", "shutdown api started")
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop api service gracefully: %w", err)
		}
	}

	return nil
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
