package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/nolemma/app/services/nolemma-sequencer/handlers"
	"github.com/ardanlabs/nolemma/foundation/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveAPIHost    string
	serveDebugHost  string
	serveSealPeriod time.Duration
	serveTreeDepth  uint
	serveKeySeed    string
	serveKeyFile    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Boot one sequencer process",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New("SEQUENCER")
		if err != nil {
			return err
		}
		defer log.Sync()

		return serve(log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAPIHost, "api-host", "0.0.0.0:8080", "address the submission/verification API listens on")
	serveCmd.Flags().StringVar(&serveDebugHost, "debug-host", "0.0.0.0:7080", "address the debug/health mux listens on")
	serveCmd.Flags().DurationVar(&serveSealPeriod, "seal-period", time.Second, "interval between block seals")
	serveCmd.Flags().UintVar(&serveTreeDepth, "tree-depth", 32, "withdrawal tree depth")
	serveCmd.Flags().StringVar(&serveKeySeed, "key-seed", "", "hex-encoded sequencer secret key seed; empty generates one")
	serveCmd.Flags().StringVar(&serveKeyFile, "key-file", "", "path to persist/load the sequencer's secret key")
}

func serve(log *zap.SugaredLogger) error {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	proc, err := bootSequencer(log, shutdown, serveKeyFile, serveKeySeed, serveSealPeriod, serveTreeDepth)
	if err != nil {
		return err
	}
	defer proc.Worker.Shutdown()

	debugMux := handlers.DebugMux(build, log)
	go func() {
		if err := http.ListenAndServe(serveDebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", serveDebugHost, "ERROR", err)
		}
	}()

	serverErrors := make(chan error, 1)

	api := http.Server{
		Addr:     serveAPIHost,
		Handler:  proc.APIMux,
		ErrorLog: zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case err := <-proc.Worker.Fatal:
		return fmt.Errorf("sequencer fatal: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		proc.Evts.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop api service gracefully: %w", err)
		}
	}

	return nil
}
