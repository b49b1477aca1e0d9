package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/nolemma/foundation/logger"
	"github.com/ardanlabs/nolemma/foundation/nolemma/driver"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	demoSigners    int
	demoRate       time.Duration
	demoSealPeriod time.Duration
	demoTreeDepth  uint
	demoPollPeriod time.Duration
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Boot a sequencer in-process alongside a driver goroutine exercising it",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New("DEMO")
		if err != nil {
			return err
		}
		defer log.Sync()

		return demo(log)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().IntVar(&demoSigners, "signers", 4, "number of independent signers generating traffic")
	demoCmd.Flags().DurationVar(&demoRate, "rate", 250*time.Millisecond, "delay between each signer's submissions")
	demoCmd.Flags().DurationVar(&demoSealPeriod, "seal-period", time.Second, "interval between block seals")
	demoCmd.Flags().UintVar(&demoTreeDepth, "tree-depth", 32, "withdrawal tree depth")
	demoCmd.Flags().DurationVar(&demoPollPeriod, "poll-period", time.Second, "delay between head polls")
}

// demo boots a sequencer and a driver against it in the same process,
// the in-process analogue of running serve and drive as two separate
// binaries joined over loopback.
func demo(log *zap.SugaredLogger) error {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	proc, err := bootSequencer(log, shutdown, "", "", demoSealPeriod, demoTreeDepth)
	if err != nil {
		return err
	}
	defer proc.Worker.Shutdown()

	server := httptest.NewServer(proc.APIMux)
	defer server.Close()

	log.Infow("demo", "status", "sequencer listening", "url", server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	ev := driver.ZapHandler(log)

	for i := 0; i < demoSigners; i++ {
		kp, err := signature.GenerateKeypair()
		if err != nil {
			return err
		}
		go driver.RunTraffic(ctx, client, server.URL, kp, uint64(i), demoRate, ev)
	}

	verifyDone := make(chan error, 1)
	go func() {
		verifyDone <- driver.RunVerifier(ctx, client, server.URL, demoTreeDepth, demoPollPeriod, ev)
	}()

	select {
	case err := <-verifyDone:
		return err

	case err := <-proc.Worker.Fatal:
		return err

	case sig := <-shutdown:
		log.Infow("demo", "status", "shutdown", "signal", sig)
		proc.Evts.Shutdown()
		return nil
	}
}
