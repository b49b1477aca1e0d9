package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/nolemma/foundation/logger"
	"github.com/ardanlabs/nolemma/foundation/nolemma/driver"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/spf13/cobra"
)

var (
	driveURL        string
	driveSigners    int
	driveRate       time.Duration
	driveTreeDepth  uint
	drivePollPeriod time.Duration
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Run the traffic generator and independent verifier against a remote sequencer",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New("DRIVER")
		if err != nil {
			return err
		}
		defer log.Sync()

		return drive(cmd.Context(), driveURL, driveSigners, driveRate, driveTreeDepth, drivePollPeriod, driver.ZapHandler(log))
	},
}

func init() {
	rootCmd.AddCommand(driveCmd)
	driveCmd.Flags().StringVarP(&driveURL, "url", "u", "http://localhost:8080", "base url of the sequencer's v1 API")
	driveCmd.Flags().IntVar(&driveSigners, "signers", 8, "number of independent signers generating traffic")
	driveCmd.Flags().DurationVar(&driveRate, "rate", 250*time.Millisecond, "delay between each signer's submissions")
	driveCmd.Flags().UintVar(&driveTreeDepth, "tree-depth", 32, "withdrawal tree depth, must match the sequencer")
	driveCmd.Flags().DurationVar(&drivePollPeriod, "poll-period", time.Second, "delay between head polls")
}

func drive(ctx context.Context, url string, signers int, rate time.Duration, treeDepth uint, pollPeriod time.Duration, ev driver.EventHandler) error {
	keypairs := make([]signature.Keypair, signers)
	for i := range keypairs {
		kp, err := signature.GenerateKeypair()
		if err != nil {
			return fmt.Errorf("generating signer %d: %w", i, err)
		}
		keypairs[i] = kp
	}

	client := &http.Client{Timeout: 5 * time.Second}

	for i, kp := range keypairs {
		go driver.RunTraffic(ctx, client, url, kp, uint64(i), rate, ev)
	}

	return driver.RunVerifier(ctx, client, url, treeDepth, pollPeriod, ev)
}
