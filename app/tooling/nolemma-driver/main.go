// This program drives a running Nolemma sequencer: it continuously
// submits signed transactions from a pool of random signers, and
// independently re-verifies every block the sequencer seals.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ardanlabs/nolemma/foundation/logger"
	"github.com/ardanlabs/nolemma/foundation/nolemma/driver"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"go.uber.org/zap"
)

// build is the git version of this program, set via build flags.
var build = "develop"

func main() {
	log, err := logger.New("DRIVER")
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
	var (
		url        = flag.String("url", "http://localhost:8080", "base url of the sequencer's v1 API")
		signers    = flag.Int("signers", 8, "number of independent signers generating traffic")
		rate       = flag.Duration("rate", 250*time.Millisecond, "delay between each signer's submissions")
		treeDepth  = flag.Uint("tree-depth", 32, "withdrawal tree depth, must match the sequencer")
		pollPeriod = flag.Duration("poll-period", time.Second, "delay between head polls")
	)
	flag.Parse()

	log.Infow("startup", "version", build, "url", *url, "signers", *signers)

	keypairs := make([]signature.Keypair, *signers)
	for i := range keypairs {
		kp, err := signature.GenerateKeypair()
		if err != nil {
			return fmt.Errorf("generating signer %d: %w", i, err)
		}
		keypairs[i] = kp
	}

	client := &http.Client{Timeout: 5 * time.Second}
	ctx := context.Background()
	ev := driver.ZapHandler(log)

	for i, kp := range keypairs {
		go driver.RunTraffic(ctx, client, *url, kp, uint64(i), *rate, ev)
	}

	return driver.RunVerifier(ctx, client, *url, *treeDepth, *pollPeriod, ev)
}
