// Package driver implements the traffic generator and independent
// verifier used to exercise a running sequencer: it submits signed
// transactions from a pool of signers and replays every sealed block
// through a Verifier rather than trusting the sequencer's own claim
// that a block is valid.
package driver

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/nolemma/foundation/nolemma/chain"
	"github.com/ardanlabs/nolemma/foundation/nolemma/sequencer"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ardanlabs/nolemma/foundation/nolemma/txn"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// EventHandler receives a log line for every submission attempt and
// verification outcome, so a caller can route driver activity to its own
// logger without this package importing one directly.
type EventHandler func(v string, args ...any)

// RunTraffic alternates between a dynamic deposit-style transaction and a
// withdrawal for a single signer, submitting one of each per tick until
// ctx is cancelled, incrementing its nonce each round.
func RunTraffic(ctx context.Context, client *http.Client, url string, kp signature.Keypair, seed uint64, rate time.Duration, ev EventHandler) {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for nonce := uint64(0); ; nonce++ {
		dynamic := txn.Dynamic{
			ChainID:              1,
			Nonce:                nonce,
			MaxPriorityFeePerGas: uint256.NewInt(1),
			MaxFeePerGas:         uint256.NewInt(1),
			GasLimit:             21000,
			To:                   &kp.Address,
			Value:                uint256.NewInt(seed + nonce),
		}
		submitSigned(client, url, ev, func() (txn.SignedTx, error) {
			return txn.SignDynamic(kp, dynamic)
		})

		withdrawal := txn.Withdrawal{
			Nonce:     nonce,
			Recipient: kp.Address,
			Value:     uint256.NewInt(seed + nonce),
		}
		submitSigned(client, url, ev, func() (txn.SignedTx, error) {
			return txn.SignWithdrawal(kp, withdrawal)
		})

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func submitSigned(client *http.Client, url string, ev EventHandler, sign func() (txn.SignedTx, error)) {
	tx, err := sign()
	if err != nil {
		ev("driver: trafficgen: sign failed: %s", err)
		return
	}

	enc, err := tx.Encode()
	if err != nil {
		ev("driver: trafficgen: encode failed: %s", err)
		return
	}

	req := struct {
		Tx string `json:"tx"`
	}{Tx: hex.EncodeToString(enc)}

	body, err := json.Marshal(req)
	if err != nil {
		ev("driver: trafficgen: marshal failed: %s", err)
		return
	}

	resp, err := client.Post(url+"/v1/tx/submit", "application/json", bytes.NewReader(body))
	if err != nil {
		ev("driver: trafficgen: submit failed: %s", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ev("driver: trafficgen: submit rejected: code=%d", resp.StatusCode)
	}
}

// RunVerifier polls the sequencer's chain head and fetches every block it
// hasn't seen yet, replaying each through an independent Verifier. It
// returns the first block fetch or verification failure, or nil if ctx
// is cancelled first; a failed head fetch is logged and retried on the
// next poll. The expected sequencer address is learned from the
// first header observed: a trust-on-first-use that mirrors how a real
// driver would be told the sequencer's address out of band.
func RunVerifier(ctx context.Context, client *http.Client, url string, treeDepth uint, pollPeriod time.Duration, ev EventHandler) error {
	ticker := time.NewTicker(pollPeriod)
	defer ticker.Stop()

	var verifier *sequencer.Verifier
	var next uint64

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		head, ok, err := fetchHead(client, url)
		if err != nil {
			ev("driver: verify: head fetch failed: %s", err)
			continue
		}
		if !ok {
			continue
		}

		if verifier == nil {
			verifier = sequencer.NewVerifier(head.Header.Sequencer, treeDepth)
			ev("driver: verify: learned sequencer address %s", head.Header.Sequencer)
		}

		for ; next <= head.Header.Number; next++ {
			block, ok, err := fetchBlock(client, url, next)
			if err != nil {
				return fmt.Errorf("fetch block %d: %w", next, err)
			}
			if !ok {
				break
			}

			if !verifier.VerifyBlock(block) {
				return fmt.Errorf("block %d failed independent verification", next)
			}

			ev("driver: verify: block %d verified, %d txs", next, len(block.Txs))
		}
	}
}

func fetchHead(client *http.Client, url string) (chain.SignedHeader, bool, error) {
	resp, err := client.Get(url + "/v1/chain/head")
	if err != nil {
		return chain.SignedHeader{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return chain.SignedHeader{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return chain.SignedHeader{}, false, fmt.Errorf("head: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Header string `json:"header"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chain.SignedHeader{}, false, err
	}

	raw, err := hex.DecodeString(out.Header)
	if err != nil {
		return chain.SignedHeader{}, false, err
	}

	sh, err := chain.DecodeSignedHeader(raw)
	if err != nil {
		return chain.SignedHeader{}, false, err
	}

	return sh, true, nil
}

func fetchBlock(client *http.Client, url string, number uint64) (chain.Block, bool, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/chain/block/%d", url, number))
	if err != nil {
		return chain.Block{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return chain.Block{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return chain.Block{}, false, fmt.Errorf("block %d: unexpected status %d", number, resp.StatusCode)
	}

	var out struct {
		Block string `json:"block"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chain.Block{}, false, err
	}

	raw, err := hex.DecodeString(out.Block)
	if err != nil {
		return chain.Block{}, false, err
	}

	block, err := chain.Decode(raw)
	if err != nil {
		return chain.Block{}, false, err
	}

	return block, true, nil
}

// ZapHandler adapts a zap.SugaredLogger into an EventHandler.
func ZapHandler(log *zap.SugaredLogger) EventHandler {
	return func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}
}
