// Package keystore loads or generates the sequencer's signing identity.
package keystore

import (
	"fmt"
	"os"

	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Load returns the Keypair for the given hex-encoded secret key seed. An
// empty seed generates a fresh random keypair instead — the sequencer's
// default when no seed is configured.
func Load(seed string) (signature.Keypair, error) {
	if seed == "" {
		return signature.GenerateKeypair()
	}

	return signature.KeypairFromHex(seed)
}

// LoadFile reads a hex-encoded secret key seed from path and derives its
// Keypair, the format produced by SaveFile.
func LoadFile(path string) (signature.Keypair, error) {
	secret, err := crypto.LoadECDSA(path)
	if err != nil {
		return signature.Keypair{}, fmt.Errorf("load key file %s: %w", path, err)
	}

	return signature.NewKeypair(secret), nil
}

// SaveFile writes kp's secret key to path in the format LoadFile reads,
// so a sequencer started with a key file keeps the same identity across
// restarts.
func SaveFile(path string, kp signature.Keypair) error {
	if err := crypto.SaveECDSA(path, kp.Secret); err != nil {
		return fmt.Errorf("save key file %s: %w", path, err)
	}

	return os.Chmod(path, 0o600)
}
