package interfaces

import (
	"github.com/gagliardetto/solana-go"

	domaintypes "github.com/FME849/wsos23-voting-app/internal/domain/types"
)

// KeypairStore persists a single signing keypair (the wallet).
type KeypairStore interface {
	Exists() bool
	SaveKeypair(passphrase string, key solana.PrivateKey) error
	LoadKeypair(passphrase string) (solana.PrivateKey, error)
}

// LedgerStore persists ledger snapshots between cluster restarts.
type LedgerStore interface {
	SaveSnapshot(snapshot domaintypes.Snapshot) error
	LoadSnapshot() (domaintypes.Snapshot, bool, error)
}
