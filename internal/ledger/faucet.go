package ledger

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// MaxAirdropLamports caps a single faucet request.
const MaxAirdropLamports = 1_000_000 * 1_000_000_000

// ErrAirdropAmount is returned for zero or oversized faucet requests.
var ErrAirdropAmount = errors.New("airdrop amount must be between 1 lamport and the faucet limit")

// Airdrop transfers lamports from the faucet to `to` through a regular signed
// system transfer. Each request lands in a fresh slot so identical requests
// get distinct signatures.
func (b *Bank) Airdrop(to solana.PublicKey, lamports uint64) (solana.Signature, error) {
	if lamports == 0 || lamports > MaxAirdropLamports {
		return solana.Signature{}, ErrAirdropAmount
	}
	b.AdvanceSlot()
	hash, _ := b.LatestBlockhash()

	from := b.faucet.PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		hash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return solana.Signature{}, err
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(from) {
			return &b.faucet
		}
		return nil
	}); err != nil {
		return solana.Signature{}, err
	}
	return b.Process(tx)
}
