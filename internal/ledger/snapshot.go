package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

func (b *Bank) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Slot:        b.slot,
		Blockhashes: make([]string, 0, len(b.queue.entries)),
		Accounts:    make(map[string]domain.Account, len(b.accounts)),
		Statuses:    make(map[string]domain.TransactionRecord, len(b.statuses)),
	}
	for _, e := range b.queue.entries {
		snap.Blockhashes = append(snap.Blockhashes, e.hash.String())
	}
	for pk, acc := range b.accounts {
		snap.Accounts[pk.String()] = acc.Clone()
	}
	for sig, rec := range b.statuses {
		snap.Statuses[sig.String()] = rec
	}
	return snap
}

// persistLocked writes a snapshot when a store is configured. Failures are
// logged; the in-memory state stays authoritative.
func (b *Bank) persistLocked() {
	if b.store == nil {
		return
	}
	if err := b.store.SaveSnapshot(b.snapshotLocked()); err != nil {
		b.log.Error().Err(err).Uint64("slot", b.slot).Msg("persist ledger snapshot")
	}
}

func (b *Bank) restore(snap domain.Snapshot) error {
	if len(snap.Blockhashes) == 0 {
		return fmt.Errorf("snapshot has no blockhashes")
	}
	b.slot = snap.Slot
	// Blockhashes are stored oldest first; the newest belongs to snap.Slot.
	first := snap.Slot + 1 - uint64(len(snap.Blockhashes))
	for i, s := range snap.Blockhashes {
		h, err := solana.HashFromBase58(s)
		if err != nil {
			return fmt.Errorf("blockhash %d: %w", i, err)
		}
		b.queue.push(h, first+uint64(i))
	}
	for k, acc := range snap.Accounts {
		pk, err := solana.PublicKeyFromBase58(k)
		if err != nil {
			return fmt.Errorf("account %q: %w", k, err)
		}
		a := acc.Clone()
		b.accounts[pk] = &a
	}
	for k, rec := range snap.Statuses {
		sig, err := solana.SignatureFromBase58(k)
		if err != nil {
			return fmt.Errorf("status %q: %w", k, err)
		}
		b.statuses[sig] = rec
	}
	return nil
}
