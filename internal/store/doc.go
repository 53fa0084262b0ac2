// Package store provides file-based persistence for the wallet keypair and the
// local cluster's ledger.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk and replacing files atomically. All
// methods are concurrency-safe via internal locking.
//
// The package includes stores for:
//   - The signing keypair (KeypairFileStore), either as a plain
//     solana-keygen JSON array or sealed under a passphrase
//   - Ledger snapshots (LedgerFileStore)
package store
