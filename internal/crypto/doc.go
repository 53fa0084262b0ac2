// Package crypto exposes the minimal primitives used by the voting client and
// the local cluster.
//
// Contents
//
//   - Ed25519 keypair generation, signing and verification in the
//     solana-go key types (GenerateKeypair, Sign, Verify)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Base64 helpers for the wire encoding of transactions and account data
//
// # Notes
//
// Keys are returned as solana.PrivateKey / solana.PublicKey so they can be
// handed straight to transaction builders. Callers should treat private keys
// as sensitive and wipe them (memzero.Zero) when practical.
package crypto
