// Package wallet manages creation, import and loading of the local signing
// keypair.
//
// An empty passphrase stores the key as a plain solana-keygen JSON array so
// the file interoperates with the standard tooling. A non-empty passphrase
// must satisfy the strength policy and seals the key with the store's
// scrypt/ChaCha20-Poly1305 envelope.
package wallet
