package store

import (
	"fmt"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/util/memzero"
)

// KeypairFileStore persists the wallet keypair at a fixed path.
//
// With an empty passphrase the key is written as a solana-keygen compatible
// JSON array of 64 bytes, which is what ANCHOR_WALLET usually points at.
// With a passphrase it is sealed with scrypt + ChaCha20-Poly1305.
type KeypairFileStore struct {
	path string
	mu   sync.Mutex
}

// NewKeypairFileStore returns a KeypairFileStore for the file at path.
func NewKeypairFileStore(path string) *KeypairFileStore {
	return &KeypairFileStore{path: path}
}

// Path returns the keypair file location.
func (s *KeypairFileStore) Path() string { return s.path }

// Exists reports whether a keypair file is present.
func (s *KeypairFileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// SaveKeypair writes key to disk, sealed when passphrase is non-empty.
func (s *KeypairFileStore) SaveKeypair(passphrase string, key solana.PrivateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if passphrase == "" {
		arr := make([]int, len(key))
		for i, b := range key {
			arr[i] = int(b)
		}
		return writeJSON(s.path, arr, 0o600)
	}

	raw := append([]byte(nil), key...)
	defer memzero.Zero(raw)
	N, r, p := scryptParamsDefault()
	blob, err := seal(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	return writeFile(s.path, blob, 0o600)
}

// LoadKeypair reads the keypair, opening it with passphrase when sealed.
func (s *KeypairFileStore) LoadKeypair(passphrase string) (solana.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	if !isSealed(b) {
		defer memzero.Zero(b)
		key, err := solana.PrivateKeyFromSolanaKeygenFileBytes(b)
		if err != nil {
			return nil, fmt.Errorf("parse keypair %s: %w", s.path, err)
		}
		return key, nil
	}
	if passphrase == "" {
		return nil, fmt.Errorf("keypair %s is encrypted: passphrase required", s.path)
	}
	raw, err := open(passphrase, b)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)

	return crypto.KeypairFromBytes(raw)
}

// Compile-time assertion that KeypairFileStore implements domain.KeypairStore.
var _ domain.KeypairStore = (*KeypairFileStore)(nil)
