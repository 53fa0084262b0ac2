package wallet

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)

	// ErrWalletExists is returned when a keypair is already stored and force is not set.
	ErrWalletExists = errors.New("wallet keypair already exists (use --force to overwrite)")
)

// Service manages the wallet keypair using a backing store.
type Service struct {
	store domain.KeypairStore
}

// New returns a wallet service backed by the given store.
func New(s domain.KeypairStore) *Service { return &Service{store: s} }

// GenerateKeypair creates a new keypair, saves it and returns its address
// plus a short fingerprint.
func (s *Service) GenerateKeypair(passphrase string, force bool) (solana.PublicKey, domain.Fingerprint, error) {
	priv, pub, err := crypto.GenerateKeypair()
	if err != nil {
		return solana.PublicKey{}, "", err
	}
	if err := s.save(passphrase, priv, force); err != nil {
		return solana.PublicKey{}, "", err
	}
	return pub, fingerprint(pub), nil
}

// ImportKeypair stores an existing 64-byte keypair.
func (s *Service) ImportKeypair(passphrase string, key solana.PrivateKey, force bool) (solana.PublicKey, error) {
	priv, err := crypto.KeypairFromBytes(key)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := s.save(passphrase, priv, force); err != nil {
		return solana.PublicKey{}, err
	}
	return priv.PublicKey(), nil
}

// LoadKeypair returns the stored keypair.
func (s *Service) LoadKeypair(passphrase string) (solana.PrivateKey, error) {
	return s.store.LoadKeypair(passphrase)
}

// Address returns the stored keypair's public key and fingerprint.
func (s *Service) Address(passphrase string) (solana.PublicKey, domain.Fingerprint, error) {
	priv, err := s.store.LoadKeypair(passphrase)
	if err != nil {
		return solana.PublicKey{}, "", err
	}
	pub := priv.PublicKey()
	return pub, fingerprint(pub), nil
}

func (s *Service) save(passphrase string, priv solana.PrivateKey, force bool) error {
	if s.store.Exists() && !force {
		return ErrWalletExists
	}
	if passphrase != "" && !isSecurePassphrase(passphrase) {
		return ErrWeakPassphrase
	}
	return s.store.SaveKeypair(passphrase, priv)
}

func fingerprint(pub solana.PublicKey) domain.Fingerprint {
	return domain.Fingerprint(crypto.Fingerprint(pub.Bytes()))
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.WalletService.
var _ domain.WalletService = (*Service)(nil)
