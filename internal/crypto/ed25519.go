package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// GenerateKeypair returns a new Ed25519 signing keypair.
func GenerateKeypair() (solana.PrivateKey, solana.PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return solana.PrivateKey(priv), solana.PublicKeyFromBytes(pub), nil
}

// KeypairFromBytes validates a 64-byte ed25519 private key (seed || public key).
func KeypairFromBytes(b []byte) (solana.PrivateKey, error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("ed25519 private key: want %d bytes, got %d", ed25519.PrivateKeySize, len(b))
	}
	seeded := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	if !ed25519.PublicKey(seeded[ed25519.SeedSize:]).Equal(ed25519.PublicKey(b[ed25519.SeedSize:])) {
		return nil, fmt.Errorf("ed25519 private key: public half does not match seed")
	}
	return solana.PrivateKey(append([]byte(nil), b...)), nil
}

// Sign signs msg with priv and returns the signature.
func Sign(priv solana.PrivateKey, msg []byte) solana.Signature {
	var sig solana.Signature
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(priv), msg))
	return sig
}

// Verify verifies sig over msg with pub.
func Verify(pub solana.PublicKey, msg []byte, sig solana.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:])
}
