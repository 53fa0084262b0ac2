package crypto_test

import (
	"testing"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	priv, pub, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if !priv.PublicKey().Equals(pub) {
		t.Fatalf("public key mismatch")
	}
	msg := []byte("ballot")
	sig := crypto.Sign(priv, msg)
	if !crypto.Verify(pub, msg, sig) {
		t.Fatal("signature did not verify")
	}
	if crypto.Verify(pub, []byte("tampered"), sig) {
		t.Fatal("signature verified over the wrong message")
	}
}

func TestKeypairFromBytes_RejectsMismatchedHalves(t *testing.T) {
	priv, _, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if _, err := crypto.KeypairFromBytes(priv); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	bad := append([]byte(nil), priv...)
	bad[40] ^= 0xff
	if _, err := crypto.KeypairFromBytes(bad); err == nil {
		t.Fatal("expected error for corrupted public half")
	}
	if _, err := crypto.KeypairFromBytes(bad[:10]); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := crypto.Fingerprint([]byte{1, 2, 3})
	b := crypto.Fingerprint([]byte{1, 2, 3})
	if a != b || len(a) != 20 {
		t.Fatalf("unexpected fingerprint %q / %q", a, b)
	}
	if got := crypto.ShortAddress("DAExTRo6cEotQAgtREjCrS6R2tL54VfgBWsP7xozMiht"); got != "DAEx..Miht" {
		t.Fatalf("ShortAddress = %q", got)
	}
}
