package sigkit

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

func TestEd25519VerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	message := []byte("approval message")
	sigBytes := ed25519.Sign(priv, message)

	pk := PublicKey{Type: Ed25519, Data: pub}
	sig := Signature{Type: Ed25519, Data: sigBytes}

	if !sig.Verify(message, pk) {
		t.Fatalf("expected valid ed25519 signature to verify")
	}
	if sig.Verify([]byte("tampered"), pk) {
		t.Fatalf("expected tampered message to fail verification")
	}
}

func TestSecp256k1VerifyRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	message := []byte("approval message")
	hash := sha256.Sum256(message)

	sig, err := ecdsa.SignCompact(priv, hash[:], false)
	if err != nil {
		t.Fatalf("SignCompact: %v", err)
	}
	// SignCompact produces [header || r || s]; convert to the NEAR
	// convention [r || s || v] expected by this package.
	header := sig[0]
	recoveryID := header - 27
	near := make([]byte, 65)
	copy(near[:64], sig[1:65])
	near[64] = recoveryID

	pubUncompressed := priv.PubKey().SerializeUncompressed()
	pk := PublicKey{Type: Secp256k1, Data: pubUncompressed[1:]}
	s := Signature{Type: Secp256k1, Data: near}

	if !s.Verify(message, pk) {
		t.Fatalf("expected valid secp256k1 signature to verify")
	}
	if s.Verify([]byte("tampered"), pk) {
		t.Fatalf("expected tampered message to fail verification")
	}
}

func TestVerifyMismatchedVariantReturnsFalse(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(rand.Reader)
	sigBytes := ed25519.Sign(priv, []byte("m"))

	pk := PublicKey{Type: Secp256k1, Data: make([]byte, secp256k1PubKeyLen)}
	sig := Signature{Type: Ed25519, Data: sigBytes}
	_ = pub

	if sig.Verify([]byte("m"), pk) {
		t.Fatalf("expected mismatched variant to return false")
	}
}

func TestParsePublicKeyUnknownType(t *testing.T) {
	_, err := ParsePublicKey("bogus:abcd")
	if err != ErrUnknownKeyType {
		t.Fatalf("expected ErrUnknownKeyType, got %v", err)
	}
}

func TestPublicKeyFromFlatBytesDiscriminatesByLength(t *testing.T) {
	k, err := PublicKeyFromFlatBytes(make([]byte, 32))
	if err != nil || k.Type != Ed25519 {
		t.Fatalf("expected Ed25519 for 32 bytes, got %+v err=%v", k, err)
	}
	k, err = PublicKeyFromFlatBytes(make([]byte, 64))
	if err != nil || k.Type != Secp256k1 {
		t.Fatalf("expected Secp256k1 for 64 bytes, got %+v err=%v", k, err)
	}
	_, err = PublicKeyFromFlatBytes(make([]byte, 10))
	if err != ErrInvalidLength {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}
