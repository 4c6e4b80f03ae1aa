// Package sigkit implements the tagged public key and signature types
// used to authenticate validator approvals: Ed25519 and Secp256k1,
// distinguished by an explicit discriminant in their text and Borsh
// forms, mirroring the NEAR protocol's own key-type tagging. The flat
// public key bytes carry no tag; their length tells the variants apart.
package sigkit

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/near/lightclientd/borsh"
)

// KeyType discriminates the two supported signature schemes. The
// numeric value doubles as the Borsh variant discriminant, so the
// ordering here must never change.
type KeyType uint8

const (
	Ed25519 KeyType = iota
	Secp256k1
)

const (
	ed25519PubKeyLen   = ed25519.PublicKeySize   // 32
	secp256k1PubKeyLen = 64                      // uncompressed x||y, no 0x04 prefix
	ed25519SigLen      = ed25519.SignatureSize   // 64
	secp256k1SigLen    = 65                      // r || s || v
)

func (t KeyType) String() string {
	switch t {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ErrUnknownKeyType is returned when a textual "<type>:..." prefix does
// not match a known scheme.
var ErrUnknownKeyType = errors.New("sigkit: unknown key type")

// ErrInvalidLength is returned when a key or signature's byte payload
// does not match the length expected for its type.
var ErrInvalidLength = errors.New("sigkit: invalid length for key type")

// PublicKey is a tagged validator public key.
type PublicKey struct {
	Type KeyType
	Data []byte
}

// Signature is a tagged validator signature.
type Signature struct {
	Type KeyType
	Data []byte
}

func expectedPubKeyLen(t KeyType) (int, bool) {
	switch t {
	case Ed25519:
		return ed25519PubKeyLen, true
	case Secp256k1:
		return secp256k1PubKeyLen, true
	default:
		return 0, false
	}
}

func expectedSigLen(t KeyType) (int, bool) {
	switch t {
	case Ed25519:
		return ed25519SigLen, true
	case Secp256k1:
		return secp256k1SigLen, true
	default:
		return 0, false
	}
}

// String renders the key as "<type>:<base58>".
func (k PublicKey) String() string {
	return k.Type.String() + ":" + base58.Encode(k.Data)
}

// ParsePublicKey parses the "<type>:<base58>" textual form.
func ParsePublicKey(s string) (PublicKey, error) {
	typ, rest, err := splitTyped(s)
	if err != nil {
		return PublicKey{}, err
	}
	want, ok := expectedPubKeyLen(typ)
	if !ok {
		return PublicKey{}, ErrUnknownKeyType
	}
	data := base58.Decode(rest)
	if len(data) != want {
		return PublicKey{}, ErrInvalidLength
	}
	return PublicKey{Type: typ, Data: data}, nil
}

// PublicKeyFromFlatBytes reconstructs a PublicKey from a raw, untagged
// byte vector, where length alone discriminates the variant: 32 bytes
// -> Ed25519, 64 bytes -> Secp256k1.
func PublicKeyFromFlatBytes(b []byte) (PublicKey, error) {
	switch len(b) {
	case ed25519PubKeyLen:
		return PublicKey{Type: Ed25519, Data: append([]byte(nil), b...)}, nil
	case secp256k1PubKeyLen:
		return PublicKey{Type: Secp256k1, Data: append([]byte(nil), b...)}, nil
	default:
		return PublicKey{}, ErrInvalidLength
	}
}

// FlatBytes returns the raw key bytes with no type tag, for flat
// storage encodings.
func (k PublicKey) FlatBytes() []byte {
	return k.Data
}

// WriteBorsh encodes the key as a one-byte discriminant followed by its
// fixed-width payload.
func (k PublicKey) WriteBorsh(w *borsh.Writer) {
	w.WriteVariant(uint8(k.Type))
	w.WriteFixedBytes(k.Data)
}

// ReadPublicKeyBorsh decodes a tagged public key from r.
func ReadPublicKeyBorsh(r *borsh.Reader) (PublicKey, error) {
	typ := KeyType(r.ReadVariant())
	want, ok := expectedPubKeyLen(typ)
	if !ok {
		return PublicKey{}, borsh.ErrBadDiscriminant
	}
	data := r.ReadFixedBytes(want)
	if r.Err() != nil {
		return PublicKey{}, r.Err()
	}
	return PublicKey{Type: typ, Data: data}, nil
}

// String renders the signature as "<type>:<base58>".
func (s Signature) String() string {
	return s.Type.String() + ":" + base58.Encode(s.Data)
}

// ParseSignature parses the "<type>:<base58>" textual form.
func ParseSignature(s string) (Signature, error) {
	typ, rest, err := splitTyped(s)
	if err != nil {
		return Signature{}, err
	}
	want, ok := expectedSigLen(typ)
	if !ok {
		return Signature{}, ErrUnknownKeyType
	}
	data := base58.Decode(rest)
	if len(data) != want {
		return Signature{}, ErrInvalidLength
	}
	return Signature{Type: typ, Data: data}, nil
}

// MarshalJSON renders the key as a JSON string "<type>:<base58>".
func (k PublicKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON parses a JSON string "<type>:<base58>" into k.
func (k *PublicKey) UnmarshalJSON(b []byte) error {
	s, err := unquoteJSONString(b)
	if err != nil {
		return err
	}
	parsed, err := ParsePublicKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalJSON renders the signature as a JSON string; it never produces
// null. Within LightClientBlockView.ApprovalsAfterNext this type is
// only ever used via a *Signature, so an abstention slot is a nil
// pointer, which encoding/json serialises as null without calling this
// method.
func (s Signature) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses a JSON string "<type>:<base58>" into s.
func (s *Signature) UnmarshalJSON(b []byte) error {
	str, err := unquoteJSONString(b)
	if err != nil {
		return err
	}
	parsed, err := ParseSignature(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func unquoteJSONString(b []byte) (string, error) {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return "", errors.New("sigkit: expected JSON string")
	}
	return string(b[1 : len(b)-1]), nil
}

func splitTyped(s string) (KeyType, string, error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return 0, "", ErrUnknownKeyType
	}
	prefix, rest := s[:idx], s[idx+1:]
	switch prefix {
	case "ed25519":
		return Ed25519, rest, nil
	case "secp256k1":
		return Secp256k1, rest, nil
	default:
		return 0, "", ErrUnknownKeyType
	}
}

// Verify checks sig against message under pub. Mismatched variants
// (e.g. an Ed25519 signature paired with a Secp256k1 key) return false
// without error, per the light client's signature scheme convention.
func (s Signature) Verify(message []byte, pub PublicKey) bool {
	if s.Type != pub.Type {
		return false
	}
	switch s.Type {
	case Ed25519:
		return verifyEd25519(message, pub.Data, s.Data)
	case Secp256k1:
		return verifySecp256k1(message, pub.Data, s.Data)
	default:
		return false
	}
}

// verifyEd25519 follows RFC 8032: the signature is verified directly
// over message, with no pre-hashing.
func verifyEd25519(message, pubKey, sig []byte) bool {
	if len(pubKey) != ed25519PubKeyLen || len(sig) != ed25519SigLen {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), message, sig)
}

// verifySecp256k1 follows the NEAR convention: the signature covers
// SHA-256(message), and the embedded recovery byte must recover the
// same public key that is independently checked against the ECDSA
// signature.
func verifySecp256k1(message, pubKeyBytes, sig []byte) bool {
	if len(pubKeyBytes) != secp256k1PubKeyLen || len(sig) != secp256k1SigLen {
		return false
	}
	uncompressed := make([]byte, 0, secp256k1PubKeyLen+1)
	uncompressed = append(uncompressed, 0x04)
	uncompressed = append(uncompressed, pubKeyBytes...)
	pub, err := btcec.ParsePubKey(uncompressed)
	if err != nil {
		return false
	}

	hash := sha256.Sum256(message)

	r := new(btcec.ModNScalar)
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false
	}
	sVal := new(btcec.ModNScalar)
	if overflow := sVal.SetByteSlice(sig[32:64]); overflow {
		return false
	}
	recoveryID := sig[64]

	ecSig := ecdsa.NewSignature(r, sVal)
	if !ecSig.Verify(hash[:], pub) {
		return false
	}

	compact := make([]byte, 65)
	compact[0] = 27 + recoveryID
	copy(compact[1:33], sig[:32])
	copy(compact[33:65], sig[32:64])
	recovered, wasCompressed, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return false
	}
	if wasCompressed {
		return false
	}
	return recovered.IsEqual(pub)
}
