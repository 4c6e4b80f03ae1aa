// Copyright (c) 2025 The NEAR light client developers
// Distributed under the MIT software license, see the accompanying
// file COPYING or https://www.opensource.org/licenses/mit-license.php .

// Package digest implements the 32-byte hash value used throughout the
// light client: block hashes, epoch ids, merkle roots, and the other
// SHA-256 digests that chain light client block views together.
package digest

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// Size is the fixed length, in bytes, of every Digest.
const Size = 32

// Digest is a 32-byte hash value. The zero value is a valid digest
// (the all-zeros hash), used to bootstrap the two genesis epoch ids.
type Digest [Size]byte

// ErrBadLength is returned when a base58 string or byte slice does not
// decode to exactly Size bytes.
var ErrBadLength = errors.New("digest: decoded value is not 32 bytes")

// ErrInvalidChar is returned when a string contains a character outside
// the base58 alphabet.
var ErrInvalidChar = errors.New("digest: invalid base58 character")

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// HashBytes returns the SHA-256 digest of b.
func HashBytes(b []byte) Digest {
	return Digest(sha256.Sum256(b))
}

// HashBorsh returns the SHA-256 digest of a Borsh encoding. The caller
// supplies the already-encoded bytes; callers in package header
// produce these via the borsh package.
func HashBorsh(encoded []byte) Digest {
	return HashBytes(encoded)
}

// Combine returns SHA-256(a || b), the building block of the three-level
// header hash composition in package header.
func Combine(a, b Digest) Digest {
	buf := make([]byte, 0, 2*Size)
	buf = append(buf, a[:]...)
	buf = append(buf, b[:]...)
	return HashBytes(buf)
}

// Bytes returns the digest as a byte slice.
func (d Digest) Bytes() []byte {
	return d[:]
}

// IsZero reports whether d is the zero-valued digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Equal reports whether d and other are byte-identical.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// Compare returns -1, 0 or 1 as d is lexicographically less than, equal
// to, or greater than other, matching bytes.Compare semantics.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// Less reports whether d sorts strictly before other.
func (d Digest) Less(other Digest) bool {
	return d.Compare(other) < 0
}

// FromBytes converts a byte slice to a Digest, failing if the slice is
// not exactly Size bytes long.
func FromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != Size {
		return d, ErrBadLength
	}
	copy(d[:], b)
	return d, nil
}

// String returns the base58 text form of d, satisfying fmt.Stringer.
func (d Digest) String() string {
	return d.ToBase58()
}

// ToBase58 encodes d as a base58 string.
func (d Digest) ToBase58() string {
	return base58.Encode(d[:])
}

// FromBase58 decodes a base58 string into a Digest. Every character is
// checked against the base58 alphabet first (ErrInvalidChar on the
// first offender); only then is the decoded byte length checked against
// Size (ErrBadLength). A valid 32-byte digest's base58 form is between
// 32 and 45 characters, but that range is a consequence of the
// encoding, not a precondition checked here.
func FromBase58(s string) (Digest, error) {
	var d Digest
	for i := 0; i < len(s); i++ {
		if !isBase58Char(s[i]) {
			return d, ErrInvalidChar
		}
	}
	decoded := base58.Decode(s)
	return FromBytes(decoded)
}

// MarshalJSON renders d as a base58 JSON string, per the wire
// convention that every HashDigest is a base58 string on the wire.
func (d Digest) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ToBase58() + `"`), nil
}

// UnmarshalJSON parses a base58 JSON string into d.
func (d *Digest) UnmarshalJSON(b []byte) error {
	var s string
	if err := jsonUnquote(b, &s); err != nil {
		return err
	}
	parsed, err := FromBase58(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// jsonUnquote trims a JSON string literal without pulling in
// encoding/json just for this.
func jsonUnquote(b []byte, out *string) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("digest: expected JSON string")
	}
	*out = string(b[1 : len(b)-1])
	return nil
}

func isBase58Char(c byte) bool {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return true
		}
	}
	return false
}
