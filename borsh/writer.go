// Package borsh implements the deterministic, length-prefixed binary
// encoding used to hash every light client header and validator
// structure. It is modeled on Borsh: little-endian fixed-width
// integers, u32-length-prefixed dynamic sequences, and a one-byte
// discriminant ahead of tagged-union payloads. Every hashing operation
// in package header depends on these rules holding bit-exactly.
package borsh

import (
	"bytes"
	"math/big"
)

// Writer accumulates a canonical binary encoding. The zero value is an
// empty Writer ready for use; NewWriter returns a pointer to one.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns a Writer ready for use.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteU32 writes v as 4 little-endian bytes.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	w.buf.Write(b[:])
}

// WriteU64 writes v as 8 little-endian bytes.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	w.buf.Write(b[:])
}

// u128Width is the fixed byte width of a Borsh-encoded u128.
const u128Width = 16

// WriteU128 writes v as 16 little-endian bytes, the Borsh width of a
// u128 (used for validator stake, expressed in yoctoNEAR). v must be
// non-negative and fit in 128 bits; callers are expected to clamp with
// SaturateU128 before calling this.
func (w *Writer) WriteU128(v *big.Int) {
	b := make([]byte, u128Width)
	be := v.Bytes() // big-endian, minimal length
	for i := 0; i < len(be) && i < u128Width; i++ {
		b[i] = be[len(be)-1-i]
	}
	w.buf.Write(b)
}

// MaxU128 is the largest value representable in 128 bits.
var MaxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// SaturateU128 clamps v to the closed range [0, 2^128-1].
func SaturateU128(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		return big.NewInt(0)
	}
	if v.Cmp(MaxU128) > 0 {
		return new(big.Int).Set(MaxU128)
	}
	return v
}

// WriteFixedBytes writes b verbatim, with no length prefix. Callers are
// responsible for ensuring b has the expected fixed width.
func (w *Writer) WriteFixedBytes(b []byte) {
	w.buf.Write(b)
}

// WriteBytes writes a u32 length prefix followed by b, the Borsh
// encoding of a dynamic byte sequence.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.buf.Write(b)
}

// WriteString writes a u32 length prefix followed by the UTF-8 bytes of
// s, the Borsh encoding of a String.
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WriteBool writes a one-byte boolean (0 or 1).
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

// WriteOptionPresent writes the one-byte tag for Option<T>. Callers
// write the encoded T themselves when present is true.
func (w *Writer) WriteOptionPresent(present bool) {
	w.WriteBool(present)
}

// WriteVariant writes the one-byte discriminant selecting a tagged
// union's variant. discriminant is zero-based, in declaration order.
func (w *Writer) WriteVariant(discriminant uint8) {
	w.WriteU8(discriminant)
}

// WriteLen writes a u32 sequence-length prefix ahead of a caller-encoded
// sequence of elements (used when elements are not raw bytes).
func (w *Writer) WriteLen(n int) {
	w.WriteU32(uint32(n))
}
