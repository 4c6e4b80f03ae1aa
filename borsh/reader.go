package borsh

import (
	"errors"
	"math/big"
)

// ErrUnexpectedEOF is returned when the underlying byte slice runs out
// before a requested field has been fully read.
var ErrUnexpectedEOF = errors.New("borsh: unexpected end of input")

// ErrTrailingBytes is returned by callers that expect to have consumed
// the entire input once decoding is complete.
var ErrTrailingBytes = errors.New("borsh: trailing bytes after decoding")

// ErrBadDiscriminant is returned when a tagged union's discriminant
// byte does not match any known variant.
var ErrBadDiscriminant = errors.New("borsh: unknown variant discriminant")

// Reader is a cursor over a byte slice, modeled on a cryptobyte-style
// string reader: each Read* method advances the cursor and returns the
// decoded value; on truncated input it returns a zero value and records
// the first failure, which Err reports, rather than panicking.
type Reader struct {
	buf []byte
	err error
}

// NewReader wraps b for sequential decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Err returns the first error encountered by any Read* call, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Done reports whether every byte of the input has been consumed and no
// error has occurred.
func (r *Reader) Done() bool {
	return r.err == nil && len(r.buf) == 0
}

func (r *Reader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf) < n {
		r.err = ErrUnexpectedEOF
		return nil
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() uint8 {
	v := r.read(1)
	if v == nil {
		return 0
	}
	return v[0]
}

// ReadU32 reads a little-endian 32-bit unsigned integer.
func (r *Reader) ReadU32() uint32 {
	v := r.read(4)
	if v == nil {
		return 0
	}
	return uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16 | uint32(v[3])<<24
}

// ReadU64 reads a little-endian 64-bit unsigned integer.
func (r *Reader) ReadU64() uint64 {
	v := r.read(8)
	if v == nil {
		return 0
	}
	var out uint64
	for i := 7; i >= 0; i-- {
		out = out<<8 | uint64(v[i])
	}
	return out
}

// ReadU128 reads a little-endian 128-bit unsigned integer into a
// math/big.Int.
func (r *Reader) ReadU128() *big.Int {
	v := r.read(u128Width)
	if v == nil {
		return new(big.Int)
	}
	be := make([]byte, u128Width)
	for i := 0; i < u128Width; i++ {
		be[i] = v[u128Width-1-i]
	}
	return new(big.Int).SetBytes(be)
}

// ReadFixedBytes reads exactly n raw bytes with no length prefix.
func (r *Reader) ReadFixedBytes(n int) []byte {
	v := r.read(n)
	if v == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, v)
	return out
}

// ReadBytes reads a u32-length-prefixed dynamic byte sequence.
func (r *Reader) ReadBytes() []byte {
	n := r.ReadU32()
	if r.err != nil {
		return nil
	}
	return r.ReadFixedBytes(int(n))
}

// ReadString reads a u32-length-prefixed UTF-8 string.
func (r *Reader) ReadString() string {
	return string(r.ReadBytes())
}

// ReadBool reads a one-byte boolean.
func (r *Reader) ReadBool() bool {
	return r.ReadU8() != 0
}

// ReadOptionPresent reads the Option<T> presence tag.
func (r *Reader) ReadOptionPresent() bool {
	return r.ReadBool()
}

// ReadVariant reads a tagged union's one-byte discriminant.
func (r *Reader) ReadVariant() uint8 {
	return r.ReadU8()
}

// ReadLen reads a u32 sequence-length prefix.
func (r *Reader) ReadLen() int {
	return int(r.ReadU32())
}
