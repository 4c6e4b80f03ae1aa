package header

import "github.com/near/lightclientd/digest"

// EpochID is a newtype over digest.Digest: the identifier of an epoch
// is the hash of the last block of the epoch two before it. Keeping it
// distinct from a plain hash prevents accidentally comparing an epoch
// id against a block hash at the type level.
type EpochID digest.Digest

// ZeroEpochID is the distinguished zero-valued epoch id used to
// bootstrap the chain's first two epochs.
var ZeroEpochID = EpochID{}

// Digest returns e as a plain digest.Digest.
func (e EpochID) Digest() digest.Digest {
	return digest.Digest(e)
}

// EpochIDFromDigest wraps a digest.Digest as an EpochID.
func EpochIDFromDigest(d digest.Digest) EpochID {
	return EpochID(d)
}

func (e EpochID) String() string {
	return digest.Digest(e).String()
}

// Equal reports byte-exact equality.
func (e EpochID) Equal(other EpochID) bool {
	return digest.Digest(e).Equal(digest.Digest(other))
}

// MarshalJSON renders e as the base58 string of its underlying digest.
func (e EpochID) MarshalJSON() ([]byte, error) {
	return digest.Digest(e).MarshalJSON()
}

// UnmarshalJSON parses the base58 string form into e.
func (e *EpochID) UnmarshalJSON(b []byte) error {
	var d digest.Digest
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*e = EpochID(d)
	return nil
}
