// Package header implements the block header and validator entities of
// the light client protocol: their canonical (Borsh) binary form used
// for hashing, their JSON wire form, and the one-way conversions
// between the two. Each type here is the single canonical domain type;
// the legacy duplicated fields the real NEAR RPC still emits (the
// millisecond-truncated timestamp twin of timestamp_nanosec) are
// absorbed and discarded during JSON decoding rather than kept around
// as a second parallel struct.
package header

import (
	"encoding/json"
	"errors"
	"math/big"
	"strconv"

	"github.com/near/lightclientd/borsh"
	"github.com/near/lightclientd/digest"
	"github.com/near/lightclientd/sigkit"
)

// ErrUnsupportedValidatorStakeVersion is returned when a ValidatorStake
// view carries a validator_stake_struct_version other than "V1", the
// only variant this engine understands.
var ErrUnsupportedValidatorStakeVersion = errors.New("header: unsupported validator_stake_struct_version")

// InnerLite is the canonical "lite" header: the minimal subset of
// fields sufficient to recompute a block's hash and chain further
// updates. Field order here is load-bearing — it is also the Borsh
// encoding order, and any deviation changes every hash in the system.
type InnerLite struct {
	Height          uint64
	EpochID         EpochID
	NextEpochID     EpochID
	PrevStateRoot   digest.Digest
	OutcomeRoot     digest.Digest
	TimestampNanos  uint64
	NextBPHash      digest.Digest
	BlockMerkleRoot digest.Digest
}

type wireInnerLite struct {
	Height           json.Number   `json:"height"`
	EpochID          digest.Digest `json:"epoch_id"`
	NextEpochID      digest.Digest `json:"next_epoch_id"`
	PrevStateRoot    digest.Digest `json:"prev_state_root"`
	OutcomeRoot      digest.Digest `json:"outcome_root"`
	Timestamp        json.Number   `json:"timestamp"`
	TimestampNanosec json.Number   `json:"timestamp_nanosec"`
	NextBPHash       digest.Digest `json:"next_bp_hash"`
	BlockMerkleRoot  digest.Digest `json:"block_merkle_root"`
}

// UnmarshalJSON parses the BlockHeaderInnerLiteView wire form. The
// nanosecond field is authoritative; the legacy millisecond-truncated
// "timestamp" field is parsed (to reject malformed input) but discarded.
func (il *InnerLite) UnmarshalJSON(b []byte) error {
	var w wireInnerLite
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	height, err := strconv.ParseUint(w.Height.String(), 10, 64)
	if err != nil {
		return err
	}
	nanos, err := strconv.ParseUint(w.TimestampNanosec.String(), 10, 64)
	if err != nil {
		return err
	}
	*il = InnerLite{
		Height:          height,
		EpochID:         EpochIDFromDigest(w.EpochID),
		NextEpochID:     EpochIDFromDigest(w.NextEpochID),
		PrevStateRoot:   w.PrevStateRoot,
		OutcomeRoot:     w.OutcomeRoot,
		TimestampNanos:  nanos,
		NextBPHash:      w.NextBPHash,
		BlockMerkleRoot: w.BlockMerkleRoot,
	}
	return nil
}

// MarshalJSON renders the wire form, regenerating the legacy
// millisecond-truncated "timestamp" twin from TimestampNanos.
func (il InnerLite) MarshalJSON() ([]byte, error) {
	w := wireInnerLite{
		Height:           json.Number(strconv.FormatUint(il.Height, 10)),
		EpochID:          il.EpochID.Digest(),
		NextEpochID:      il.NextEpochID.Digest(),
		PrevStateRoot:    il.PrevStateRoot,
		OutcomeRoot:      il.OutcomeRoot,
		Timestamp:        json.Number(strconv.FormatUint(il.TimestampNanos/1_000_000, 10)),
		TimestampNanosec: json.Number(strconv.FormatUint(il.TimestampNanos, 10)),
		NextBPHash:       il.NextBPHash,
		BlockMerkleRoot:  il.BlockMerkleRoot,
	}
	return json.Marshal(w)
}

// WriteBorsh encodes InnerLite in the exact declared field order.
func (il InnerLite) WriteBorsh(w *borsh.Writer) {
	w.WriteU64(il.Height)
	w.WriteFixedBytes(il.EpochID.Digest().Bytes())
	w.WriteFixedBytes(il.NextEpochID.Digest().Bytes())
	w.WriteFixedBytes(il.PrevStateRoot.Bytes())
	w.WriteFixedBytes(il.OutcomeRoot.Bytes())
	w.WriteU64(il.TimestampNanos)
	w.WriteFixedBytes(il.NextBPHash.Bytes())
	w.WriteFixedBytes(il.BlockMerkleRoot.Bytes())
}

// ReadInnerLiteBorsh decodes an InnerLite from r.
func ReadInnerLiteBorsh(r *borsh.Reader) (InnerLite, error) {
	var il InnerLite
	il.Height = r.ReadU64()
	epochID, err := digest.FromBytes(r.ReadFixedBytes(digest.Size))
	if err != nil {
		return il, err
	}
	nextEpochID, err := digest.FromBytes(r.ReadFixedBytes(digest.Size))
	if err != nil {
		return il, err
	}
	prevStateRoot, err := digest.FromBytes(r.ReadFixedBytes(digest.Size))
	if err != nil {
		return il, err
	}
	outcomeRoot, err := digest.FromBytes(r.ReadFixedBytes(digest.Size))
	if err != nil {
		return il, err
	}
	il.TimestampNanos = r.ReadU64()
	nextBPHash, err := digest.FromBytes(r.ReadFixedBytes(digest.Size))
	if err != nil {
		return il, err
	}
	blockMerkleRoot, err := digest.FromBytes(r.ReadFixedBytes(digest.Size))
	if err != nil {
		return il, err
	}
	if r.Err() != nil {
		return il, r.Err()
	}
	il.EpochID = EpochIDFromDigest(epochID)
	il.NextEpochID = EpochIDFromDigest(nextEpochID)
	il.PrevStateRoot = prevStateRoot
	il.OutcomeRoot = outcomeRoot
	il.NextBPHash = nextBPHash
	il.BlockMerkleRoot = blockMerkleRoot
	return il, nil
}

// ValidatorStake is a block producer's stake entry: its account,
// public key, and staked amount. The wire and binary forms both carry
// a "V1" variant tag; this is the only variant the engine understands.
type ValidatorStake struct {
	AccountID string
	PublicKey sigkit.PublicKey
	Stake     *big.Int // yoctoNEAR, u128
}

type wireValidatorStake struct {
	AccountID                  string          `json:"account_id"`
	PublicKey                  sigkit.PublicKey `json:"public_key"`
	Stake                      json.Number     `json:"stake"`
	ValidatorStakeStructVersion string         `json:"validator_stake_struct_version"`
}

// UnmarshalJSON parses the ValidatorStake wire form, rejecting any
// validator_stake_struct_version other than "V1". A missing version
// field is accepted and read as V1.
func (vs *ValidatorStake) UnmarshalJSON(b []byte) error {
	var w wireValidatorStake
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.ValidatorStakeStructVersion != "" && w.ValidatorStakeStructVersion != "V1" {
		return ErrUnsupportedValidatorStakeVersion
	}
	stake, ok := new(big.Int).SetString(w.Stake.String(), 10)
	if !ok {
		return errors.New("header: invalid stake decimal string")
	}
	*vs = ValidatorStake{
		AccountID: w.AccountID,
		PublicKey: w.PublicKey,
		Stake:     stake,
	}
	return nil
}

// MarshalJSON renders the ValidatorStake wire form, always tagging V1.
func (vs ValidatorStake) MarshalJSON() ([]byte, error) {
	w := wireValidatorStake{
		AccountID:                   vs.AccountID,
		PublicKey:                   vs.PublicKey,
		Stake:                       json.Number(vs.Stake.String()),
		ValidatorStakeStructVersion: "V1",
	}
	return json.Marshal(w)
}

// validatorStakeV1 is the only ValidatorStake variant's discriminant.
const validatorStakeV1 = 0

// WriteBorsh encodes the ValidatorStake as a one-byte V1 discriminant
// followed by account_id, public_key, stake in declared order.
func (vs ValidatorStake) WriteBorsh(w *borsh.Writer) {
	w.WriteVariant(validatorStakeV1)
	w.WriteString(vs.AccountID)
	vs.PublicKey.WriteBorsh(w)
	w.WriteU128(borsh.SaturateU128(vs.Stake))
}

// ReadValidatorStakeBorsh decodes a ValidatorStake from r.
func ReadValidatorStakeBorsh(r *borsh.Reader) (ValidatorStake, error) {
	var vs ValidatorStake
	variant := r.ReadVariant()
	if variant != validatorStakeV1 {
		return vs, borsh.ErrBadDiscriminant
	}
	vs.AccountID = r.ReadString()
	pub, err := sigkit.ReadPublicKeyBorsh(r)
	if err != nil {
		return vs, err
	}
	vs.PublicKey = pub
	vs.Stake = r.ReadU128()
	if r.Err() != nil {
		return vs, r.Err()
	}
	return vs, nil
}

// WriteValidatorStakeVecBorsh encodes Vec<ValidatorStake>: a u32 length
// prefix followed by each entry's own Borsh encoding.
func WriteValidatorStakeVecBorsh(w *borsh.Writer, stakes []ValidatorStake) {
	w.WriteLen(len(stakes))
	for _, s := range stakes {
		s.WriteBorsh(w)
	}
}

// HashValidatorStakeVec returns sha256(borsh_encode(Vec<ValidatorStake>)),
// used to validate a candidate's introduced next_bp_hash.
func HashValidatorStakeVec(stakes []ValidatorStake) digest.Digest {
	w := borsh.NewWriter()
	WriteValidatorStakeVecBorsh(w, stakes)
	return digest.HashBytes(w.Bytes())
}

// LightClientBlockView is the full candidate block fetched from a full
// node: everything needed to verify that it advances the trusted head.
type LightClientBlockView struct {
	PrevBlockHash      digest.Digest
	NextBlockInnerHash digest.Digest
	InnerLite          InnerLite
	InnerRestHash      digest.Digest
	NextBPs            []ValidatorStake  // nil = None
	ApprovalsAfterNext []*sigkit.Signature // nil element = abstention
}

type wireLightClientBlockView struct {
	PrevBlockHash      digest.Digest       `json:"prev_block_hash"`
	NextBlockInnerHash digest.Digest       `json:"next_block_inner_hash"`
	InnerLite          InnerLite           `json:"inner_lite"`
	InnerRestHash      digest.Digest       `json:"inner_rest_hash"`
	NextBPs            []ValidatorStake    `json:"next_bps"`
	ApprovalsAfterNext []*sigkit.Signature `json:"approvals_after_next"`
}

// UnmarshalJSON parses the LightClientBlockView wire form.
func (v *LightClientBlockView) UnmarshalJSON(b []byte) error {
	var w wireLightClientBlockView
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*v = LightClientBlockView(w)
	return nil
}

// MarshalJSON renders the LightClientBlockView wire form.
func (v LightClientBlockView) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireLightClientBlockView(v))
}

// LightClientBlockLiteView is the persistable trusted head: the
// minimal subset of a full view needed to anchor the next validation
// and to recompute its own hash.
type LightClientBlockLiteView struct {
	PrevBlockHash digest.Digest
	InnerRestHash digest.Digest
	InnerLite     InnerLite
}

type wireLightClientBlockLiteView struct {
	PrevBlockHash digest.Digest `json:"prev_block_hash"`
	InnerRestHash digest.Digest `json:"inner_rest_hash"`
	InnerLite     InnerLite     `json:"inner_lite"`
}

func (v *LightClientBlockLiteView) UnmarshalJSON(b []byte) error {
	var w wireLightClientBlockLiteView
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*v = LightClientBlockLiteView(w)
	return nil
}

func (v LightClientBlockLiteView) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireLightClientBlockLiteView(v))
}

// LiteViewFromFull derives the persistable lite view from a full
// candidate block, dropping its approvals and next-producer list.
func LiteViewFromFull(v LightClientBlockView) LightClientBlockLiteView {
	return LightClientBlockLiteView{
		PrevBlockHash: v.PrevBlockHash,
		InnerRestHash: v.InnerRestHash,
		InnerLite:     v.InnerLite,
	}
}

// WriteBorsh encodes the lite view for storage: prev_block_hash,
// inner_rest_hash, inner_lite, in that order.
func (v LightClientBlockLiteView) WriteBorsh(w *borsh.Writer) {
	w.WriteFixedBytes(v.PrevBlockHash.Bytes())
	w.WriteFixedBytes(v.InnerRestHash.Bytes())
	v.InnerLite.WriteBorsh(w)
}

// ReadLightClientBlockLiteViewBorsh decodes a stored lite view.
func ReadLightClientBlockLiteViewBorsh(r *borsh.Reader) (LightClientBlockLiteView, error) {
	var v LightClientBlockLiteView
	prevBlockHash, err := digest.FromBytes(r.ReadFixedBytes(digest.Size))
	if err != nil {
		return v, err
	}
	innerRestHash, err := digest.FromBytes(r.ReadFixedBytes(digest.Size))
	if err != nil {
		return v, err
	}
	inner, err := ReadInnerLiteBorsh(r)
	if err != nil {
		return v, err
	}
	if r.Err() != nil {
		return v, r.Err()
	}
	v.PrevBlockHash = prevBlockHash
	v.InnerRestHash = innerRestHash
	v.InnerLite = inner
	return v, nil
}

// Hash returns combine(combine(sha256(borsh(inner_lite)), inner_rest_hash),
// prev_block_hash), equal by construction to the current_block_hash of
// the full view this lite view was derived from.
func (v LightClientBlockLiteView) Hash() digest.Digest {
	w := borsh.NewWriter()
	v.InnerLite.WriteBorsh(w)
	innerLiteHash := digest.HashBytes(w.Bytes())
	return digest.Combine(digest.Combine(innerLiteHash, v.InnerRestHash), v.PrevBlockHash)
}
