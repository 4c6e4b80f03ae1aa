package header

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/near/lightclientd/borsh"
	"github.com/near/lightclientd/digest"
)

func TestInnerLiteCanonicalEncodingFixture(t *testing.T) {
	il := InnerLite{Height: 4}
	w := borsh.NewWriter()
	il.WriteBorsh(w)
	encoded := w.Bytes()

	if len(encoded) != 208 {
		t.Fatalf("encoded InnerLite length = %d, want 208", len(encoded))
	}
	wantPrefix := []byte{0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if string(encoded[:8]) != string(wantPrefix) {
		t.Fatalf("encoded prefix = % x, want % x", encoded[:8], wantPrefix)
	}

	got := digest.HashBytes(encoded)
	want, err := digest.FromBase58("6u6qjC19Z2aDWujqdKf52u1FHCQSvpQ1af7Y4fdWKwzU")
	if err != nil {
		t.Fatalf("FromBase58: %v", err)
	}
	if got != want {
		t.Fatalf("sha256(borsh(inner_lite)) = %s, want %s", got, want)
	}
}

func TestInnerLiteBorshRoundTrip(t *testing.T) {
	il := InnerLite{
		Height:          12345,
		EpochID:         EpochIDFromDigest(digest.HashBytes([]byte("epoch"))),
		NextEpochID:     EpochIDFromDigest(digest.HashBytes([]byte("next-epoch"))),
		PrevStateRoot:   digest.HashBytes([]byte("state")),
		OutcomeRoot:     digest.HashBytes([]byte("outcome")),
		TimestampNanos:  1699000000000000000,
		NextBPHash:      digest.HashBytes([]byte("bps")),
		BlockMerkleRoot: digest.HashBytes([]byte("merkle")),
	}
	w := borsh.NewWriter()
	il.WriteBorsh(w)
	r := borsh.NewReader(w.Bytes())
	got, err := ReadInnerLiteBorsh(r)
	if err != nil {
		t.Fatalf("ReadInnerLiteBorsh: %v", err)
	}
	if got != il {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, il)
	}
}

func TestInnerLiteViewJSONDropsLegacyTimestamp(t *testing.T) {
	raw := `{
		"height": "4",
		"epoch_id": "11111111111111111111111111111111",
		"next_epoch_id": "11111111111111111111111111111111",
		"prev_state_root": "11111111111111111111111111111111",
		"outcome_root": "11111111111111111111111111111111",
		"timestamp": 1,
		"timestamp_nanosec": "1699000000000000000",
		"next_bp_hash": "11111111111111111111111111111111",
		"block_merkle_root": "11111111111111111111111111111111"
	}`
	var il InnerLite
	if err := json.Unmarshal([]byte(raw), &il); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if il.TimestampNanos != 1699000000000000000 {
		t.Fatalf("TimestampNanos = %d, want nanosec value, legacy field must be discarded", il.TimestampNanos)
	}
}

func TestValidatorStakeJSONRoundTrip(t *testing.T) {
	keyBase58 := digest.HashBytes([]byte("validator-key")).ToBase58()
	raw := `{
		"account_id": "validator.near",
		"public_key": "ed25519:` + keyBase58 + `",
		"stake": "1000000000000000000000000000",
		"validator_stake_struct_version": "V1"
	}`
	var vs ValidatorStake
	if err := json.Unmarshal([]byte(raw), &vs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if vs.AccountID != "validator.near" {
		t.Fatalf("AccountID = %q", vs.AccountID)
	}
	want, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	if vs.Stake.Cmp(want) != 0 {
		t.Fatalf("Stake = %s, want %s", vs.Stake, want)
	}

	out, err := json.Marshal(vs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var roundTripped ValidatorStake
	if err := json.Unmarshal(out, &roundTripped); err != nil {
		t.Fatalf("Unmarshal(marshaled): %v", err)
	}
	if roundTripped.AccountID != vs.AccountID || roundTripped.Stake.Cmp(vs.Stake) != 0 {
		t.Fatalf("round trip mismatch")
	}
}

func TestValidatorStakeRejectsUnknownVersion(t *testing.T) {
	keyBase58 := digest.HashBytes([]byte("v-key")).ToBase58()
	raw := `{
		"account_id": "v.near",
		"public_key": "ed25519:` + keyBase58 + `",
		"stake": "1",
		"validator_stake_struct_version": "V2"
	}`
	var vs ValidatorStake
	if err := json.Unmarshal([]byte(raw), &vs); err != ErrUnsupportedValidatorStakeVersion {
		t.Fatalf("expected ErrUnsupportedValidatorStakeVersion, got %v", err)
	}
}

func TestCurrentBlockHashCompositionFixture(t *testing.T) {
	// Reuses the height=4 fixture header from
	// TestInnerLiteCanonicalEncodingFixture, whose inner_lite_hash is
	// independently pinned there to 6u6qjC19Z2aDWujqdKf52u1FHCQSvpQ1af7Y4fdWKwzU.
	prevBlockHash, err := digest.FromBase58("BUcVEkMq3DcZzDGgeh1sb7FFuD86XYcXpEt25Cf34LuP")
	if err != nil {
		t.Fatalf("FromBase58(prev_block_hash): %v", err)
	}
	innerRestHash, err := digest.FromBase58("FaU2VzTNqxfouDtkQWcmrmU2UdvtSES3rQuccnZMtWAC")
	if err != nil {
		t.Fatalf("FromBase58(inner_rest_hash): %v", err)
	}
	want, err := digest.FromBase58("3ckGjcedZiN3RnvfiuEN83BtudDTVa9Pub4yZ8R737qt")
	if err != nil {
		t.Fatalf("FromBase58(current_block_hash): %v", err)
	}

	v := LightClientBlockView{
		PrevBlockHash: prevBlockHash,
		InnerLite:     InnerLite{Height: 4},
		InnerRestHash: innerRestHash,
	}
	got := CurrentBlockHash(v)
	if got != want {
		t.Fatalf("CurrentBlockHash = %s, want %s", got, want)
	}
}

func TestLiteViewHashMatchesCurrentBlockHash(t *testing.T) {
	il := InnerLite{
		Height:          10,
		EpochID:         EpochIDFromDigest(digest.HashBytes([]byte("e"))),
		NextEpochID:     EpochIDFromDigest(digest.HashBytes([]byte("ne"))),
		PrevStateRoot:   digest.HashBytes([]byte("psr")),
		OutcomeRoot:     digest.HashBytes([]byte("or")),
		TimestampNanos:  1,
		NextBPHash:      digest.HashBytes([]byte("bp")),
		BlockMerkleRoot: digest.HashBytes([]byte("bmr")),
	}
	full := LightClientBlockView{
		PrevBlockHash:      digest.HashBytes([]byte("prev")),
		NextBlockInnerHash: digest.HashBytes([]byte("nextinner")),
		InnerLite:          il,
		InnerRestHash:      digest.HashBytes([]byte("rest")),
	}
	lite := LiteViewFromFull(full)
	if lite.Hash() != CurrentBlockHash(full) {
		t.Fatalf("lite.Hash() = %s, want %s", lite.Hash(), CurrentBlockHash(full))
	}
}

func TestApprovalMessageAppendsU64Height(t *testing.T) {
	full := LightClientBlockView{
		PrevBlockHash:      digest.HashBytes([]byte("prev")),
		NextBlockInnerHash: digest.HashBytes([]byte("nextinner")),
		InnerLite:          InnerLite{Height: 100},
		InnerRestHash:      digest.HashBytes([]byte("rest")),
	}
	msg := ApprovalMessage(full)
	if len(msg) != 1+digest.Size+8 {
		t.Fatalf("ApprovalMessage length = %d, want %d", len(msg), 1+digest.Size+8)
	}
	heightBytes := msg[len(msg)-8:]
	want := []byte{102, 0, 0, 0, 0, 0, 0, 0} // 100 + 2 = 102, little-endian u64
	if string(heightBytes) != string(want) {
		t.Fatalf("height suffix = % x, want % x", heightBytes, want)
	}
}

func TestHashValidatorStakeVecEmptyIsDeterministic(t *testing.T) {
	h1 := HashValidatorStakeVec(nil)
	h2 := HashValidatorStakeVec([]ValidatorStake{})
	if h1 != h2 {
		t.Fatalf("expected nil and empty slice to hash identically")
	}
}
