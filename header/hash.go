package header

import (
	"github.com/near/lightclientd/borsh"
	"github.com/near/lightclientd/digest"
)

// endorsementDiscriminant is the zero-based discriminant of the Endorsement variant
// in the two-variant ApprovalInner union {Endorsement(HashDigest),
// Skip(u64)}. Only Endorsement messages are ever produced by this
// engine; Skip is part of the protocol's tagged union shape but has no
// caller in the validate-and-update-head path.
const endorsementDiscriminant = 0

// InnerLiteHash returns sha256(borsh_encode(InnerLite)), the first of
// the three composed hashes.
func InnerLiteHash(il InnerLite) digest.Digest {
	w := borsh.NewWriter()
	il.WriteBorsh(w)
	return digest.HashBytes(w.Bytes())
}

// CurrentBlockHash computes the canonical hash of a candidate block:
//
//	inner_lite_hash     = sha256(borsh(inner_lite))
//	inner_hash          = sha256(inner_lite_hash || inner_rest_hash)
//	current_block_hash  = sha256(inner_hash || prev_block_hash)
func CurrentBlockHash(v LightClientBlockView) digest.Digest {
	innerHash := digest.Combine(InnerLiteHash(v.InnerLite), v.InnerRestHash)
	return digest.Combine(innerHash, v.PrevBlockHash)
}

// NextBlockHash computes sha256(next_block_inner_hash || current_block_hash).
func NextBlockHash(v LightClientBlockView) digest.Digest {
	return digest.Combine(v.NextBlockInnerHash, CurrentBlockHash(v))
}

// ApprovalMessage computes the message validators sign to approve v:
// the Borsh encoding of an Endorsement(next_block_hash) tagged union,
// followed by the candidate's height+2 as a little-endian u64. The
// height width is u64, not u32 — an earlier protocol iteration
// truncated to u32, but u64 is the value NEAR validators actually sign.
func ApprovalMessage(v LightClientBlockView) []byte {
	w := borsh.NewWriter()
	w.WriteVariant(endorsementDiscriminant)
	nextHash := NextBlockHash(v)
	w.WriteFixedBytes(nextHash.Bytes())
	w.WriteU64(v.InnerLite.Height + 2)
	return w.Bytes()
}
