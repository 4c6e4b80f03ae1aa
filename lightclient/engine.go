package lightclient

import (
	"math/big"

	"github.com/near/lightclientd/header"
)

var (
	big2 = big.NewInt(2)
	big3 = big.NewInt(3)
)

// ValidateAndUpdateHead checks whether candidate advances state's
// trusted head and, if so, commits the update in place. producers is
// the block-producer set for the epoch that signed candidate's
// approvals (the caller looks this up by state.Head.InnerLite.EpochID,
// or by state.Head.InnerLite.NextEpochID when candidate is in the
// head's next epoch, before calling). Each check below short-circuits: on any failure the
// function returns false and state is left byte-for-byte unchanged.
func ValidateAndUpdateHead(state *State, candidate *header.LightClientBlockView, producers []header.ValidatorStake) bool {
	// 1. Monotonic height.
	if candidate.InnerLite.Height <= state.Head.InnerLite.Height {
		return false
	}

	// 2. Epoch membership.
	inCurrentEpoch := candidate.InnerLite.EpochID.Equal(state.Head.InnerLite.EpochID)
	inNextEpoch := candidate.InnerLite.EpochID.Equal(state.Head.InnerLite.NextEpochID)
	if !inCurrentEpoch && !inNextEpoch {
		return false
	}

	// 3. Epoch-transition sanity.
	if inNextEpoch && candidate.NextBPs == nil {
		return false
	}

	// 4. Stake tally.
	approvalMessage := header.ApprovalMessage(*candidate)
	total := new(big.Int)
	approved := new(big.Int)
	n := len(producers)
	if len(candidate.ApprovalsAfterNext) < n {
		n = len(candidate.ApprovalsAfterNext)
	}
	for i := 0; i < n; i++ {
		producer := producers[i]
		total.Add(total, producer.Stake)
		approval := candidate.ApprovalsAfterNext[i]
		if approval == nil {
			continue
		}
		approved.Add(approved, producer.Stake)
		if !approval.Verify(approvalMessage, producer.PublicKey) {
			return false
		}
	}

	// 5. Two-thirds majority, strict: approved > total * 2 / 3, checked
	// without integer division rounding as 3*approved > 2*total.
	lhs := new(big.Int).Mul(approved, big3)
	rhs := new(big.Int).Mul(total, big2)
	if lhs.Cmp(rhs) <= 0 {
		return false
	}

	// 6. Next-producers hash.
	var pending *PendingProducers
	if candidate.NextBPs != nil {
		h := header.HashValidatorStakeVec(candidate.NextBPs)
		if h != candidate.InnerLite.NextBPHash {
			return false
		}
		bps := make([]header.ValidatorStake, len(candidate.NextBPs))
		copy(bps, candidate.NextBPs)
		pending = &PendingProducers{EpochID: candidate.InnerLite.NextEpochID, Producers: bps}
	}

	// Commit.
	state.Head = header.LiteViewFromFull(*candidate)
	state.NextBPs = pending
	return true
}
