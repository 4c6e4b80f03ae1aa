// Package lightclient implements the light client state machine: the
// single operation that decides whether a candidate block view
// advances the client's trusted head, including stake-threshold
// signature verification and epoch transition handling.
package lightclient

import (
	"github.com/near/lightclientd/header"
)

// PendingProducers is the producer set staged by a successful
// epoch-advancing validation, to be committed to ProducerStore by the
// caller once it has persisted the new head.
type PendingProducers struct {
	EpochID   header.EpochID
	Producers []header.ValidatorStake
}

// State is the engine's in-memory state: the last trusted head, plus
// any producer set staged by the most recent successful validation.
type State struct {
	Head     header.LightClientBlockLiteView
	NextBPs  *PendingProducers
}

// Bootstrap creates a Tracking state from a caller-supplied starting
// block, with no authentication performed — the caller is the trust
// anchor for this one block.
func Bootstrap(head header.LightClientBlockLiteView) *State {
	return &State{Head: head}
}

// Clone returns a deep copy of s, used by callers (and this package's
// own tests) that need to compare pre- and post-call state without
// aliasing.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := &State{Head: s.Head}
	if s.NextBPs != nil {
		producers := make([]header.ValidatorStake, len(s.NextBPs.Producers))
		copy(producers, s.NextBPs.Producers)
		clone.NextBPs = &PendingProducers{EpochID: s.NextBPs.EpochID, Producers: producers}
	}
	return clone
}
